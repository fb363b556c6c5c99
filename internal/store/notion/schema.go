package notion

import "github.com/jomei/notionapi"

// requiredProperties is the payment-tracker database schema. EnsureSchema
// validates existing databases against the names and types here and adds
// whatever is missing.
func requiredProperties() notionapi.PropertyConfigs {
	return notionapi.PropertyConfigs{
		"Sender": notionapi.TitlePropertyConfig{
			Type:  notionapi.PropertyConfigTypeTitle,
			Title: struct{}{},
		},
		"Service": notionapi.SelectPropertyConfig{
			Type: notionapi.PropertyConfigTypeSelect,
			Select: notionapi.Select{
				Options: []notionapi.Option{
					{Name: "Wise", Color: notionapi.ColorGreen},
					{Name: "Paypal", Color: notionapi.ColorBlue},
					{Name: "Remitly", Color: notionapi.ColorOrange},
					{Name: "Billcom", Color: notionapi.ColorPurple},
				},
			},
		},
		"Amount": notionapi.NumberPropertyConfig{
			Type:   notionapi.PropertyConfigTypeNumber,
			Number: notionapi.NumberFormat{Format: notionapi.FormatNumber},
		},
		"Currency": notionapi.SelectPropertyConfig{
			Type: notionapi.PropertyConfigTypeSelect,
			Select: notionapi.Select{
				Options: []notionapi.Option{
					{Name: "USD", Color: notionapi.ColorDefault},
					{Name: "PHP", Color: notionapi.ColorYellow},
					{Name: "EUR", Color: notionapi.ColorGreen},
					{Name: "GBP", Color: notionapi.ColorBlue},
					{Name: "CAD", Color: notionapi.ColorRed},
				},
			},
		},
		"Date": notionapi.DatePropertyConfig{
			Type: notionapi.PropertyConfigTypeDate,
			Date: struct{}{},
		},
		"Subject": notionapi.RichTextPropertyConfig{
			Type:     notionapi.PropertyConfigTypeRichText,
			RichText: struct{}{},
		},
		"Days Ago": notionapi.RichTextPropertyConfig{
			Type:     notionapi.PropertyConfigTypeRichText,
			RichText: struct{}{},
		},
		"Message ID": notionapi.RichTextPropertyConfig{
			Type:     notionapi.PropertyConfigTypeRichText,
			RichText: struct{}{},
		},
		"Created": notionapi.CreatedTimePropertyConfig{
			Type:        notionapi.PropertyConfigCreatedTime,
			CreatedTime: struct{}{},
		},
	}
}
