// Package notion implements the payment store on a Notion database, with
// schema setup (create-if-missing, validate-and-extend-if-present), a
// paginated read of stored message ids, and one page create per record.
package notion

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
)

const databaseTitle = "Payment Tracker"

// Store implements store.PaymentStore against a Notion database.
type Store struct {
	svc          Service
	databaseID   string
	parentPageID string
	log          zerolog.Logger
}

// NewStore creates a Store. databaseID may be empty when parentPageID is
// given; EnsureSchema then creates a fresh database under that page.
func NewStore(svc Service, databaseID, parentPageID string, log zerolog.Logger) *Store {
	return &Store{
		svc:          svc,
		databaseID:   databaseID,
		parentPageID: parentPageID,
		log:          log,
	}
}

// EnsureSchema validates the configured database against the required
// property set, adding missing properties, or creates a new database when
// none is configured.
func (s *Store) EnsureSchema(ctx context.Context) error {
	required := requiredProperties()

	if s.databaseID == "" {
		db, err := s.svc.CreateDatabase(ctx, &notionapi.DatabaseCreateRequest{
			Parent: notionapi.Parent{
				Type:   notionapi.ParentTypePageID,
				PageID: notionapi.PageID(s.parentPageID),
			},
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: databaseTitle}},
			},
			Properties: required,
		})
		if err != nil {
			return fmt.Errorf("EnsureSchema: creating database: %w", err)
		}
		s.databaseID = string(db.ID)
		s.log.Info().Str("database_id", s.databaseID).Msg("Created Notion database")
		return nil
	}

	db, err := s.svc.RetrieveDatabase(ctx, s.databaseID)
	if err != nil {
		return fmt.Errorf("EnsureSchema: retrieving database: %w", err)
	}

	missing := notionapi.PropertyConfigs{}
	for name, cfg := range required {
		existing, ok := db.Properties[name]
		if !ok || existing.GetType() != cfg.GetType() {
			missing[name] = cfg
		}
	}

	if len(missing) == 0 {
		s.log.Debug().Msg("Notion schema validation passed")
		return nil
	}

	s.log.Warn().Int("properties", len(missing)).Msg("Updating Notion database schema")
	if _, err := s.svc.UpdateDatabase(ctx, s.databaseID, &notionapi.DatabaseUpdateRequest{
		Properties: missing,
	}); err != nil {
		return fmt.Errorf("EnsureSchema: updating schema: %w", err)
	}
	return nil
}

// ExistingMessageIDs pages through the database and collects every stored
// Message ID property value.
func (s *Store) ExistingMessageIDs(ctx context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: 100}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := s.svc.QueryDatabase(ctx, s.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("ExistingMessageIDs: %w", err)
		}

		for _, page := range resp.Results {
			if id := pageMessageID(page); id != "" {
				ids[id] = struct{}{}
			}
		}

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return ids, nil
}

// WritePayments creates one page per record; Notion has no batch create.
// Individual failures are reported and do not stop the remaining writes.
func (s *Store) WritePayments(ctx context.Context, payments []*domain.Payment) store.WriteReport {
	var report store.WriteReport

	for _, p := range payments {
		if _, err := s.svc.CreatePage(ctx, s.databaseID, paymentProperties(p)); err != nil {
			report.Failed++
			report.Errors = append(report.Errors,
				fmt.Sprintf("create record for %s (%s %s): %v", p.Sender, p.Amount, p.Currency, err))
			s.log.Warn().Err(err).Str("message_id", p.MessageID).Msg("Failed to create Notion page")
			continue
		}
		report.Created++
	}

	return report
}

func pageMessageID(page notionapi.Page) string {
	prop, ok := page.Properties["Message ID"]
	if !ok {
		return ""
	}
	richText, ok := prop.(*notionapi.RichTextProperty)
	if !ok || len(richText.RichText) == 0 {
		return ""
	}
	return richText.RichText[0].PlainText
}

// paymentProperties maps a payment record onto the database schema.
func paymentProperties(p *domain.Payment) notionapi.Properties {
	props := notionapi.Properties{
		"Sender": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: p.Sender}},
			},
		},
		"Service": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(p.Service)},
		},
		"Currency": notionapi.SelectProperty{
			Select: notionapi.Option{Name: p.Currency},
		},
		"Subject": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: p.Subject}},
			},
		},
		"Days Ago": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: p.DaysAgo}},
			},
		},
		"Message ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: p.MessageID}},
			},
		},
	}

	if amount, err := strconv.ParseFloat(p.Amount, 64); err == nil {
		props["Amount"] = notionapi.NumberProperty{Number: amount}
	}

	if t, err := mail.ParseDate(p.Date); err == nil {
		d := notionapi.Date(t)
		props["Date"] = notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}
	}

	return props
}
