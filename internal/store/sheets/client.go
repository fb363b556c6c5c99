package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// SheetAPI is the slice of the Sheets API the store needs, expressed over
// the first worksheet of one spreadsheet.
type SheetAPI interface {
	GetRange(ctx context.Context, rng string) ([][]interface{}, error)
	UpdateRange(ctx context.Context, rng string, values [][]interface{}) error
	AppendRows(ctx context.Context, rng string, values [][]interface{}) error
	Clear(ctx context.Context) error
}

// Client is the concrete SheetAPI backed by the Google Sheets service.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewClient authenticates with service-account credentials and binds to one
// spreadsheet.
func NewClient(ctx context.Context, credentialsJSON []byte, spreadsheetID string) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("NewClient: creating sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c *Client) GetRange(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("GetRange %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) UpdateRange(ctx context.Context, rng string, values [][]interface{}) error {
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &sheetsapi.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("UpdateRange %s: %w", rng, err)
	}
	return nil
}

func (c *Client) AppendRows(ctx context.Context, rng string, values [][]interface{}) error {
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &sheetsapi.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("AppendRows %s: %w", rng, err)
	}
	return nil
}

func (c *Client) Clear(ctx context.Context) error {
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, "A1:Z10000", &sheetsapi.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Clear: %w", err)
	}
	return nil
}
