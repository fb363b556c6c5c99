package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// Service is the slice of the Notion API this backend needs. An interface so
// tests can substitute a recording fake.
type Service interface {
	RetrieveDatabase(ctx context.Context, databaseID string) (*notionapi.Database, error)
	UpdateDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseUpdateRequest) (*notionapi.Database, error)
	CreateDatabase(ctx context.Context, req *notionapi.DatabaseCreateRequest) (*notionapi.Database, error)
	QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
}

// Client is the concrete Service backed by the official Notion SDK.
type Client struct {
	client *notionapi.Client
}

// NewClient creates a Client with the provided API token.
func NewClient(token string) *Client {
	return &Client{client: notionapi.NewClient(notionapi.Token(token))}
}

func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*notionapi.Database, error) {
	db, err := c.client.Database.Get(ctx, notionapi.DatabaseID(databaseID))
	if err != nil {
		return nil, fmt.Errorf("RetrieveDatabase: %w", err)
	}
	return db, nil
}

func (c *Client) UpdateDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseUpdateRequest) (*notionapi.Database, error) {
	db, err := c.client.Database.Update(ctx, notionapi.DatabaseID(databaseID), req)
	if err != nil {
		return nil, fmt.Errorf("UpdateDatabase: %w", err)
	}
	return db, nil
}

func (c *Client) CreateDatabase(ctx context.Context, req *notionapi.DatabaseCreateRequest) (*notionapi.Database, error) {
	db, err := c.client.Database.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CreateDatabase: %w", err)
	}
	return db, nil
}

func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	resp, err := c.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
	if err != nil {
		return nil, fmt.Errorf("QueryDatabase: %w", err)
	}
	return resp, nil
}

func (c *Client) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	}

	page, err := c.client.Page.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CreatePage: %w", err)
	}
	return page, nil
}
