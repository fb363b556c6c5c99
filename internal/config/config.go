package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

// Backend selects which external store implementation a run writes to.
type Backend string

const (
	BackendNotion   Backend = "notion"
	BackendSheets   Backend = "sheets"
	BackendBigQuery Backend = "bigquery"
)

const (
	defaultIMAPAddr   = "imap.gmail.com:993"
	defaultWindowDays = 15
	defaultCurrency   = "PHP"
	defaultPort       = "8080"
)

// Config holds everything a run needs, loaded from the environment.
// Secrets are expected to be populated by the deployment (Secret Manager,
// .env file locally).
type Config struct {
	IMAPAddr      string
	GmailUsername string
	GmailPassword string

	WindowDays      int
	DefaultCurrency string

	StoreBackend Backend

	NotionToken        string
	NotionDatabaseID   string
	NotionParentPageID string

	SheetsSpreadsheetID   string
	GoogleCredentialsJSON string

	BigQueryProjectID string
	BigQueryDataset   string

	Port string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is the normal case in deployed environments.
	_ = godotenv.Load()

	cfg := &Config{
		IMAPAddr:              getenv("IMAP_ADDR", defaultIMAPAddr),
		GmailUsername:         os.Getenv("GMAIL_USERNAME"),
		GmailPassword:         os.Getenv("GMAIL_APP_PASSWORD"),
		DefaultCurrency:       getenv("DEFAULT_CURRENCY", defaultCurrency),
		StoreBackend:          Backend(getenv("STORE_BACKEND", string(BackendNotion))),
		NotionToken:           os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID:      os.Getenv("NOTION_DATABASE_ID"),
		NotionParentPageID:    os.Getenv("NOTION_PARENT_PAGE_ID"),
		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		GoogleCredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		BigQueryProjectID:     os.Getenv("BIGQUERY_PROJECT_ID"),
		BigQueryDataset:       getenv("BIGQUERY_DATASET", "finance"),
		Port:                  getenv("PORT", defaultPort),
	}

	windowDays := defaultWindowDays
	if v := os.Getenv("WINDOW_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("Load: invalid WINDOW_DAYS %q", v)
		}
		windowDays = n
	}
	cfg.WindowDays = windowDays

	if !domain.ValidCurrency(cfg.DefaultCurrency) {
		return nil, fmt.Errorf("Load: unsupported DEFAULT_CURRENCY %q", cfg.DefaultCurrency)
	}

	return cfg, nil
}

// Validate checks that every value required for a full extraction run is set.
// Called before a run, not at load time, so test-mode requests can report
// partial configuration instead of failing.
func (c *Config) Validate() error {
	var missing []string
	if c.GmailUsername == "" {
		missing = append(missing, "GMAIL_USERNAME")
	}
	if c.GmailPassword == "" {
		missing = append(missing, "GMAIL_APP_PASSWORD")
	}

	switch c.StoreBackend {
	case BackendNotion:
		if c.NotionToken == "" {
			missing = append(missing, "NOTION_TOKEN")
		}
		if c.NotionDatabaseID == "" && c.NotionParentPageID == "" {
			missing = append(missing, "NOTION_DATABASE_ID")
		}
	case BackendSheets:
		if c.SheetsSpreadsheetID == "" {
			missing = append(missing, "SHEETS_SPREADSHEET_ID")
		}
		if c.GoogleCredentialsJSON == "" {
			missing = append(missing, "GOOGLE_CREDENTIALS_JSON")
		}
	case BackendBigQuery:
		if c.BigQueryProjectID == "" {
			missing = append(missing, "BIGQUERY_PROJECT_ID")
		}
	default:
		return fmt.Errorf("Validate: unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("Validate: missing configuration: %v", missing)
	}
	return nil
}

// Status reports which configuration values are present, without exposing
// their contents. Returned by the trigger surface's test mode.
func (c *Config) Status() map[string]bool {
	return map[string]bool{
		"gmail_username":    c.GmailUsername != "",
		"gmail_password":    c.GmailPassword != "",
		"store_backend":     c.StoreBackend != "",
		"notion_token":      c.NotionToken != "",
		"notion_db_id":      c.NotionDatabaseID != "",
		"sheets_id":         c.SheetsSpreadsheetID != "",
		"bigquery_project":  c.BigQueryProjectID != "",
		"window_days":       c.WindowDays > 0,
		"default_currency":  c.DefaultCurrency != "",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
