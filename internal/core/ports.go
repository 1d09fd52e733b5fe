package core

import (
	"context"
	"time"
)

// SendLog is the append-only store of onboarding sends
type SendLog interface {
	// Records returns the records for recipient with a timestamp at or after since.
	// A log that cannot be parsed must return an error wrapping ErrSendLogCorrupt.
	Records(ctx context.Context, recipient string, since time.Time) ([]SendRecord, error)

	// Append stores a new record
	Append(ctx context.Context, record SendRecord) error
}

// Mailer defines the interface for email providers
type Mailer interface {
	// Send delivers a message and returns the provider's message id
	Send(ctx context.Context, msg *Message) (*SendResult, error)
}

// SheetWriter appends rows to one spreadsheet
type SheetWriter interface {
	AppendRows(ctx context.Context, rows [][]string) error
	URL() string
}

// SheetProvider creates spreadsheets
type SheetProvider interface {
	CreateSheet(ctx context.Context, title string) (SheetWriter, error)
}

// SearchEngine returns result links for a query
type SearchEngine interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

// PageFetcher downloads a page as decoded text
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// PageExtractor turns a fetched page into a lead candidate
type PageExtractor interface {
	Extract(pageURL string, html string) (*Candidate, error)
}

// LeadWriter persists sourced leads and returns where they were written
type LeadWriter interface {
	WriteLeads(ctx context.Context, leads []Lead) (string, error)
}

// DomainBlocklist reports hosts that are never a coach's own site
type DomainBlocklist interface {
	IsBlocked(host string) bool
}
