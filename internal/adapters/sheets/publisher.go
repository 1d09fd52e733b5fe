package sheets

import (
	"context"
	"errors"
	"net/http"

	"github.com/mikey/coach-ops/internal/core"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	// Scope is the OAuth scope needed to create and fill spreadsheets
	Scope = sheetsapi.SpreadsheetsScope

	firstCell = "Sheet1!A1"
	urlPrefix = "https://docs.google.com/spreadsheets/d/"
)

// ClientSource yields an authorized HTTP client
type ClientSource interface {
	Client(ctx context.Context) (*http.Client, error)
}

// Publisher creates Google spreadsheets
type Publisher struct {
	clients ClientSource
	opts    []option.ClientOption
	logger  *zap.Logger
}

// NewPublisher creates a new publisher. Credentials are only loaded when a
// sheet is created.
func NewPublisher(clients ClientSource, logger *zap.Logger, opts ...option.ClientOption) *Publisher {
	return &Publisher{
		clients: clients,
		opts:    opts,
		logger:  logger,
	}
}

// CreateSheet creates an empty spreadsheet titled title
func (p *Publisher) CreateSheet(ctx context.Context, title string) (core.SheetWriter, error) {
	client, err := p.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, p.opts...)
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "sheets: create service")
	}

	created, err := svc.Spreadsheets.Create(&sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{Title: title},
	}).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return nil, classify(err, "sheets: create spreadsheet")
	}

	p.logger.Debug("Spreadsheet created", zap.String("title", title), zap.String("id", created.SpreadsheetId))
	return &Sheet{svc: svc, id: created.SpreadsheetId}, nil
}

// Sheet is one created spreadsheet
type Sheet struct {
	svc *sheetsapi.Service
	id  string
}

// ID returns the spreadsheet id
func (s *Sheet) ID() string {
	return s.id
}

// URL returns the browser URL of the spreadsheet
func (s *Sheet) URL() string {
	return urlPrefix + s.id
}

// AppendRows appends rows below any existing content of the first sheet
func (s *Sheet) AppendRows(ctx context.Context, rows [][]string) error {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}

	_, err := s.svc.Spreadsheets.Values.Append(s.id, firstCell, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return classify(err, "sheets: append rows")
	}
	return nil
}

// classify maps rejected credentials to core.AuthError
func classify(err error, msg string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
		return &core.AuthError{Provider: "sheets", Err: eris.Wrap(err, msg)}
	}
	return eris.Wrap(err, msg)
}
