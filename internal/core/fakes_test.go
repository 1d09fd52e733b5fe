package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

type fakeSendLog struct {
	mu        sync.Mutex
	records   []SendRecord
	readErr   error
	appendErr error
}

func (f *fakeSendLog) Records(_ context.Context, recipient string, since time.Time) ([]SendRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []SendRecord
	for _, r := range f.records {
		if NormalizeRecipient(r.Recipient) == recipient && !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSendLog) Append(_ context.Context, record SendRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, record)
	return nil
}

type fakeMailer struct {
	sent []*Message
	errs []error
}

func (f *fakeMailer) Send(_ context.Context, msg *Message) (*SendResult, error) {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	f.sent = append(f.sent, msg)
	return &SendResult{MessageID: fmt.Sprintf("msg-%d", len(f.sent)), Provider: "fake"}, nil
}

type fakeSearch struct {
	results map[string][]string
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, query string, maxResults int) ([]string, error) {
	f.queries = append(f.queries, query)
	links, ok := f.results[query]
	if !ok {
		return nil, errors.New("no results configured")
	}
	if len(links) > maxResults {
		links = links[:maxResults]
	}
	return links, nil
}

type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (string, error) {
	f.fetched = append(f.fetched, pageURL)
	page, ok := f.pages[pageURL]
	if !ok {
		return "", errors.New("404 not found")
	}
	return page, nil
}

// fakeExtractor reads "name|location|text" page bodies
type fakeExtractor struct{}

func (fakeExtractor) Extract(pageURL string, html string) (*Candidate, error) {
	parts := strings.SplitN(html, "|", 3)
	if len(parts) != 3 {
		return nil, errors.New("malformed page")
	}
	return &Candidate{
		Lead: Lead{
			Name:       parts[0],
			Role:       "Executive Coach",
			WebsiteURL: pageURL,
			Location:   parts[1],
			Evidence:   parts[2],
		},
		PageText: parts[2],
	}, nil
}

type fakeBlocklist struct{}

func (fakeBlocklist) IsBlocked(host string) bool {
	return strings.HasSuffix(host, "linkedin.com")
}

type fakeWriter struct {
	leads []Lead
	err   error
}

func (f *fakeWriter) WriteLeads(_ context.Context, leads []Lead) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.leads = leads
	return "leads.csv", nil
}

type fakeSheet struct {
	title string
	rows  [][]string
}

func (f *fakeSheet) AppendRows(_ context.Context, rows [][]string) error {
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeSheet) URL() string {
	return "https://docs.google.com/spreadsheets/d/sheet-1"
}

type fakeSheets struct {
	sheet *fakeSheet
	err   error
}

func (f *fakeSheets) CreateSheet(_ context.Context, title string) (SheetWriter, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sheet = &fakeSheet{title: title}
	return f.sheet, nil
}
