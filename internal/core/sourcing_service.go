package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SourcingOptions tunes a lead sourcing run
type SourcingOptions struct {
	Limit            int
	ResultsPerQuery  int
	LinkedInResults  int
	Seeds            []string
	Targets          []string
	SheetTitlePrefix string
	SkipSheet        bool
}

// SourcingService is the core service for lead sourcing
type SourcingService struct {
	search    SearchEngine
	fetcher   PageFetcher
	extractor PageExtractor
	filter    *LeadFilter
	blocklist DomainBlocklist
	writer    LeadWriter
	sheets    SheetProvider
	logger    *zap.Logger
	opts      SourcingOptions
	now       func() time.Time
}

// NewSourcingService creates a new sourcing service. sheets may be nil when
// publishing is skipped.
func NewSourcingService(
	search SearchEngine,
	fetcher PageFetcher,
	extractor PageExtractor,
	filter *LeadFilter,
	blocklist DomainBlocklist,
	writer LeadWriter,
	sheets SheetProvider,
	logger *zap.Logger,
	opts SourcingOptions,
) *SourcingService {
	return &SourcingService{
		search:    search,
		fetcher:   fetcher,
		extractor: extractor,
		filter:    filter,
		blocklist: blocklist,
		writer:    writer,
		sheets:    sheets,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// SetClock replaces the service's time source
func (s *SourcingService) SetClock(now func() time.Time) {
	s.now = now
}

// SheetTitle returns the title of the sheet published on the given day
func (s *SourcingService) SheetTitle(day time.Time) string {
	return fmt.Sprintf("%s - %s", s.opts.SheetTitlePrefix, day.Format("2006-01-02"))
}

// Run collects leads, writes them to CSV and publishes them to a new sheet.
// The report is returned together with a publish error so callers can still
// point at the CSV that was written.
func (s *SourcingService) Run(ctx context.Context) (*SourcingReport, error) {
	report, err := s.Collect(ctx)
	if err != nil {
		return report, err
	}
	if len(report.Leads) == 0 {
		return report, ErrNoLeads
	}

	path, err := s.writer.WriteLeads(ctx, report.Leads)
	if err != nil {
		return report, fmt.Errorf("failed to write leads: %w", err)
	}
	report.CSVPath = path
	s.logger.Info("Leads written", zap.String("path", path), zap.Int("count", len(report.Leads)))

	if s.opts.SkipSheet || s.sheets == nil {
		s.logger.Info("Sheet publishing skipped")
		return report, nil
	}

	title := s.SheetTitle(s.now())
	sheet, err := s.sheets.CreateSheet(ctx, title)
	if err != nil {
		return report, fmt.Errorf("google sheet creation failed: %w", err)
	}

	rows := make([][]string, 0, len(report.Leads)+1)
	rows = append(rows, LeadColumns)
	for _, lead := range report.Leads {
		rows = append(rows, lead.Row())
	}
	if err := sheet.AppendRows(ctx, rows); err != nil {
		return report, fmt.Errorf("failed to write sheet %q: %w", title, err)
	}
	report.SheetURL = sheet.URL()
	s.logger.Info("Sheet published", zap.String("title", title), zap.String("url", report.SheetURL))

	return report, nil
}

// Collect searches every target and seed combination until the limit is reached
func (s *SourcingService) Collect(ctx context.Context) (*SourcingReport, error) {
	report := &SourcingReport{}
	seen := make(map[string]bool)

	for _, target := range s.opts.Targets {
		for _, seed := range s.opts.Seeds {
			if len(report.Leads) >= s.opts.Limit {
				return report, nil
			}
			if err := ctx.Err(); err != nil {
				return report, err
			}

			query := fmt.Sprintf("%q %q", seed, target)
			report.Queries++
			links, err := s.search.Search(ctx, query, s.opts.ResultsPerQuery)
			if err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				s.logger.Warn("Search failed", zap.String("query", query), zap.Error(err))
				continue
			}

			for _, link := range links {
				if len(report.Leads) >= s.opts.Limit {
					return report, nil
				}
				domain := domainKey(link)
				if domain == "" || seen[domain] || s.blocklist.IsBlocked(domain) {
					continue
				}
				seen[domain] = true

				lead, ok := s.visit(ctx, link, target, report)
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				if ok {
					report.Leads = append(report.Leads, lead)
					s.logger.Info("Lead found",
						zap.String("name", lead.Name),
						zap.String("website", lead.WebsiteURL),
						zap.String("location", lead.Location))
				}
			}
		}
	}

	return report, nil
}

// visit fetches, extracts and filters one search result
func (s *SourcingService) visit(ctx context.Context, link, target string, report *SourcingReport) (Lead, bool) {
	html, err := s.fetcher.Fetch(ctx, link)
	if err != nil {
		s.logger.Warn("Fetch failed", zap.String("url", link), zap.Error(err))
		return Lead{}, false
	}
	report.PagesFetched++

	candidate, err := s.extractor.Extract(link, html)
	if err != nil {
		s.logger.Warn("Extraction failed", zap.String("url", link), zap.Error(err))
		return Lead{}, false
	}
	candidate.Target = target

	decision := s.filter.Classify(candidate)
	if !decision.Include {
		report.Excluded++
		return Lead{}, false
	}

	lead := decision.Lead
	if lead.LinkedInURL == "" && lead.Name != "Unknown" && s.opts.LinkedInResults > 0 {
		lead.LinkedInURL = s.findLinkedIn(ctx, lead.Name)
	}
	return lead, true
}

// findLinkedIn searches for a public LinkedIn profile of name
func (s *SourcingService) findLinkedIn(ctx context.Context, name string) string {
	query := fmt.Sprintf("%q executive coach LinkedIn", name)
	links, err := s.search.Search(ctx, query, s.opts.LinkedInResults)
	if err != nil {
		s.logger.Debug("LinkedIn search failed", zap.String("name", name), zap.Error(err))
		return ""
	}
	for _, link := range links {
		if strings.Contains(strings.ToLower(link), "linkedin.com/in") {
			return link
		}
	}
	return ""
}

// domainKey returns the lower-cased host of link without a leading www.
func domainKey(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
