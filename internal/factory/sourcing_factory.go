package factory

import (
	"github.com/mikey/coach-ops/internal/adapters/leadcsv"
	"github.com/mikey/coach-ops/internal/adapters/web"
	"github.com/mikey/coach-ops/internal/config"
	"github.com/mikey/coach-ops/internal/core"
	"github.com/mikey/coach-ops/internal/domainlist"
	"github.com/mikey/coach-ops/internal/extract"
	"github.com/mikey/coach-ops/internal/utils"
	"go.uber.org/zap"
)

// SourcingFactory creates the web and filtering components of lead sourcing
type SourcingFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourcingFactory creates a new sourcing factory
func NewSourcingFactory(cfg *config.Config, logger *zap.Logger) *SourcingFactory {
	return &SourcingFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateFetcher creates the rate-limited page fetcher
func (f *SourcingFactory) CreateFetcher() (*web.Fetcher, error) {
	httpCfg, err := f.cfg.GetHTTP()
	if err != nil {
		return nil, err
	}
	return web.NewFetcher(web.Options{
		UserAgent:    httpCfg.UserAgent,
		Timeout:      httpCfg.Timeout,
		RequestDelay: httpCfg.RequestDelay,
		MaxAttempts:  httpCfg.MaxAttempts,
		RetryDelay:   httpCfg.RetryDelay,
	}, f.logger), nil
}

// CreateSearchEngine creates the search engine backed by fetcher
func (f *SourcingFactory) CreateSearchEngine(fetcher core.PageFetcher) core.SearchEngine {
	return web.NewBingSearch(fetcher, f.cfg.GetSourcing().SearchURL, f.logger)
}

// CreateTextProcessor creates the text helper shared by extraction
func (f *SourcingFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreateExtractor creates the page extractor
func (f *SourcingFactory) CreateExtractor(text *utils.TextProcessor) *extract.Extractor {
	return extract.NewExtractor(f.cfg.GetFilter().SpecialtyKeywords, text, f.logger)
}

// CreateLeadFilter creates the lead filter
func (f *SourcingFactory) CreateLeadFilter() *core.LeadFilter {
	return core.NewLeadFilter(f.cfg.GetFilter().ExcludeKeywords, f.logger)
}

// CreateBlocklist creates the blocked-domain checker
func (f *SourcingFactory) CreateBlocklist() *domainlist.Checker {
	return domainlist.NewChecker(f.cfg.GetFilter().BlockedDomains, f.logger)
}

// CreateLeadWriter creates the lead CSV writer
func (f *SourcingFactory) CreateLeadWriter() *leadcsv.Writer {
	return leadcsv.NewWriter(f.cfg.GetSourcing().CSVPath, f.logger)
}

// SourcingOptions returns the run options from configuration
func (f *SourcingFactory) SourcingOptions() core.SourcingOptions {
	sourcing := f.cfg.GetSourcing()
	return core.SourcingOptions{
		Limit:            sourcing.Limit,
		ResultsPerQuery:  sourcing.ResultsPerQuery,
		LinkedInResults:  sourcing.LinkedInResults,
		Seeds:            sourcing.Seeds,
		Targets:          sourcing.Targets,
		SheetTitlePrefix: sourcing.SheetTitlePrefix,
		SkipSheet:        sourcing.SkipSheet,
	}
}
