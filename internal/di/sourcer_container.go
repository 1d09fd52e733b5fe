package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/coach-ops/internal/adapters/web"
	"github.com/mikey/coach-ops/internal/config"
	"github.com/mikey/coach-ops/internal/core"
	"github.com/mikey/coach-ops/internal/factory"
	"github.com/mikey/coach-ops/internal/utils"
)

// BuildSourcerContainer creates and configures a dependency injection container
// for the lead sourcer
func BuildSourcerContainer(cfg *config.Config, logger *zap.Logger) (*dig.Container, error) {
	container := dig.New()

	// Register configuration and logger
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *zap.Logger { return logger }); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewSourcingFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewGoogleFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.SourcingFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register page fetcher
	if err := container.Provide(func(f *factory.SourcingFactory) (*web.Fetcher, error) {
		return f.CreateFetcher()
	}); err != nil {
		return nil, err
	}

	// Register lead sourcing service
	if err := container.Provide(func(
		f *factory.SourcingFactory,
		google *factory.GoogleFactory,
		fetcher *web.Fetcher,
		text *utils.TextProcessor,
		logger *zap.Logger,
	) *core.SourcingService {
		opts := f.SourcingOptions()

		var sheets core.SheetProvider
		if !opts.SkipSheet {
			sheets = google.CreateSheetPublisher()
		}

		return core.NewSourcingService(
			f.CreateSearchEngine(fetcher),
			fetcher,
			f.CreateExtractor(text),
			f.CreateLeadFilter(),
			f.CreateBlocklist(),
			f.CreateLeadWriter(),
			sheets,
			logger,
			opts,
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
