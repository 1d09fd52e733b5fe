package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/coach-ops/internal/adapters/sendlog"
	"github.com/mikey/coach-ops/internal/config"
	"github.com/mikey/coach-ops/internal/core"
	"github.com/mikey/coach-ops/internal/factory"
	"github.com/mikey/coach-ops/internal/resilience"
)

// BuildSenderContainer creates and configures a dependency injection container
// for the onboarding sender
func BuildSenderContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*dig.Container, error) {
	container := dig.New()

	// Register run context, configuration and logger
	if err := container.Provide(func() context.Context { return ctx }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *zap.Logger { return logger }); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewGoogleFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMailerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSendLogFactory); err != nil {
		return nil, err
	}

	// Register mail provider
	if err := container.Provide(func(f *factory.MailerFactory) (core.Mailer, error) {
		return f.CreateMailer()
	}); err != nil {
		return nil, err
	}

	// Register send log
	if err := container.Provide(func(ctx context.Context, f *factory.SendLogFactory) (sendlog.Log, error) {
		return f.CreateSendLog(ctx)
	}); err != nil {
		return nil, err
	}

	// Register onboarding configuration
	if err := container.Provide(func(cfg *config.Config) (config.OnboardingConfig, error) {
		return cfg.GetOnboarding()
	}); err != nil {
		return nil, err
	}

	// Register onboarding service
	if err := container.Provide(func(
		mailer core.Mailer,
		log sendlog.Log,
		onboarding config.OnboardingConfig,
		cfg *config.Config,
		logger *zap.Logger,
	) (*core.OnboardingService, error) {
		httpCfg, err := cfg.GetHTTP()
		if err != nil {
			return nil, err
		}
		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = httpCfg.MaxAttempts
		retry.Delay = httpCfg.RetryDelay

		return core.NewOnboardingService(
			mailer,
			log,
			logger,
			onboarding.DuplicateWindow,
			onboarding.TemplateVersion,
			onboarding.Subject,
			retry,
		), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
