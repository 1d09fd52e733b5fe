package web

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/mikey/coach-ops/internal/core"
	"github.com/mikey/coach-ops/internal/resilience"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a page is read
const maxBodyBytes = 5 << 20

// Options configures the page fetcher.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	RequestDelay time.Duration
	MaxAttempts  int
	RetryDelay   time.Duration
}

// Fetcher downloads pages one at a time with a fixed delay between requests.
type Fetcher struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewFetcher creates a new Fetcher with the given options.
func NewFetcher(opts Options, logger *zap.Logger) *Fetcher {
	return NewFetcherWithClient(&http.Client{Timeout: opts.Timeout}, opts, logger)
}

// NewFetcherWithClient creates a Fetcher that uses client for requests.
func NewFetcherWithClient(client *http.Client, opts Options, logger *zap.Logger) *Fetcher {
	limit := rate.Inf
	if opts.RequestDelay > 0 {
		limit = rate.Every(opts.RequestDelay)
	}
	return &Fetcher{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Fetch downloads pageURL and returns its body decoded to UTF-8. Transient
// failures are retried; exhausting the attempts yields a core.NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	attempts := 0
	cfg := resilience.RetryConfig{
		MaxAttempts: f.opts.MaxAttempts,
		Delay:       f.opts.RetryDelay,
		OnRetry: func(attempt int, err error) {
			f.logger.Debug("Retrying fetch",
				zap.String("url", pageURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
		},
	}

	body, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (string, error) {
		attempts++
		return f.get(ctx, pageURL)
	})
	if err != nil {
		if resilience.IsTransient(err) {
			return "", &core.NetworkError{Op: "fetch", Target: pageURL, Attempts: attempts, Err: err}
		}
		return "", err
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, pageURL string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "web: rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", eris.Wrapf(err, "web: create request for %s", pageURL)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", resilience.NewTransientError(eris.Wrapf(err, "web: get %s", pageURL), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := eris.Errorf("web: unexpected status %d for %s", resp.StatusCode, pageURL)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(err, resp.StatusCode)
		}
		return "", err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", resilience.NewTransientError(eris.Wrapf(err, "web: read %s", pageURL), 0)
	}

	return decodeBody(raw, resp.Header.Get("Content-Type")), nil
}

// decodeBody converts raw to UTF-8 using the charset from contentType
func decodeBody(raw []byte, contentType string) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if name := params["charset"]; name != "" && !strings.EqualFold(name, "utf-8") {
			if enc, err := htmlindex.Get(name); err == nil {
				if decoded, err := enc.NewDecoder().Bytes(raw); err == nil {
					return string(decoded)
				}
			}
		}
	}
	return strings.ToValidUTF8(string(raw), "")
}
