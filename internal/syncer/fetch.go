package syncer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BrianInAz/context-standards/internal/output"
)

// Fetch retry bounds: a transient failure is retried a fixed number of
// times with a fixed pause between attempts; exhausting them aborts the run.
const (
	defaultFetchAttempts = 3
	defaultFetchDelay    = 2 * time.Second
)

// TemplateSource retrieves the canonical template for a mode.
type TemplateSource interface {
	Fetch(ctx context.Context, mode Mode) ([]byte, error)
}

// HTTPDoer defines the HTTP operations required by HTTPSource.
// This allows injection of test doubles for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPSource fetches templates with a plain GET against a well-known URL
// per mode. Any non-2xx response is a fetch failure.
type HTTPSource struct {
	urls   map[Mode]string
	client HTTPDoer
}

// NewHTTPSource creates a source with the given per-mode URLs.
func NewHTTPSource(projectURL, globalURL string) *HTTPSource {
	return &HTTPSource{
		urls: map[Mode]string{
			ModeProject: projectURL,
			ModeGlobal:  globalURL,
		},
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithClient overrides the HTTP client. Returns the source for chaining.
func (s *HTTPSource) WithClient(client HTTPDoer) *HTTPSource {
	s.client = client
	return s
}

// Fetch retrieves the template for mode.
func (s *HTTPSource) Fetch(ctx context.Context, mode Mode) ([]byte, error) {
	url, ok := s.urls[mode]
	if ok && url == "" {
		ok = false
	}
	if !ok {
		return nil, output.NewUserError(fmt.Sprintf("no template URL configured for mode %q", mode))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("creating template request", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("template request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, output.NewSystemError(fmt.Sprintf("template fetch returned status %d for %s", resp.StatusCode, url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("reading template body", err)
	}
	return body, nil
}

// fetchWithRetry acquires the remote template, retrying transient failures.
// It commits nothing to the filesystem; the caller aborts the whole run when
// this returns an error.
func fetchWithRetry(ctx context.Context, opts Options) ([]byte, error) {
	attempts := opts.RetryAttempts
	if attempts <= 0 {
		attempts = defaultFetchAttempts
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = defaultFetchDelay
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, output.NewSystemErrorWithCause("template fetch cancelled", err)
		}

		data, err := opts.Source.Fetch(ctx, opts.Layout.Mode)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt < attempts {
			sleep(delay)
		}
	}

	return nil, output.NewSystemErrorWithCause(
		fmt.Sprintf("template fetch failed after %d attempts", attempts), lastErr)
}
