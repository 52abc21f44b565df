package lookup

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/core/retry"
	"github.com/vietddude/finecheck/internal/infra/transport"
)

// ResultFetcher downloads and parses the results page.
type ResultFetcher struct {
	transport Transport
	cfg       Config
}

// NewResultFetcher creates a result fetcher.
func NewResultFetcher(t Transport, cfg Config) *ResultFetcher {
	return &ResultFetcher{transport: t, cfg: cfg.withDefaults()}
}

// Fetch downloads the page once. A transport failure asks for a retry.
func (f *ResultFetcher) Fetch(ctx context.Context, loc domain.ResultLocation) domain.ParseOutcome {
	resp, err := f.transport.Send(ctx, transport.Request{
		URL:    loc.URL,
		Header: http.Header{"Cookie": {string(loc.Session)}},
	})
	if err != nil {
		slog.Warn("Failed to fetch results page", "url", loc.URL, "error", err)
		return domain.ParseOutcome{Retry: true}
	}
	return parseResultPage(resp.Body, f.cfg.ResultContainer)
}

// FetchWithRetry retries Fetch until the page parses without a retry signal.
func (f *ResultFetcher) FetchWithRetry(
	ctx context.Context,
	loc domain.ResultLocation,
) (domain.ParseOutcome, bool) {
	return retry.Do(ctx, "result",
		func(ctx context.Context) (domain.ParseOutcome, error) {
			return f.Fetch(ctx, loc), nil
		},
		func(out domain.ParseOutcome, present bool) bool {
			return present && !out.Retry
		},
		f.cfg.Policy,
	)
}
