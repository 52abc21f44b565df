package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/core/retry"
	"github.com/vietddude/finecheck/internal/infra/transport"
)

// ErrNoCaptcha is returned when no valid captcha could be solved, before the
// query endpoint is contacted.
var ErrNoCaptcha = errors.New("no valid captcha solution")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type queryResponse struct {
	Href string `json:"href"`
}

// QuerySubmitter posts a plate with a solved captcha and learns where the
// results page lives.
type QuerySubmitter struct {
	transport Transport
	captcha   *CaptchaSolver
	cfg       Config
}

// NewQuerySubmitter creates a query submitter.
func NewQuerySubmitter(t Transport, captcha *CaptchaSolver, cfg Config) *QuerySubmitter {
	return &QuerySubmitter{transport: t, captcha: captcha, cfg: cfg.withDefaults()}
}

// Submit solves a captcha and posts the query once. The captcha session is
// carried into the returned location unchanged.
func (q *QuerySubmitter) Submit(
	ctx context.Context,
	plate string,
	vt domain.VehicleType,
) (domain.ResultLocation, error) {
	sol, ok := q.captcha.ResolveWithRetry(ctx)
	if !ok {
		return domain.ResultLocation{}, ErrNoCaptcha
	}

	form := url.Values{}
	form.Set("BienKS", plate)
	form.Set("Xe", string(vt))
	form.Set("captcha", sol.Text)
	form.Set("ipClient", q.cfg.ClientIP)
	form.Set("cUrl", "1")

	loc := domain.ResultLocation{Session: sol.Session}
	resp, err := q.transport.Send(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   q.cfg.QueryPath,
		Header: http.Header{"Cookie": {string(sol.Session)}},
		Form:   form,
	})
	if err != nil {
		return loc, fmt.Errorf("submit query: %w", err)
	}

	var body queryResponse
	if err := json.Unmarshal(bytes.TrimPrefix(resp.Body, utf8BOM), &body); err != nil {
		return loc, fmt.Errorf("decode query response: %w", err)
	}
	loc.URL = body.Href
	return loc, nil
}

// Locate retries captcha plus submit as one unit until the service hands
// back a results URL on its own host.
func (q *QuerySubmitter) Locate(
	ctx context.Context,
	plate string,
	vt domain.VehicleType,
) (domain.ResultLocation, bool) {
	base := q.transport.BaseURL()
	return retry.Do(ctx, "query",
		func(ctx context.Context) (domain.ResultLocation, error) {
			return q.Submit(ctx, plate, vt)
		},
		func(loc domain.ResultLocation, present bool) bool {
			return present && loc.ValidFor(base)
		},
		q.cfg.Policy,
	)
}
