// Package lookup runs a traffic-violation lookup against the csgt.vn service.
//
// A lookup is a strictly sequential chain: solve a captcha to obtain a
// session, submit the plate with that session to learn where the results
// page lives, then fetch and parse the results page. Each stage is wrapped
// by the retry combinator and reports failure as an absent value; only the
// Checker turns absence into a typed PipelineResult.
package lookup

import (
	"context"

	"github.com/vietddude/finecheck/internal/core/config"
	"github.com/vietddude/finecheck/internal/core/retry"
	"github.com/vietddude/finecheck/internal/infra/transport"
)

// Transport sends requests to the lookup service.
type Transport interface {
	Send(ctx context.Context, r transport.Request) (*transport.Response, error)
	BaseURL() string
}

// Config holds the upstream contract and the retry policy shared by all stages.
type Config struct {
	CaptchaPath     string
	QueryPath       string
	ResultContainer string
	SessionCookie   string
	ClientIP        string
	Policy          retry.Policy
}

// DefaultConfig returns the csgt.vn contract with the default retry policy.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

// ConfigFrom builds a stage config from application configuration.
func ConfigFrom(cfg *config.AppConfig) Config {
	return Config{
		CaptchaPath:     cfg.Lookup.CaptchaPath,
		QueryPath:       cfg.Lookup.QueryPath,
		ResultContainer: cfg.Lookup.ResultContainer,
		SessionCookie:   cfg.Lookup.SessionCookie,
		ClientIP:        cfg.Lookup.ClientIP,
		Policy: retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Delay:       cfg.Retry.Delay,
			Debug:       cfg.Retry.RetryDebug(),
		},
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.CaptchaPath == "" {
		c.CaptchaPath = config.DefaultCaptchaPath
	}
	if c.QueryPath == "" {
		c.QueryPath = config.DefaultQueryPath
	}
	if c.ResultContainer == "" {
		c.ResultContainer = config.DefaultResultContainer
	}
	if c.SessionCookie == "" {
		c.SessionCookie = config.DefaultSessionCookie
	}
	if c.ClientIP == "" {
		c.ClientIP = config.DefaultClientIP
	}
	if c.Policy.MaxAttempts == 0 {
		c.Policy = retry.DefaultPolicy
	}
	return c
}
