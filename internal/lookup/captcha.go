package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/core/retry"
	"github.com/vietddude/finecheck/internal/infra/ocr"
	"github.com/vietddude/finecheck/internal/infra/transport"
)

// CaptchaSolver fetches a captcha image and reads it with OCR. The session
// cookie set alongside the image is the one the solution is valid for.
type CaptchaSolver struct {
	transport Transport
	ocr       ocr.Recognizer
	cfg       Config
}

// NewCaptchaSolver creates a captcha solver.
func NewCaptchaSolver(t Transport, rec ocr.Recognizer, cfg Config) *CaptchaSolver {
	return &CaptchaSolver{transport: t, ocr: rec, cfg: cfg.withDefaults()}
}

// Resolve makes one attempt at a captcha solution. A missing cookie or empty
// image yields a partial solution that Valid rejects.
func (s *CaptchaSolver) Resolve(ctx context.Context) (domain.CaptchaSolution, error) {
	resp, err := s.transport.Send(ctx, transport.Request{Path: s.cfg.CaptchaPath})
	if err != nil {
		return domain.CaptchaSolution{}, fmt.Errorf("fetch captcha: %w", err)
	}

	sol := domain.CaptchaSolution{
		Session: ExtractSessionCookie(resp.Header.Values("Set-Cookie"), s.cfg.SessionCookie),
	}
	if len(resp.Body) == 0 {
		return sol, nil
	}

	text, err := s.ocr.Recognize(ctx, resp.Body)
	if err != nil {
		return sol, fmt.Errorf("recognize captcha: %w", err)
	}
	sol.Text = NormalizeCaptcha(text)
	return sol, nil
}

// ResolveWithRetry retries Resolve until it yields a submittable solution.
func (s *CaptchaSolver) ResolveWithRetry(ctx context.Context) (domain.CaptchaSolution, bool) {
	return retry.Do(ctx, "captcha", s.Resolve,
		func(sol domain.CaptchaSolution, present bool) bool {
			return present && sol.Valid()
		},
		s.cfg.Policy,
	)
}

// ExtractSessionCookie returns the first "name=value" pair among Set-Cookie
// headers whose name matches, without attributes. Empty when none matches.
func ExtractSessionCookie(setCookies []string, name string) domain.SessionID {
	prefix := name + "="
	for _, c := range setCookies {
		pair, _, _ := strings.Cut(c, ";")
		if strings.HasPrefix(pair, prefix) {
			return domain.SessionID(pair)
		}
	}
	return ""
}

// NormalizeCaptcha trims and lowercases OCR output and drops anything that is
// not an ASCII letter or digit.
func NormalizeCaptcha(text string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(strings.TrimSpace(text)))
}
