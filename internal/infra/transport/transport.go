// Package transport sends requests to the lookup service.
//
// A Transport is bound to one base URL and a set of default headers. Response
// bodies are returned as raw bytes with their headers so callers can read
// binary captcha images and Set-Cookie values from the same call.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/finecheck/internal/metrics"
)

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("unexpected status")

const (
	// maxBodySize bounds how much of a response is read.
	maxBodySize  = 10 << 20
	maxRedirects = 10
)

// Request is one call to the lookup service.
type Request struct {
	Method string // defaults to GET
	// Path is resolved against the base URL. URL, when set, is used as is.
	Path   string
	URL    string
	Header http.Header
	// Form is sent url-encoded as the body of a POST.
	Form url.Values
	// RequestID is attached as X-Request-Id; generated when empty.
	RequestID string
}

// Response carries the status, headers and raw body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Config holds transport settings.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// HealthStatus represents the health state of the upstream.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
}

// HTTPTransport implements the lookup transport over net/http.
type HTTPTransport struct {
	baseURL    *url.URL
	userAgent  string
	httpClient *http.Client

	mu           sync.RWMutex
	health       HealthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int
}

// New creates a new HTTP transport.
func New(cfg Config) (*HTTPTransport, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	t := &HTTPTransport{
		baseURL:   base,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		health: HealthStatus{
			Available:     true,
			LastSuccessAt: time.Now(),
		},
	}
	t.httpClient.CheckRedirect = t.checkRedirect
	return t, nil
}

// checkRedirect follows redirects that stay on the service's site. A hop to
// another site usually lands on a login or error page, so the 3xx is
// returned to the caller instead.
func (t *HTTPTransport) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if !sameSite(req.URL.Hostname(), t.baseURL.Hostname()) {
		slog.Debug("Not following off-site redirect", "from", via[len(via)-1].URL.String(), "to", req.URL.String())
		return http.ErrUseLastResponse
	}
	// net/http drops Cookie when a hop leaves the original host's domain,
	// which includes www to apex.
	if cookie := via[0].Header.Get("Cookie"); cookie != "" && req.Header.Get("Cookie") == "" {
		req.Header.Set("Cookie", cookie)
	}
	return nil
}

// sameSite treats a host and its www form as one site.
func sameSite(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, "www."), strings.TrimPrefix(b, "www."))
}

// BaseURL returns the service base URL as configured.
func (t *HTTPTransport) BaseURL() string {
	return strings.TrimSuffix(t.baseURL.String(), "/")
}

// Send performs the request and returns the full response.
func (t *HTTPTransport) Send(ctx context.Context, r Request) (*Response, error) {
	start := time.Now()

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := t.resolve(r)
	if err != nil {
		t.recordFailure()
		return nil, err
	}

	var body io.Reader
	if r.Form != nil {
		body = strings.NewReader(r.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		t.recordFailure()
		return nil, fmt.Errorf("create request: %w", err)
	}

	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	for k, vs := range r.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.Form != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	reqID := r.RequestID
	if reqID == "" {
		reqID = uuid.New().String()
	}
	req.Header.Set("X-Request-Id", reqID)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.recordFailure()
		metrics.UpstreamRequests.WithLabelValues(method, "error").Inc()
		slog.Debug("Upstream request failed", "req_id", reqID, "method", method, "url", target, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	latency := time.Since(start)
	metrics.UpstreamLatency.WithLabelValues(method).Observe(latency.Seconds())
	metrics.UpstreamRequests.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		t.recordFailure()
		return nil, fmt.Errorf("read response: %w", err)
	}

	slog.Debug("Upstream request done",
		"req_id", reqID,
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"bytes", len(data),
		"latency", latency,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.recordFailure()
		return nil, fmt.Errorf("%s %s: %w %d", method, target, ErrStatus, resp.StatusCode)
	}

	t.recordSuccess(latency)
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func (t *HTTPTransport) resolve(r Request) (string, error) {
	if r.URL != "" {
		return r.URL, nil
	}
	ref, err := url.Parse(r.Path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", r.Path, err)
	}
	return t.baseURL.ResolveReference(ref).String(), nil
}

// Health returns the upstream health status.
func (t *HTTPTransport) Health() HealthStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.health
}

// Close cleans up resources.
func (t *HTTPTransport) Close() error {
	t.httpClient.CloseIdleConnections()
	return nil
}

func (t *HTTPTransport) recordSuccess(latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.successCount++
	t.requestCount++
	t.totalLatency += latency
	t.health.LastSuccessAt = time.Now()
	t.health.Available = true

	if t.requestCount > 0 {
		t.health.ErrorRate = float64(t.failureCount) / float64(t.requestCount)
	}
	if t.successCount > 0 {
		t.health.Latency = t.totalLatency / time.Duration(t.successCount)
	}
}

func (t *HTTPTransport) recordFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failureCount++
	t.requestCount++
	t.health.LastFailureAt = time.Now()

	if t.requestCount > 0 {
		t.health.ErrorRate = float64(t.failureCount) / float64(t.requestCount)
	}

	if t.health.ErrorRate > 0.5 {
		t.health.Available = false
	}
}
