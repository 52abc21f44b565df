package lookup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/finecheck/internal/core/retry"
	"github.com/vietddude/finecheck/internal/infra/transport"
)

const testSession = "PHPSESSID=s3ss10n"

// fakeUpstream emulates the captcha, query and results endpoints.
type fakeUpstream struct {
	srv *httptest.Server

	mu         sync.Mutex
	noCookie   bool
	resultPage string
	queryForms []map[string]string

	captchaHits atomic.Int32
	queryHits   atomic.Int32
	resultHits  atomic.Int32
}

func newFakeUpstream(t *testing.T, resultPage string) *fakeUpstream {
	t.Helper()
	u := &fakeUpstream{resultPage: resultPage}
	u.srv = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.srv.Close)
	return u
}

func (u *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/lib/captcha/captcha.class.php":
		u.captchaHits.Add(1)
		u.mu.Lock()
		noCookie := u.noCookie
		u.mu.Unlock()
		if !noCookie {
			w.Header().Add("Set-Cookie", "other=1; path=/")
			w.Header().Add("Set-Cookie", testSession+"; path=/; HttpOnly")
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("captcha-image"))

	case r.Method == http.MethodPost && r.URL.Query().Get("task") == "tracuu_post":
		u.queryHits.Add(1)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		u.mu.Lock()
		u.queryForms = append(u.queryForms, map[string]string{
			"BienKS":   r.PostForm.Get("BienKS"),
			"Xe":       r.PostForm.Get("Xe"),
			"captcha":  r.PostForm.Get("captcha"),
			"ipClient": r.PostForm.Get("ipClient"),
			"cUrl":     r.PostForm.Get("cUrl"),
			"cookie":   r.Header.Get("Cookie"),
		})
		u.mu.Unlock()
		if r.Header.Get("Cookie") != testSession {
			_, _ = w.Write([]byte(`{"href":""}`))
			return
		}
		// The service prefixes its JSON with a byte order mark
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("\xEF\xBB\xBF"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"href": u.srv.URL + "/tra-cuu-phuong-tien-vi-pham.html?BienKiemSoat=" + r.PostForm.Get("BienKS"),
		})

	case r.URL.Path == "/tra-cuu-phuong-tien-vi-pham.html":
		u.resultHits.Add(1)
		if r.Header.Get("Cookie") != testSession {
			http.Error(w, "session expired", http.StatusForbidden)
			return
		}
		u.mu.Lock()
		page := u.resultPage
		u.mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		_, _ = w.Write([]byte(page))

	default:
		http.NotFound(w, r)
	}
}

func (u *fakeUpstream) forms() []map[string]string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]map[string]string(nil), u.queryForms...)
}

func (u *fakeUpstream) setNoCookie() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.noCookie = true
}

// fakeOCR returns a fixed reading for every image.
type fakeOCR struct {
	text  string
	err   error
	calls atomic.Int32
}

func (f *fakeOCR) Recognize(ctx context.Context, image []byte) (string, error) {
	f.calls.Add(1)
	return f.text, f.err
}

func testPolicy(attempts int) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, Delay: time.Millisecond}
}

func newTestTransport(t *testing.T, baseURL string) *transport.HTTPTransport {
	t.Helper()
	tr, err := transport.New(transport.Config{BaseURL: baseURL, UserAgent: "finecheck-test", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("transport.New failed: %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}
