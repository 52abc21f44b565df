package retry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

var fastPolicy = Policy{MaxAttempts: 5, Delay: time.Millisecond, Debug: true}

func TestDo_AlwaysRejectRunsEveryAttempt(t *testing.T) {
	for _, n := range []int{1, 3, 5} {
		calls := 0
		policy := fastPolicy
		policy.MaxAttempts = n

		_, ok := Do(context.Background(), "reject",
			func(ctx context.Context) (int, error) {
				calls++
				return calls, nil
			},
			func(int, bool) bool { return false },
			policy,
		)
		if ok {
			t.Fatalf("n=%d: expected absence", n)
		}
		if calls != n {
			t.Errorf("n=%d: expected %d attempts, got %d", n, n, calls)
		}
	}
}

func TestDo_AcceptFirstAttempt(t *testing.T) {
	calls := 0
	got, ok := Do(context.Background(), "accept",
		func(ctx context.Context) (string, error) {
			calls++
			return "ok", nil
		},
		func(v string, present bool) bool { return present && v == "ok" },
		fastPolicy,
	)
	if !ok || got != "ok" {
		t.Fatalf("expected accepted value, got %q ok=%v", got, ok)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
}

func TestDo_ErrorIsAbsentNotPropagated(t *testing.T) {
	calls := 0
	var sawAbsent bool
	got, ok := Do(context.Background(), "flaky",
		func(ctx context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 42, errors.New("connection reset by peer")
			}
			return 7, nil
		},
		func(v int, present bool) bool {
			if !present {
				sawAbsent = true
				if v != 0 {
					t.Errorf("absent value should be zero, got %d", v)
				}
				return false
			}
			return true
		},
		fastPolicy,
	)
	if !ok || got != 7 {
		t.Fatalf("expected 7 after recovery, got %d ok=%v", got, ok)
	}
	if !sawAbsent {
		t.Error("validator never saw an absent value")
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestDo_OnRetryBetweenAttempts(t *testing.T) {
	var retries []int
	_, _ = Do(context.Background(), "hook",
		func(ctx context.Context) (int, error) { return 0, nil },
		func(int, bool) bool { return false },
		Policy{MaxAttempts: 3, Delay: time.Millisecond},
		WithOnRetry(func(ctx context.Context, attempt int) { retries = append(retries, attempt) }),
	)
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("expected on-retry after attempts 1 and 2, got %v", retries)
	}
}

func TestDo_ZeroMaxAttemptsStillTriesOnce(t *testing.T) {
	calls := 0
	_, _ = Do(context.Background(), "zero",
		func(ctx context.Context) (int, error) { calls++; return 0, nil },
		func(int, bool) bool { return false },
		Policy{},
	)
	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
}

func TestDo_ContextCancelStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	start := time.Now()
	_, ok := Do(ctx, "cancel",
		func(ctx context.Context) (int, error) {
			calls++
			cancel()
			return 0, nil
		},
		func(int, bool) bool { return false },
		Policy{MaxAttempts: 5, Delay: time.Minute},
	)
	if ok {
		t.Fatal("expected absence after cancel")
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("cancel did not interrupt the delay")
	}
}

func infoLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func TestDo_DebugPolicyLogsEveryAttemptAtInfo(t *testing.T) {
	var buf bytes.Buffer
	_, _ = Do(context.Background(), "logged",
		func(ctx context.Context) (int, error) { return 1, nil },
		func(int, bool) bool { return false },
		Policy{MaxAttempts: 2, Delay: time.Millisecond, Debug: true},
		WithLogger(infoLogger(&buf)),
	)

	out := buf.String()
	if got := strings.Count(out, "Attempt finished"); got != 2 {
		t.Errorf("expected 2 per-attempt lines, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "attempt=1") || !strings.Contains(out, "attempt=2") {
		t.Errorf("attempt numbers missing:\n%s", out)
	}
	if got := strings.Count(out, "Retrying"); got != 1 {
		t.Errorf("expected 1 retry line, got %d", got)
	}
}

func TestDo_QuietPolicyLogsNoAttempts(t *testing.T) {
	var buf bytes.Buffer
	_, _ = Do(context.Background(), "quiet",
		func(ctx context.Context) (int, error) { return 0, errors.New("boom") },
		func(int, bool) bool { return false },
		Policy{MaxAttempts: 3, Delay: time.Millisecond},
		WithLogger(infoLogger(&buf)),
	)

	out := buf.String()
	for _, msg := range []string{"Attempt finished", "Attempt failed", "Retrying"} {
		if strings.Contains(out, msg) {
			t.Errorf("unexpected %q line without debug:\n%s", msg, out)
		}
	}
}
