package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghuser/inventory/pkg/httpx"
)

type stubChecker struct{ err error }

func (s *stubChecker) Ping(_ context.Context) error { return s.err }

// blockingChecker waits for its context to end.
type blockingChecker struct{}

func (blockingChecker) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func serveReady(t *testing.T, checks ...httpx.NamedCheck) (*httptest.ResponseRecorder, httpx.HealthReport) {
	t.Helper()
	rr := httptest.NewRecorder()
	httpx.ReadinessHandler(checks...).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", http.NoBody))
	var report httpx.HealthReport
	if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rr, report
}

func TestLivenessHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	httpx.LivenessHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/live", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != httpx.StatusHealthy {
		t.Errorf("status: got %q", resp["status"])
	}
}

func TestReadinessHandler_AllHealthy(t *testing.T) {
	rr, report := serveReady(t,
		httpx.NamedCheck{Name: "mongodb", Checker: &stubChecker{}},
		httpx.NamedCheck{Name: "redis", Checker: &stubChecker{}},
		httpx.NamedCheck{Name: "event_bus", Checker: &stubChecker{}},
	)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if report.Status != httpx.StatusHealthy {
		t.Errorf("status: got %q", report.Status)
	}
	if len(report.Checks) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(report.Checks))
	}
	for i, want := range []string{"mongodb", "redis", "event_bus"} {
		c := report.Checks[i]
		if c.Name != want || c.Status != httpx.StatusHealthy || c.Exception != "" || c.Duration == "" {
			t.Errorf("check %d: %+v", i, c)
		}
	}
}

func TestReadinessHandler_OneDown(t *testing.T) {
	tests := []struct {
		name string
		down int
	}{
		{"mongodb down", 0},
		{"redis down", 1},
		{"event bus down", 2},
	}
	names := []string{"mongodb", "redis", "event_bus"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checks := make([]httpx.NamedCheck, len(names))
			for i, n := range names {
				checks[i] = httpx.NamedCheck{Name: n, Checker: &stubChecker{}}
			}
			checks[tt.down].Checker = &stubChecker{err: errors.New("connection refused")}

			rr, report := serveReady(t, checks...)

			if rr.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected 503, got %d", rr.Code)
			}
			if report.Status != httpx.StatusUnhealthy {
				t.Errorf("status: got %q", report.Status)
			}
			for i, c := range report.Checks {
				wantStatus := httpx.StatusHealthy
				if i == tt.down {
					wantStatus = httpx.StatusUnhealthy
					if c.Exception != "connection refused" {
						t.Errorf("exception: got %q", c.Exception)
					}
				}
				if c.Status != wantStatus {
					t.Errorf("%s: got %q, want %q", c.Name, c.Status, wantStatus)
				}
			}
		})
	}
}

func TestReadinessHandler_CheckTimesOut(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the check timeout")
	}
	start := time.Now()
	rr, report := serveReady(t, httpx.NamedCheck{Name: "redis", Checker: blockingChecker{}})

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if report.Checks[0].Exception != context.DeadlineExceeded.Error() {
		t.Errorf("exception: got %q", report.Checks[0].Exception)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("check not bounded: took %s", elapsed)
	}
}

func TestReadinessHandler_NoChecks(t *testing.T) {
	rr, report := serveReady(t)
	if rr.Code != http.StatusOK || report.Status != httpx.StatusHealthy {
		t.Fatalf("unexpected: %d %+v", rr.Code, report)
	}
	if report.Checks == nil {
		t.Error("checks should encode as an empty array")
	}
}

func TestReadinessHandler_ContentType(t *testing.T) {
	rr, _ := serveReady(t, httpx.NamedCheck{Name: "mongodb", Checker: &stubChecker{}})

	ct := rr.Header().Get("Content-Type")
	if ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json; charset=utf-8")
	}
}
