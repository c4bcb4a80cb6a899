package httpx

import (
	"context"
	"net/http"
	"time"
)

// Health report statuses.
const (
	StatusHealthy   = "Healthy"
	StatusUnhealthy = "Unhealthy"
)

const readinessTimeout = 3 * time.Second

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (database.Database, cache.RedisClient, events.Publisher all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// NamedCheck pairs a HealthChecker with the name it is reported under.
type NamedCheck struct {
	Name    string
	Checker HealthChecker
}

// CheckResult is one entry of a readiness report.
type CheckResult struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Exception string `json:"exception"`
	Duration  string `json:"duration"`
} // @name CheckResult

// HealthReport is the body written by the readiness endpoint.
type HealthReport struct {
	Status string        `json:"status"`
	Checks []CheckResult `json:"checks"`
} // @name HealthReport

// LivenessHandler reports that the process is up. It never touches dependencies.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": StatusHealthy})
	}
}

// ReadinessHandler runs every check in order, each bounded by a 3s timeout,
// and answers 200 when all pass or 503 with the same report otherwise.
func ReadinessHandler(checks ...NamedCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := HealthReport{Status: StatusHealthy, Checks: make([]CheckResult, 0, len(checks))}

		for _, c := range checks {
			res := runCheck(r.Context(), c)
			if res.Status != StatusHealthy {
				report.Status = StatusUnhealthy
			}
			report.Checks = append(report.Checks, res)
		}

		status := http.StatusOK
		if report.Status != StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, report)
	}
}

func runCheck(ctx context.Context, c NamedCheck) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	start := time.Now()
	err := c.Checker.Ping(ctx)
	res := CheckResult{
		Name:     c.Name,
		Status:   StatusHealthy,
		Duration: time.Since(start).String(),
	}
	if err != nil {
		res.Status = StatusUnhealthy
		res.Exception = err.Error()
	}
	return res
}
