package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/majewskibartosz/railway-support-lab/internal/status"
)

// StorePinger verifies store reachability with a trivial round trip.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// ExternalChecker runs one bounded-timeout probe against the external gateway.
type ExternalChecker interface {
	Check(ctx context.Context) status.ProbeResult
}

// CheckResult is one dependency sub-check.
type CheckResult struct {
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// FullReport aggregates the dependency sub-checks. The aggregate status is
// healthy only when the store sub-check passed; the external gateway is
// advisory and never degrades the aggregate on its own.
type FullReport struct {
	Status   string      `json:"status"`
	Store    CheckResult `json:"store"`
	External CheckResult `json:"external"`
}

// LivenessReport answers "is the process alive" without touching any
// dependency.
type LivenessReport struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Aggregator composes liveness and dependency checks.
type Aggregator struct {
	store     StorePinger
	external  ExternalChecker
	history   *status.History
	logger    *zap.Logger
	startedAt time.Time
}

// NewAggregator constructs the aggregator.
func NewAggregator(store StorePinger, external ExternalChecker, history *status.History, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:     store,
		external:  external,
		history:   history,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Liveness reports process liveness and uptime. No store or network calls.
func (a *Aggregator) Liveness() LivenessReport {
	return LivenessReport{
		Status:        "healthy",
		UptimeSeconds: time.Since(a.startedAt).Seconds(),
	}
}

// Uptime returns the time since the aggregator was constructed.
func (a *Aggregator) Uptime() time.Duration {
	return time.Since(a.startedAt)
}

// Full runs the store and external sub-checks and aggregates them.
func (a *Aggregator) Full(ctx context.Context) FullReport {
	report := FullReport{Status: "healthy"}

	if err := a.store.Ping(ctx); err != nil {
		a.logger.Warn("store health check failed", zap.Error(err))
		report.Store = CheckResult{Healthy: false, Detail: "store unreachable"}
		report.Status = "degraded"
	} else {
		report.Store = CheckResult{Healthy: true}
	}

	result := a.external.Check(ctx)
	if a.history != nil {
		a.history.Append(result)
	}
	if result.Success {
		report.External = CheckResult{Healthy: true}
	} else {
		report.External = CheckResult{Healthy: false, Detail: string(result.Outcome)}
	}

	return report
}
