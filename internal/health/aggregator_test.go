package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/majewskibartosz/railway-support-lab/internal/status"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeChecker struct {
	result status.ProbeResult
}

func (f fakeChecker) Check(context.Context) status.ProbeResult { return f.result }

func TestLivenessNeverTouchesDependencies(t *testing.T) {
	// a nil store and checker would panic if liveness called them
	aggregator := NewAggregator(nil, nil, nil, zap.NewNop())

	report := aggregator.Liveness()
	assert.Equal(t, "healthy", report.Status)
	assert.GreaterOrEqual(t, report.UptimeSeconds, 0.0)
}

func TestFullHealthyWhenStoreUpExternalDown(t *testing.T) {
	aggregator := NewAggregator(
		fakePinger{},
		fakeChecker{result: status.ProbeResult{Outcome: status.OutcomeTimeout}},
		status.NewHistory(),
		zap.NewNop(),
	)

	report := aggregator.Full(context.Background())
	assert.Equal(t, "healthy", report.Status)
	assert.True(t, report.Store.Healthy)
	assert.False(t, report.External.Healthy)
	assert.Equal(t, "timeout", report.External.Detail)
}

func TestFullDegradedWhenStoreDown(t *testing.T) {
	aggregator := NewAggregator(
		fakePinger{err: errors.New("connection refused")},
		fakeChecker{result: status.ProbeResult{Outcome: status.OutcomeOK, Success: true}},
		status.NewHistory(),
		zap.NewNop(),
	)

	report := aggregator.Full(context.Background())
	assert.Equal(t, "degraded", report.Status)
	assert.False(t, report.Store.Healthy)
	assert.True(t, report.External.Healthy)
}

func TestFullRecordsProbeInHistory(t *testing.T) {
	history := status.NewHistory()
	aggregator := NewAggregator(
		fakePinger{},
		fakeChecker{result: status.ProbeResult{Outcome: status.OutcomeOK, Success: true}},
		history,
		zap.NewNop(),
	)

	aggregator.Full(context.Background())
	aggregator.Full(context.Background())
	assert.Equal(t, 2, history.Len())
}
