package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/majewskibartosz/railway-support-lab/internal/api/http/handlers"
	"github.com/majewskibartosz/railway-support-lab/internal/auth"
	"github.com/majewskibartosz/railway-support-lab/internal/domain"
	"github.com/majewskibartosz/railway-support-lab/internal/health"
	"github.com/majewskibartosz/railway-support-lab/internal/observability"
	"github.com/majewskibartosz/railway-support-lab/internal/repository"
	"github.com/majewskibartosz/railway-support-lab/internal/service"
	"github.com/majewskibartosz/railway-support-lab/internal/status"
	"github.com/majewskibartosz/railway-support-lab/internal/storage"
)

type mockTicketRepo struct {
	mock.Mock
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *mockTicketRepo) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *mockTicketRepo) ApplyPatch(ctx context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *mockTicketRepo) GroupedStats(ctx context.Context) ([]repository.StatsRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.StatsRow), args.Error(1)
}

func (m *mockTicketRepo) Summary(ctx context.Context) (*repository.MetricsSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.MetricsSummary), args.Error(1)
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeChecker struct {
	result status.ProbeResult
}

func (f fakeChecker) Check(context.Context) status.ProbeResult { return f.result }

type testEnv struct {
	app        *fiber.App
	repo       *mockTicketRepo
	history    *status.History
	metrics    *observability.Metrics
	fatalCalls []string
}

const testAdminPassword = "hunter2"

func newTestEnv(t *testing.T, pinger health.StorePinger, checker health.ExternalChecker) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	repo := new(mockTicketRepo)
	ticketService := service.NewTicketService(repo, nil, logger)

	probeServer := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
	}))
	t.Cleanup(probeServer.Close)
	prober := status.NewProber(probeServer.URL, time.Second)
	history := status.NewHistory()
	aggregator := health.NewAggregator(pinger, checker, history, logger)

	adminHash, err := auth.HashPassword(testAdminPassword, 4)
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", 5)

	env := &testEnv{repo: repo, history: history, metrics: metrics}

	app := fiber.New()
	RegisterMiddlewares(app, MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: time.Second,
		Development:    false,
	})
	RegisterRoutes(app, RouteConfig{
		Tickets: handlers.NewTicketsHandler(ticketService),
		Health:  handlers.NewHealthHandler(aggregator),
		Metrics: handlers.NewMetricsHandler(ticketService, metrics, aggregator),
		Status:  handlers.NewStatusHandler(prober, history),
		Storage: handlers.NewStorageHandler(storage.NewObjectStore(nil, "blob"), logger),
		Debug: handlers.NewDebugHandler(logger, func(reason string) {
			env.fatalCalls = append(env.fatalCalls, reason)
		}),
		Auth:   handlers.NewAuthHandler(tokens, adminHash),
		Tokens: tokens,
	})

	env.app = app
	return env
}

func defaultTestEnv(t *testing.T) *testEnv {
	return newTestEnv(t, fakePinger{}, fakeChecker{result: status.ProbeResult{Outcome: status.OutcomeOK, Success: true}})
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*nethttp.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	payload := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), "body must be valid JSON: %s", raw)
	}
	return resp, payload
}

func errorCode(t *testing.T, payload map[string]any) string {
	t.Helper()
	errBody, ok := payload["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", payload)
	code, _ := errBody["code"].(string)
	return code
}

func TestCreateTicketDefaultsApplied(t *testing.T) {
	env := defaultTestEnv(t)
	now := time.Now().UTC()
	env.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Ticket")).
		Run(func(args mock.Arguments) {
			ticket := args.Get(1).(*domain.Ticket)
			ticket.ID = 1
			ticket.CreatedAt = now
			ticket.UpdatedAt = now
		}).
		Return(nil)

	resp, payload := doJSON(t, env.app, nethttp.MethodPost, "/api/tickets", map[string]any{"title": "X"})

	assert.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), payload["id"])
	assert.Equal(t, "open", payload["status"])
	assert.Equal(t, "low", payload["severity"])
}

func TestCreateTicketBlankTitleRejected(t *testing.T) {
	env := defaultTestEnv(t)

	resp, payload := doJSON(t, env.app, nethttp.MethodPost, "/api/tickets", map[string]any{"title": " "})

	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, payload))
	env.repo.AssertNotCalled(t, "Create")
}

func TestGetTicketMalformedID(t *testing.T) {
	env := defaultTestEnv(t)

	resp, payload := doJSON(t, env.app, nethttp.MethodGet, "/api/tickets/abc", nil)

	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, payload))
}

func TestGetTicketNotFound(t *testing.T) {
	env := defaultTestEnv(t)
	env.repo.On("GetByID", mock.Anything, int64(999999)).Return(nil, pgx.ErrNoRows)

	resp, payload := doJSON(t, env.app, nethttp.MethodGet, "/api/tickets/999999", nil)

	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, payload))
}

func TestStoreCallsCarryRequestDeadline(t *testing.T) {
	env := defaultTestEnv(t)
	env.repo.On("GetByID", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), int64(1)).Return(&domain.Ticket{
		ID:       1,
		Title:    "X",
		Status:   domain.StatusOpen,
		Severity: domain.SeverityLow,
	}, nil)

	resp, _ := doJSON(t, env.app, nethttp.MethodGet, "/api/tickets/1", nil)

	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	env.repo.AssertExpectations(t)
}

func TestErrorRequestsCountedWithRenderedStatus(t *testing.T) {
	env := defaultTestEnv(t)

	resp, _ := doJSON(t, env.app, nethttp.MethodPost, "/api/tickets", map[string]any{"title": " "})
	require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	requests, errs := env.metrics.Snapshot()
	assert.Equal(t, int64(1), requests["/api/tickets|POST|400"])
	assert.Equal(t, int64(1), errs["/api/tickets|POST|INVALID_INPUT"])
}

func TestUpdateTicketEmptyPayloadRejected(t *testing.T) {
	env := defaultTestEnv(t)

	resp, payload := doJSON(t, env.app, nethttp.MethodPatch, "/api/tickets/1", map[string]any{})

	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, payload))
	env.repo.AssertNotCalled(t, "ApplyPatch")
}

func TestUpdateTicketResolve(t *testing.T) {
	env := defaultTestEnv(t)
	created := time.Now().UTC().Add(-time.Hour)
	env.repo.On("ApplyPatch", mock.Anything, int64(1), mock.MatchedBy(func(patch domain.TicketPatch) bool {
		return patch.Status != nil && *patch.Status == domain.StatusResolved
	})).Return(&domain.Ticket{
		ID:        1,
		Title:     "X",
		Status:    domain.StatusResolved,
		Severity:  domain.SeverityLow,
		CreatedAt: created,
		UpdatedAt: time.Now().UTC(),
	}, nil)

	resp, payload := doJSON(t, env.app, nethttp.MethodPatch, "/api/tickets/1", map[string]any{"status": "resolved"})

	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "resolved", payload["status"])

	createdAt, err := time.Parse(time.RFC3339Nano, payload["created_at"].(string))
	require.NoError(t, err)
	updatedAt, err := time.Parse(time.RFC3339Nano, payload["updated_at"].(string))
	require.NoError(t, err)
	assert.True(t, updatedAt.After(createdAt))
}

func TestListTicketsCombinedFilters(t *testing.T) {
	env := defaultTestEnv(t)
	env.repo.On("List", mock.Anything, mock.MatchedBy(func(filter repository.TicketFilter) bool {
		return filter.Status != nil && *filter.Status == domain.StatusOpen &&
			filter.Severity != nil && *filter.Severity == domain.SeverityHigh &&
			filter.Limit == 50 && filter.Offset == 0
	})).Return([]domain.Ticket{
		{ID: 2, Title: "B", Status: domain.StatusOpen, Severity: domain.SeverityHigh},
		{ID: 1, Title: "A", Status: domain.StatusOpen, Severity: domain.SeverityHigh},
	}, nil)

	resp, payload := doJSON(t, env.app, nethttp.MethodGet, "/api/tickets?status=open&severity=high", nil)

	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), payload["count"])
	env.repo.AssertExpectations(t)
}

func TestListTicketsInvalidCustomerID(t *testing.T) {
	env := defaultTestEnv(t)

	resp, payload := doJSON(t, env.app, nethttp.MethodGet, "/api/tickets?customer_id=abc", nil)

	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, payload))
}

func TestStatsEndpoint(t *testing.T) {
	env := defaultTestEnv(t)
	env.repo.On("GroupedStats", mock.Anything).Return([]repository.StatsRow{
		{Status: domain.StatusOpen, Severity: domain.SeverityLow, Count: 3},
	}, nil)

	resp, payload := doJSON(t, env.app, nethttp.MethodGet, "/api/tickets/stats", nil)

	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	stats, ok := payload["statistics"].([]any)
	require.True(t, ok)
	assert.Len(t, stats, 1)
	env.repo.AssertNotCalled(t, "GetByID")
}

func TestLivenessAlwaysHealthy(t *testing.T) {
	env := newTestEnv(t, fakePinger{err: errors.New("store down")}, fakeChecker{})

	resp, payload := doJSON(t, env.app, nethttp.MethodGet, "/health", nil)

	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", payload["status"])
}

func TestFullHealthStoreDecides(t *testing.T) {
	env := newTestEnv(t, fakePinger{}, fakeChecker{result: status.ProbeResult{Outcome: status.OutcomeTimeout}})
	resp, payload := doJSON(t, env.app, nethttp.MethodGet, "/health/full", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", payload["status"])

	env = newTestEnv(t, fakePinger{err: errors.New("down")}, fakeChecker{result: status.ProbeResult{Outcome: status.OutcomeOK, Success: true}})
	resp, payload = doJSON(t, env.app, nethttp.MethodGet, "/health/full", nil)
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", payload["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := defaultTestEnv(t)
	env.repo.On("Summary", mock.Anything).Return(&repository.MetricsSummary{Total: 4, Open: 2, Resolved: 1}, nil)

	resp, payload := doJSON(t, env.app, nethttp.MethodGet, "/metrics", nil)

	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	tickets, ok := payload["tickets"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(4), tickets["total"])
}

func TestExternalStatusRecordsHistory(t *testing.T) {
	env := defaultTestEnv(t)

	resp, _ := doJSON(t, env.app, nethttp.MethodGet, "/api/external/status", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, payload := doJSON(t, env.app, nethttp.MethodGet, "/api/external/history", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), payload["count"])
}

func TestStorageUnavailableWhenUnconfigured(t *testing.T) {
	env := defaultTestEnv(t)

	for _, probe := range []struct {
		method string
		path   string
	}{
		{nethttp.MethodGet, "/api/storage/foo"},
		{nethttp.MethodDelete, "/api/storage/foo"},
		{nethttp.MethodGet, "/api/storage"},
	} {
		resp, payload := doJSON(t, env.app, probe.method, probe.path, nil)
		assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode, "%s %s", probe.method, probe.path)
		assert.Equal(t, "UNAVAILABLE", errorCode(t, payload))
	}
}

func TestUnknownRouteStructured404(t *testing.T) {
	env := defaultTestEnv(t)

	resp, payload := doJSON(t, env.app, nethttp.MethodGet, "/nope", nil)

	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ROUTE_NOT_FOUND", errorCode(t, payload))
	details := payload["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "GET", details["method"])
	assert.Equal(t, "/nope", details["path"])
}

func TestDebugRequiresToken(t *testing.T) {
	env := defaultTestEnv(t)

	resp, payload := doJSON(t, env.app, nethttp.MethodGet, "/debug/error", nil)

	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, payload))
}

func TestLoginAndDebugErrorRecovered(t *testing.T) {
	env := defaultTestEnv(t)

	resp, payload := doJSON(t, env.app, nethttp.MethodPost, "/auth/login", map[string]any{"password": "wrong"})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, payload))

	resp, payload = doJSON(t, env.app, nethttp.MethodPost, "/auth/login", map[string]any{"password": testAdminPassword})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	token, ok := payload["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	// a panicking handler still yields a well-formed 500 envelope
	req := httptest.NewRequest(nethttp.MethodGet, "/debug/error", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	errResp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusInternalServerError, errResp.StatusCode)

	raw, err := io.ReadAll(errResp.Body)
	require.NoError(t, err)
	envelope := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, envelope))
}

func TestDebugCrashRequestsTermination(t *testing.T) {
	env := defaultTestEnv(t)

	resp, payload := doJSON(t, env.app, nethttp.MethodPost, "/auth/login", map[string]any{"password": testAdminPassword})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	token := payload["token"].(string)

	req := httptest.NewRequest(nethttp.MethodGet, "/debug/crash", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	crashResp, err := env.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, nethttp.StatusAccepted, crashResp.StatusCode)
	assert.Equal(t, []string{"debug crash requested"}, env.fatalCalls)
}
