package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/majewskibartosz/railway-support-lab/internal/persistence"
)

// State names a lifecycle phase.
type State string

const (
	StateStarting         State = "starting"
	StateSchemaValidating State = "schema_validating"
	StateServing          State = "serving"
	StateDraining         State = "draining"
	StateTerminated       State = "terminated"
	StateFailedStartup    State = "failed_startup"
)

// DrainTimeout bounds the shutdown grace period. If in-flight requests have
// not completed within it, termination is forced and the exit status is 1.
const DrainTimeout = 10 * time.Second

const startupProbeTimeout = 5 * time.Second

// transitions holds the allowed state edges. FailedStartup is reachable only
// before serving begins; a fatal fault while serving terminates directly,
// bypassing the drain window.
var transitions = map[State][]State{
	StateStarting:         {StateSchemaValidating, StateFailedStartup},
	StateSchemaValidating: {StateServing, StateFailedStartup},
	StateServing:          {StateDraining, StateTerminated},
	StateDraining:         {StateTerminated},
}

// Controller supervises the process from cold start through drain. It does
// not participate in per-request flow.
type Controller struct {
	mu    sync.Mutex
	state State

	app          *fiber.App
	store        *persistence.Postgres
	addr         string
	logger       *zap.Logger
	drainTimeout time.Duration
	fatalCh      chan string
}

// NewController constructs a controller in the Starting state.
func NewController(app *fiber.App, store *persistence.Postgres, addr string, logger *zap.Logger) *Controller {
	return &Controller{
		state:        StateStarting,
		app:          app,
		store:        store,
		addr:         addr,
		logger:       logger,
		drainTimeout: DrainTimeout,
		fatalCh:      make(chan string, 1),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Fatal requests immediate termination, bypassing the drain window. Safe to
// call from request handlers; only the first call is acted on.
func (c *Controller) Fatal(reason string) {
	select {
	case c.fatalCh <- reason:
	default:
	}
}

func (c *Controller) transitionTo(to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, allowed := range transitions[c.state] {
		if allowed == to {
			c.logger.Info("lifecycle transition",
				zap.String("from", string(c.state)),
				zap.String("to", string(to)))
			c.state = to
			return nil
		}
	}
	return fmt.Errorf("invalid lifecycle transition %s -> %s", c.state, to)
}

// Run drives the process to completion and returns the exit code.
func (c *Controller) Run(ctx context.Context) int {
	probeCtx, cancel := context.WithTimeout(ctx, startupProbeTimeout)
	err := c.store.Ping(probeCtx)
	cancel()
	if err != nil {
		return c.failStartup("store connectivity probe failed", err)
	}

	if err := c.transitionTo(StateSchemaValidating); err != nil {
		c.logger.Error("lifecycle error", zap.Error(err))
		return 1
	}
	if err := persistence.InitSchema(ctx, c.store.PoolHandle(), c.logger); err != nil {
		return c.failStartup("schema validation failed", err)
	}

	if err := c.transitionTo(StateServing); err != nil {
		c.logger.Error("lifecycle error", zap.Error(err))
		return 1
	}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- c.app.Listen(c.addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-listenErr:
		c.logger.Error("listener failed", zap.Error(err))
		_ = c.transitionTo(StateTerminated)
		return 1
	case reason := <-c.fatalCh:
		c.logger.Error("fatal fault while serving", zap.String("reason", reason))
		_ = c.transitionTo(StateTerminated)
		return 1
	case sig := <-sigCh:
		c.logger.Info("termination signal received", zap.String("signal", sig.String()))
		return c.drain()
	}
}

// drain stops accepting new connections, then races in-flight completion plus
// pool close against the drain timeout.
func (c *Controller) drain() int {
	if err := c.transitionTo(StateDraining); err != nil {
		c.logger.Error("lifecycle error", zap.Error(err))
		return 1
	}

	done := make(chan error, 1)
	go func() {
		err := c.app.Shutdown()
		c.store.Close()
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			c.logger.Warn("shutdown finished with error", zap.Error(err))
		}
		_ = c.transitionTo(StateTerminated)
		c.logger.Info("drained cleanly")
		return 0
	case <-time.After(c.drainTimeout):
		_ = c.transitionTo(StateTerminated)
		c.logger.Warn("drain window elapsed; forcing termination",
			zap.Duration("drain_timeout", c.drainTimeout))
		return 1
	}
}

func (c *Controller) failStartup(msg string, err error) int {
	_ = c.transitionTo(StateFailedStartup)
	c.logger.Error(msg, zap.Error(err))
	return 1
}
