package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/majewskibartosz/railway-support-lab/internal/config"
	"github.com/majewskibartosz/railway-support-lab/internal/events"
)

// NotificationService posts ticket events to a configured webhook. Each call
// is bounded by the configured timeout; a timeout is reported distinctly from
// other network failures.
type NotificationService struct {
	dispatcher events.Dispatcher
	client     *http.Client
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		client:     &http.Client{},
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to ticket events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketEvent)
}

func (n *NotificationService) handleTicketEvent(ctx context.Context, event events.Event) error {
	if n.cfg.WebhookURL == "" {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("encode webhook payload", zap.Error(err))
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			n.logger.Warn("webhook call timed out",
				zap.String("url", n.cfg.WebhookURL),
				zap.Int64("ticket_id", event.TicketID),
				zap.Duration("timeout", n.cfg.Timeout()))
			return err
		}
		n.logger.Warn("webhook call failed",
			zap.String("url", n.cfg.WebhookURL),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.logger.Warn("webhook rejected event",
			zap.String("url", n.cfg.WebhookURL),
			zap.Int("status", resp.StatusCode),
			zap.Int64("ticket_id", event.TicketID))
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
