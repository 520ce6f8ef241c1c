package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/majewskibartosz/railway-support-lab/internal/config"
	"github.com/majewskibartosz/railway-support-lab/internal/events"
)

func TestWebhookReceivesTicketEvent(t *testing.T) {
	received := make(chan events.Event, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var event events.Event
		require.NoError(t, json.Unmarshal(body, &event))
		received <- event
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc := NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{
		WebhookURL: server.URL,
		TimeoutMs:  1000,
	})
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        "evt-1",
		Type:      events.EventTicketCreated,
		TicketID:  7,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, events.EventTicketCreated, event.Type)
		assert.Equal(t, int64(7), event.TicketID)
	case <-time.After(time.Second):
		t.Fatal("webhook was never called")
	}
}

func TestWebhookBoundedByTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	svc := NewNotificationService(nil, zap.NewNop(), config.NotificationConfig{
		WebhookURL: server.URL,
		TimeoutMs:  50,
	})

	start := time.Now()
	err := svc.handleTicketEvent(context.Background(), events.Event{Type: events.EventTicketCreated})
	assert.Error(t, err)
	assert.True(t, isTimeout(err))
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestWebhookSkippedWhenUnconfigured(t *testing.T) {
	svc := NewNotificationService(nil, zap.NewNop(), config.NotificationConfig{TimeoutMs: 1000})
	assert.NoError(t, svc.handleTicketEvent(context.Background(), events.Event{}))
}
