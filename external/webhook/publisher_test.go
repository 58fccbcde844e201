package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/greenloop/recycle-league/internal/platform/logging"
	"github.com/greenloop/recycle-league/internal/platform/resilience"
	"github.com/greenloop/recycle-league/internal/usecase"
)

func newTestPublisher(endpoint string, retries int) *Publisher {
	return NewPublisher(Config{
		Endpoint: endpoint,
		Token:    "hook-token",
		Timeout:  2 * time.Second,
		Retries:  retries,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			OpenTimeout:      15 * time.Second,
			HalfOpenMaxReq:   2,
		},
	}, logging.NewNop())
}

func TestPublisher_PublishSendsEnvelope(t *testing.T) {
	t.Parallel()

	type captured struct {
		eventID     string
		auth        string
		contentType string
		body        []byte
	}
	got := make(chan captured, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- captured{
			eventID:     r.Header.Get("X-Event-Id"),
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestPublisher(srv.URL, 0)
	err := p.Publish(context.Background(), "session.closed", "session-1", map[string]string{"league_id": "league-silver"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	req := <-got
	if req.eventID != "session-1" {
		t.Fatalf("unexpected X-Event-Id: %q", req.eventID)
	}
	if req.auth != "Bearer hook-token" {
		t.Fatalf("unexpected Authorization: %q", req.auth)
	}
	if req.contentType != "application/json" {
		t.Fatalf("unexpected Content-Type: %q", req.contentType)
	}

	var envelope map[string]any
	if err := sonic.Unmarshal(req.body, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope["event_type"] != "session.closed" || envelope["event_id"] != "session-1" {
		t.Fatalf("unexpected envelope: %v", envelope)
	}
	if _, ok := envelope["payload"]; !ok {
		t.Fatalf("envelope missing payload")
	}
}

func TestPublisher_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestPublisher(srv.URL, 2)
	if err := p.Publish(context.Background(), "session.closed", "session-1", nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestPublisher_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := newTestPublisher(srv.URL, 3)
	if err := p.Publish(context.Background(), "session.closed", "session-1", nil); err == nil {
		t.Fatalf("expected error for 400 response")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("client errors must not be retried, got %d attempts", got)
	}
}

func TestPublisher_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewPublisher(Config{
		Endpoint: srv.URL,
		Timeout:  time.Second,
		Retries:  0,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := p.Publish(ctx, "session.closed", "session-1", nil); err == nil {
			t.Fatalf("expected delivery failure")
		}
	}

	before := calls.Load()
	if err := p.Publish(ctx, "session.closed", "session-1", nil); err == nil {
		t.Fatalf("expected circuit rejection")
	}
	if calls.Load() != before {
		t.Fatalf("open circuit still reached the endpoint")
	}
}

func TestPublisher_RejectsInvalidEndpoint(t *testing.T) {
	t.Parallel()

	p := newTestPublisher("ftp://example.com/hook", 0)
	if err := p.Publish(context.Background(), "session.closed", "session-1", nil); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestSessionEventSink_PublishesCloseEvent(t *testing.T) {
	t.Parallel()

	got := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewSessionEventSink(newTestPublisher(srv.URL, 0))
	event := usecase.SessionClosedEvent{
		SessionID: "session-1",
		LeagueID:  "league-silver",
		Tier:      2,
		ClosedAt:  time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC),
	}
	if err := sink.PublishSessionClosed(context.Background(), event); err != nil {
		t.Fatalf("publish session closed: %v", err)
	}

	var envelope struct {
		EventType string                     `json:"event_type"`
		EventID   string                     `json:"event_id"`
		Payload   usecase.SessionClosedEvent `json:"payload"`
	}
	if err := sonic.Unmarshal(<-got, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.EventType != "session.closed" || envelope.EventID != "session-1" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
	if envelope.Payload.LeagueID != "league-silver" || envelope.Payload.Tier != 2 {
		t.Fatalf("unexpected payload: %+v", envelope.Payload)
	}
}

func TestPreviewBody_Truncates(t *testing.T) {
	t.Parallel()

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}

	got := previewBody(long, 10)
	if got != "aaaaaaaaaa...(truncated)" {
		t.Fatalf("unexpected preview: %q", got)
	}
	if previewBody([]byte("short"), 10) != "short" {
		t.Fatalf("short body must pass through")
	}
}
