package logging_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"propbox/server/logging"
	"propbox/server/logging/sinks"
)

func newMemoryRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.Memory) {
	t.Helper()
	memory := sinks.NewMemory()
	fallback := log.New(io.Discard, "", 0)
	router, err := logging.NewRouter(cfg, nil, fallback, map[string]logging.Sink{"memory": memory})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = router.Close(ctx)
	})
	return router, memory
}

func waitForEvents(t *testing.T, memory *sinks.Memory, want int) []logging.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		events := memory.Events()
		if len(events) >= want {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, have %d", want, len(memory.Events()))
	return nil
}

func TestRouterDeliversToEnabledSink(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = []string{"memory"}
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{
		Type:     "gameplay.prop_spawned",
		Tick:     7,
		Severity: logging.SeverityInfo,
		Actor:    logging.EntityRef{ID: "player-1", Kind: logging.EntityKindPlayer},
		Category: logging.CategoryGameplay,
	})

	events := waitForEvents(t, memory, 1)
	event := events[0]
	if event.Type != "gameplay.prop_spawned" || event.Tick != 7 {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Time.IsZero() {
		t.Fatalf("expected router to stamp event time")
	}
	if stats := router.Stats(); stats.EventsTotal != 1 || stats.DroppedTotal != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = []string{"memory"}
	cfg.MinimumSeverity = logging.SeverityWarn
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "debug.noise", Severity: logging.SeverityDebug})
	router.Publish(context.Background(), logging.Event{Type: "system.alert", Severity: logging.SeverityError})

	events := waitForEvents(t, memory, 1)
	if len(events) != 1 || events[0].Type != "system.alert" {
		t.Fatalf("expected only the error event, got %+v", events)
	}
}

func TestRouterStampsConfiguredFields(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = []string{"memory"}
	cfg.Fields = map[string]any{"server": "propbox-1"}
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "lifecycle.player_joined", Severity: logging.SeverityInfo})

	events := waitForEvents(t, memory, 1)
	if got := events[0].Extra["server"]; got != "propbox-1" {
		t.Fatalf("expected server field stamped, got %v", events[0].Extra)
	}
}

func TestRouterDropsEmptyTypedEvents(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = []string{"memory"}
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Severity: logging.SeverityInfo})
	router.Publish(context.Background(), logging.Event{Type: "system.real", Severity: logging.SeverityInfo})

	events := waitForEvents(t, memory, 1)
	if len(events) != 1 || events[0].Type != "system.real" {
		t.Fatalf("expected the untyped event ignored, got %+v", events)
	}
}

func TestRouterCloseFlushesQueuedEvents(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = []string{"memory"}
	memory := sinks.NewMemory()
	router, err := logging.NewRouter(cfg, nil, log.New(io.Discard, "", 0), map[string]logging.Sink{"memory": memory})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	for i := 0; i < 10; i++ {
		router.Publish(context.Background(), logging.Event{Type: "system.tick", Severity: logging.SeverityInfo})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := len(memory.Events()); got != 10 {
		t.Fatalf("expected 10 flushed events, got %d", got)
	}
}

func TestWithFieldsDoesNotOverrideExisting(t *testing.T) {
	var captured logging.Event
	publisher := logging.WithFields(logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		captured = event
	}), map[string]any{"region": "default", "shard": 3})

	publisher.Publish(context.Background(), logging.Event{
		Type:  "system.test",
		Extra: map[string]any{"region": "eu"},
	})

	if captured.Extra["region"] != "eu" {
		t.Fatalf("expected existing field preserved, got %v", captured.Extra)
	}
	if captured.Extra["shard"] != 3 {
		t.Fatalf("expected missing field stamped, got %v", captured.Extra)
	}
}

func TestParseSeverity(t *testing.T) {
	if sev, ok := logging.ParseSeverity("warn"); !ok || sev != logging.SeverityWarn {
		t.Fatalf("unexpected parse result: %v ok=%v", sev, ok)
	}
	if _, ok := logging.ParseSeverity("loud"); ok {
		t.Fatalf("expected unknown severity rejected")
	}
}
