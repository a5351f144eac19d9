package server

import (
	"encoding/json"
	"testing"
	"time"

	"propbox/server/internal/net/proto"
	"propbox/server/internal/sim"
	"propbox/server/logging"
)

func testHubConfig() HubConfig {
	return HubConfig{
		TickRate:          15,
		CatchupMaxTicks:   4,
		CommandCapacity:   64,
		PerActorLimit:     8,
		HeartbeatInterval: 2 * time.Second,
		World: sim.WorldConfig{
			Locomotion:      sim.LocomotionConfig{MoveSpeed: 5, RotationSpeed: 540},
			HandOffset:      1,
			HandHeight:      1.2,
			DisconnectAfter: time.Minute,
		},
		Catalog: sim.DefaultCatalog(),
	}
}

func TestNewHubRejectsEmptyCatalog(t *testing.T) {
	catalog, err := sim.NewCatalog(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := testHubConfig()
	cfg.Catalog = catalog
	if _, err := NewHub(cfg); err != sim.ErrEmptyCatalog {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestHubJoinPayload(t *testing.T) {
	hub, err := NewHub(testHubConfig())
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}

	join := hub.Join()
	if join.Ver != ProtocolVersion {
		t.Fatalf("expected protocol version %d, got %d", ProtocolVersion, join.Ver)
	}
	if join.ID != "player-1" {
		t.Fatalf("expected first player id, got %q", join.ID)
	}
	if len(join.Players) != 1 || join.Players[0].ID != join.ID {
		t.Fatalf("expected join snapshot to include the new player, got %+v", join.Players)
	}
	if len(join.Catalog) != 3 {
		t.Fatalf("expected full catalog, got %v", join.Catalog)
	}
	if join.Config.TickRate != 15 || join.Config.MoveSpeed != 5 || join.Config.HeartbeatMillis != 2000 {
		t.Fatalf("unexpected world info: %+v", join.Config)
	}

	second := hub.Join()
	if second.ID != "player-2" {
		t.Fatalf("expected sequential ids, got %q", second.ID)
	}
	if len(second.Players) != 2 {
		t.Fatalf("expected both players in the second join snapshot, got %+v", second.Players)
	}
}

func TestHubStagesAndAppliesCommands(t *testing.T) {
	hub, err := NewHub(testHubConfig())
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}
	join := hub.Join()

	ok, reason := hub.Engine().Enqueue(sim.Command{ActorID: join.ID, Type: sim.CommandGrab})
	if !ok {
		t.Fatalf("enqueue rejected: %s", reason)
	}
	if _, pending := hub.DiagnosticsSnapshot(); pending != 1 {
		t.Fatalf("expected one pending command, got %d", pending)
	}

	result := hub.engine.Advance(sim.LoopTickContext{Tick: 1, Now: hub.Now(), Delta: 1.0 / 15})
	if len(result.Commands) != 1 {
		t.Fatalf("expected one applied command, got %d", len(result.Commands))
	}
	if len(result.Snapshot.Props) != 1 {
		t.Fatalf("expected a spawned prop, got %+v", result.Snapshot.Props)
	}
	if result.Snapshot.Players[0].Held == nil {
		t.Fatalf("expected player holding a prop")
	}
}

func TestHubMarshalStateFrame(t *testing.T) {
	cfg := testHubConfig()
	cfg.Clock = logging.ClockFunc(func() time.Time { return time.UnixMilli(123456) })
	hub, err := NewHub(cfg)
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}
	hub.Join()

	data, err := hub.MarshalState(hub.world.Snapshot())
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	var msg proto.StateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if msg.Ver != ProtocolVersion || msg.Type != proto.TypeState {
		t.Fatalf("unexpected frame header: %+v", msg)
	}
	if msg.ServerTime != 123456 {
		t.Fatalf("expected server time from hub clock, got %d", msg.ServerTime)
	}
	if len(msg.Players) != 1 {
		t.Fatalf("expected one player in the frame, got %+v", msg.Players)
	}
}

func TestHubDisconnectRemovesPlayer(t *testing.T) {
	hub, err := NewHub(testHubConfig())
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}
	join := hub.Join()

	if !hub.Disconnect(join.ID) {
		t.Fatalf("expected disconnect to succeed")
	}
	if hub.HasPlayer(join.ID) {
		t.Fatalf("expected player removed")
	}
	if hub.Disconnect(join.ID) {
		t.Fatalf("expected second disconnect to report a miss")
	}
}
