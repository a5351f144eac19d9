package intake

import (
	"testing"
	"time"

	server "propbox/server"
	"propbox/server/internal/net/proto"
	"propbox/server/internal/sim"
)

// stubEngine records enqueued commands and can simulate rejection.
type stubEngine struct {
	staged []sim.Command
	reject string
}

func (e *stubEngine) Enqueue(cmd sim.Command) (bool, string) {
	if e.reject != "" {
		return false, e.reject
	}
	e.staged = append(e.staged, cmd)
	return true, ""
}

func (e *stubEngine) Snapshot() sim.Snapshot { return sim.Snapshot{} }

func (e *stubEngine) Pending() int { return len(e.staged) }

func testContext(engine *stubEngine) CommandContext {
	return CommandContext{
		Engine:    engine,
		HasPlayer: func(id string) bool { return id == "player-1" },
		Tick:      func() uint64 { return 33 },
		Now:       func() time.Time { return time.Unix(500, 0) },
	}
}

func TestStageClientCommandStampsAndStages(t *testing.T) {
	engine := &stubEngine{}
	cmd, ok, reason := StageClientCommand(testContext(engine), "player-1", proto.ClientMessage{
		Type: proto.TypeInput,
		DX:   0.5,
		DZ:   1,
	})
	if !ok {
		t.Fatalf("expected staging to succeed, got %q", reason)
	}
	if cmd.ActorID != "player-1" || cmd.OriginTick != 33 {
		t.Fatalf("expected actor and tick stamped, got %+v", cmd)
	}
	if !cmd.IssuedAt.Equal(time.Unix(500, 0)) {
		t.Fatalf("expected issue time from hub clock, got %v", cmd.IssuedAt)
	}
	if len(engine.staged) != 1 || engine.staged[0].Type != sim.CommandMove {
		t.Fatalf("expected one staged move, got %+v", engine.staged)
	}
}

func TestStageClientCommandRejectsUnknownType(t *testing.T) {
	engine := &stubEngine{}
	_, ok, reason := StageClientCommand(testContext(engine), "player-1", proto.ClientMessage{Type: "fly"})
	if ok || reason != server.CommandRejectInvalidAction {
		t.Fatalf("expected invalid_action, got ok=%v reason=%q", ok, reason)
	}
	if len(engine.staged) != 0 {
		t.Fatalf("expected nothing staged, got %+v", engine.staged)
	}
}

func TestStageClientCommandRejectsUnknownActor(t *testing.T) {
	engine := &stubEngine{}
	_, ok, reason := StageClientCommand(testContext(engine), "ghost", proto.ClientMessage{Type: proto.TypeGrab})
	if ok || reason != server.CommandRejectUnknownActor {
		t.Fatalf("expected unknown_actor, got ok=%v reason=%q", ok, reason)
	}
}

func TestStageClientCommandPropagatesEngineReject(t *testing.T) {
	engine := &stubEngine{reject: sim.CommandRejectQueueLimit}
	_, ok, reason := StageClientCommand(testContext(engine), "player-1", proto.ClientMessage{Type: proto.TypeGrab})
	if ok || reason != sim.CommandRejectQueueLimit {
		t.Fatalf("expected queue_limit passthrough, got ok=%v reason=%q", ok, reason)
	}
}
