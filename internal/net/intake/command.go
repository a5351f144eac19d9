package intake

import (
	"time"

	server "propbox/server"
	"propbox/server/internal/net/proto"
	"propbox/server/internal/sim"
)

// CommandContext carries the hub accessors needed to stage a command.
type CommandContext struct {
	Engine    sim.Engine
	HasPlayer func(string) bool
	Tick      func() uint64
	Now       func() time.Time
}

// StageClientCommand validates a client message, stamps it with the actor
// and tick, and stages it on the engine. It returns the staged command or
// a reject reason.
func StageClientCommand(ctx CommandContext, playerID string, msg proto.ClientMessage) (sim.Command, bool, string) {
	var zero sim.Command

	command, ok := proto.ClientCommand(msg)
	if !ok {
		return zero, false, server.CommandRejectInvalidAction
	}

	if command.Type == sim.CommandMove && command.Move == nil {
		return zero, false, server.CommandRejectInvalidAction
	}

	if ctx.HasPlayer != nil && !ctx.HasPlayer(playerID) {
		return zero, false, server.CommandRejectUnknownActor
	}

	command.ActorID = playerID
	if ctx.Tick != nil {
		command.OriginTick = ctx.Tick()
	}
	if ctx.Now != nil {
		command.IssuedAt = ctx.Now()
	} else {
		command.IssuedAt = time.Now()
	}

	if ctx.Engine == nil {
		return zero, false, sim.CommandRejectQueueFull
	}
	if ok, reason := ctx.Engine.Enqueue(command); !ok {
		return zero, false, reason
	}

	return command, true, ""
}
