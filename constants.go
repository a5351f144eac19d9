package server

import "time"

// ProtocolVersion tracks the wire-protocol revision expected by clients.
const ProtocolVersion = 1

const writeWait = 10 * time.Second

const (
	// CommandRejectUnknownActor indicates the player is no longer registered.
	CommandRejectUnknownActor = "unknown_actor"
	// CommandRejectInvalidAction indicates a malformed or unsupported message.
	CommandRejectInvalidAction = "invalid_action"
)
