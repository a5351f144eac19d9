package proto

import "propbox/server/internal/sim"

// Version tracks the wire-protocol revision carried on every payload.
const Version = 1

// Client message type identifiers.
const (
	TypeInput         = "input"
	TypeGrab          = "grab"
	TypeCycleNext     = "cycleNext"
	TypeCyclePrevious = "cyclePrevious"
	TypeHeartbeat     = "heartbeat"
)

// Server message type identifiers.
const (
	TypeState         = "state"
	TypeCommandAck    = "commandAck"
	TypeCommandReject = "commandReject"
)

// ClientMessage captures an inbound websocket message from the client.
type ClientMessage struct {
	Ver        int     `json:"ver,omitempty"`
	Type       string  `json:"type"`
	DX         float64 `json:"dx,omitempty"`
	DZ         float64 `json:"dz,omitempty"`
	SentAt     int64   `json:"sentAt,omitempty"`
	CommandSeq *uint64 `json:"seq,omitempty"`
}

// ClientCommand translates a client message into a simulation command.
// Heartbeats are session-level and intentionally not translated.
func ClientCommand(msg ClientMessage) (sim.Command, bool) {
	switch msg.Type {
	case TypeInput:
		return sim.Command{Type: sim.CommandMove, Move: &sim.MoveCommand{DX: msg.DX, DZ: msg.DZ}}, true
	case TypeGrab:
		return sim.Command{Type: sim.CommandGrab}, true
	case TypeCycleNext:
		return sim.Command{Type: sim.CommandCycleNext}, true
	case TypeCyclePrevious:
		return sim.Command{Type: sim.CommandCyclePrevious}, true
	default:
		return sim.Command{}, false
	}
}

// WorldInfo mirrors the tuning values a client needs to predict movement.
type WorldInfo struct {
	TickRate        int     `json:"tickRate"`
	MoveSpeed       float64 `json:"moveSpeed"`
	RotationSpeed   float64 `json:"rotationSpeed"`
	HandOffset      float64 `json:"handOffset"`
	HandHeight      float64 `json:"handHeight"`
	HeartbeatMillis int64   `json:"heartbeatMillis"`
}

// JoinResponse is the HTTP join payload issued before the websocket opens.
type JoinResponse struct {
	Ver     int               `json:"ver"`
	ID      string            `json:"id"`
	Players []sim.Player      `json:"players"`
	Props   []sim.Prop        `json:"props,omitempty"`
	Catalog []sim.PrototypeID `json:"catalog"`
	Config  WorldInfo         `json:"config"`
}

// StateMessage is the per-tick world snapshot broadcast to subscribers.
type StateMessage struct {
	Ver        int          `json:"ver"`
	Type       string       `json:"type"`
	Tick       uint64       `json:"t"`
	Players    []sim.Player `json:"players"`
	Props      []sim.Prop   `json:"props,omitempty"`
	ServerTime int64        `json:"serverTime"`
}

// CommandAck confirms a sequenced client command was staged.
type CommandAck struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	Tick uint64 `json:"tick,omitempty"`
}

// CommandReject reports why a sequenced client command was not staged.
type CommandReject struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Seq    uint64 `json:"seq"`
	Reason string `json:"reason"`
	Retry  bool   `json:"retry,omitempty"`
}

// Heartbeat is the server's reply to a client heartbeat.
type Heartbeat struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}
