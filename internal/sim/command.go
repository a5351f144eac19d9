package sim

import "time"

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandMove          CommandType = "Move"
	CommandGrab          CommandType = "Grab"
	CommandCycleNext     CommandType = "CycleNext"
	CommandCyclePrevious CommandType = "CyclePrevious"
)

// MoveCommand carries the desired movement vector on the horizontal plane.
type MoveCommand struct {
	DX float64 `json:"dx"`
	DZ float64 `json:"dz"`
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64       `json:"originTick"`
	ActorID    string       `json:"actorId"`
	Type       CommandType  `json:"type"`
	IssuedAt   time.Time    `json:"issuedAt"`
	Move       *MoveCommand `json:"move,omitempty"`
}
