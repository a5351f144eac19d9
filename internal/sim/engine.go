package sim

// EngineCore is the stepped state machine wrapped by the loop.
type EngineCore interface {
	Apply([]Command) error
	Step(dt float64)
	Snapshot() Snapshot
	Deps() Deps
}

// Engine defines the minimal surface area exposed to non-simulation callers.
type Engine interface {
	Enqueue(Command) (bool, string)
	Snapshot() Snapshot
	Pending() int
}
