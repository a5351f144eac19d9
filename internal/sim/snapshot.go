package sim

// HeldProp mirrors the held slot of a player for clients.
type HeldProp struct {
	Index     int         `json:"index"`
	Prototype PrototypeID `json:"prototype"`
	Instance  InstanceRef `json:"instance"`
}

// Player mirrors the state of a human-controlled actor.
type Player struct {
	ID       string    `json:"id"`
	Pose     Pose      `json:"pose"`
	Velocity Vec3      `json:"velocity"`
	Held     *HeldProp `json:"held,omitempty"`
}

// Snapshot captures the state exposed to non-simulation callers.
type Snapshot struct {
	Tick    uint64   `json:"t"`
	Players []Player `json:"players,omitempty"`
	Props   []Prop   `json:"props,omitempty"`
}

// DiagnosticsPlayer exposes connectivity data for the diagnostics endpoint.
type DiagnosticsPlayer struct {
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}
