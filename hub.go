package server

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"propbox/server/internal/net/proto"
	"propbox/server/internal/sim"
	"propbox/server/internal/telemetry"
	"propbox/server/logging"
)

const (
	broadcastBytesMetricKey = "hub_broadcast_bytes_total"
	tickDurationMetricKey   = "hub_tick_duration_micros"
)

// HubConfig aggregates the tuning and infrastructure a hub needs.
type HubConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerActorLimit   int
	QueueWarning    int

	HeartbeatInterval time.Duration

	World   sim.WorldConfig
	Catalog *sim.Catalog

	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
	Clock     logging.Clock
}

// subscriber wraps a websocket connection with write serialization and the
// last acknowledged command sequence.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
	seq  atomic.Uint64
}

// WriteMessage sends one frame, serializing writers and bounding the write.
func (s *subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// LastCommandSeq returns the most recent acknowledged command sequence.
func (s *subscriber) LastCommandSeq() uint64 {
	return s.seq.Load()
}

// StoreLastCommandSeq records an acknowledged command sequence.
func (s *subscriber) StoreLastCommandSeq(seq uint64) {
	s.seq.Store(seq)
}

// Hub owns the simulation loop and the live websocket subscribers.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber

	cfg    HubConfig
	world  *sim.World
	engine *sim.Loop
	tick   atomic.Uint64

	logger  telemetry.Logger
	metrics telemetry.Metrics
	clock   logging.Clock
}

// NewHub constructs the world and loop from the given config. An empty
// catalog is rejected here, before the server starts accepting players.
func NewHub(cfg HubConfig) (*Hub, error) {
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(nil)
	}
	if cfg.Clock == nil {
		cfg.Clock = logging.SystemClock{}
	}
	if cfg.Catalog == nil {
		cfg.Catalog = sim.DefaultCatalog()
	}

	h := &Hub{
		subscribers: make(map[string]*subscriber),
		cfg:         cfg,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		clock:       cfg.Clock,
	}

	world, err := sim.NewWorld(cfg.World, cfg.Catalog, sim.Deps{
		Logger:    cfg.Logger,
		Metrics:   cfg.Metrics,
		Clock:     cfg.Clock,
		Publisher: cfg.Publisher,
	})
	if err != nil {
		return nil, err
	}
	h.world = world

	h.engine = sim.NewLoop(world, sim.LoopConfig{
		TickRate:        cfg.TickRate,
		CatchupMaxTicks: cfg.CatchupMaxTicks,
		CommandCapacity: cfg.CommandCapacity,
		PerActorLimit:   cfg.PerActorLimit,
		WarningStep:     cfg.QueueWarning,
	}, sim.LoopHooks{
		NextTick: func() uint64 { return h.tick.Add(1) },
		Prepare: func(ctx sim.LoopTickContext) {
			h.closeSubscribers(world.PruneStale(ctx.Now))
		},
		AfterStep: func(result sim.LoopStepResult) {
			if h.metrics != nil {
				h.metrics.Store(tickDurationMetricKey, uint64(result.Duration.Microseconds()))
			}
			h.BroadcastState(result.Snapshot)
		},
		OnQueueWarning: func(length int) {
			h.logger.Printf("[backpressure] command queue depth=%d", length)
		},
	})

	return h, nil
}

// Engine exposes the command staging surface for the transport layer.
func (h *Hub) Engine() sim.Engine {
	return h.engine
}

// Tick returns the current simulation tick.
func (h *Hub) Tick() uint64 {
	return h.tick.Load()
}

// Now reads the hub clock.
func (h *Hub) Now() time.Time {
	return h.clock.Now()
}

// HasPlayer reports whether the given player is registered.
func (h *Hub) HasPlayer(playerID string) bool {
	return h.world.HasPlayer(playerID)
}

// RunSimulation drives the fixed-rate tick loop until stop closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	h.engine.Run(stop)
}

// Join registers a new player and returns the join payload.
func (h *Hub) Join() proto.JoinResponse {
	player := h.world.AddPlayer()
	snapshot := h.world.Snapshot()
	return proto.JoinResponse{
		Ver:     ProtocolVersion,
		ID:      player.ID,
		Players: snapshot.Players,
		Props:   snapshot.Props,
		Catalog: h.world.CatalogIDs(),
		Config:  h.worldInfo(),
	}
}

// Subscribe associates a websocket connection with an existing player.
// Any previous connection for the player is closed.
func (h *Hub) Subscribe(playerID string, conn *websocket.Conn) (*subscriber, sim.Snapshot, bool) {
	if !h.world.HasPlayer(playerID) {
		return nil, sim.Snapshot{}, false
	}
	h.world.UpdateHeartbeat(playerID, h.clock.Now(), 0)

	sub := &subscriber{conn: conn}
	h.mu.Lock()
	existing := h.subscribers[playerID]
	h.subscribers[playerID] = sub
	h.mu.Unlock()
	if existing != nil {
		existing.conn.Close()
	}

	return sub, h.world.Snapshot(), true
}

// Disconnect removes a player and closes any active connection.
func (h *Hub) Disconnect(playerID string) bool {
	h.mu.Lock()
	sub, subOK := h.subscribers[playerID]
	if subOK {
		delete(h.subscribers, playerID)
	}
	h.mu.Unlock()
	if subOK {
		sub.conn.Close()
	}

	return h.world.RemovePlayer(playerID, "disconnect")
}

// UpdateHeartbeat records heartbeat metadata for a player.
func (h *Hub) UpdateHeartbeat(playerID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	return h.world.UpdateHeartbeat(playerID, receivedAt, clientSent)
}

// MarshalState renders a snapshot as a state message frame.
func (h *Hub) MarshalState(snapshot sim.Snapshot) ([]byte, error) {
	msg := proto.StateMessage{
		Ver:        ProtocolVersion,
		Type:       proto.TypeState,
		Tick:       snapshot.Tick,
		Players:    snapshot.Players,
		Props:      snapshot.Props,
		ServerTime: h.clock.Now().UnixMilli(),
	}
	return json.Marshal(msg)
}

// BroadcastState sends the snapshot to every subscriber, disconnecting the
// ones whose connection fails.
func (h *Hub) BroadcastState(snapshot sim.Snapshot) {
	data, err := h.MarshalState(snapshot)
	if err != nil {
		h.logger.Printf("failed to marshal state message: %v", err)
		return
	}
	if h.metrics != nil {
		h.metrics.Add(broadcastBytesMetricKey, uint64(len(data)))
	}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Printf("failed to send update to %s: %v", id, err)
			h.Disconnect(id)
		}
	}
}

// DiagnosticsSnapshot exposes connectivity and telemetry data.
func (h *Hub) DiagnosticsSnapshot() ([]sim.DiagnosticsPlayer, int) {
	return h.world.DiagnosticsPlayers(), h.engine.Pending()
}

func (h *Hub) worldInfo() proto.WorldInfo {
	return proto.WorldInfo{
		TickRate:        h.cfg.TickRate,
		MoveSpeed:       h.cfg.World.Locomotion.MoveSpeed,
		RotationSpeed:   h.cfg.World.Locomotion.RotationSpeed,
		HandOffset:      h.cfg.World.HandOffset,
		HandHeight:      h.cfg.World.HandHeight,
		HeartbeatMillis: h.cfg.HeartbeatInterval.Milliseconds(),
	}
}

func (h *Hub) closeSubscribers(playerIDs []string) {
	if len(playerIDs) == 0 {
		return
	}
	h.mu.Lock()
	toClose := make([]*subscriber, 0, len(playerIDs))
	for _, id := range playerIDs {
		if sub, ok := h.subscribers[id]; ok {
			toClose = append(toClose, sub)
			delete(h.subscribers, id)
		}
	}
	h.mu.Unlock()
	for _, sub := range toClose {
		sub.conn.Close()
	}
}
