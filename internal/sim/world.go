package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"propbox/server/logging"
	"propbox/server/logging/gameplay"
	"propbox/server/logging/lifecycle"
)

const (
	commandUnknownActorMetricKey = "sim_command_unknown_actor_total"
	grabBlockedMetricKey         = "sim_grab_blocked_total"
)

// ErrEmptyCatalog indicates the world was constructed without any spawnable
// prototypes. This is a configuration mistake and is reported at startup,
// never at grab time.
var ErrEmptyCatalog = errors.New("sim: prop catalog is empty")

// WorldConfig tunes the simulation core.
type WorldConfig struct {
	Locomotion      LocomotionConfig
	HandOffset      float64 // forward distance from player to hand anchor
	HandHeight      float64 // anchor height above the player origin
	SpawnPose       Pose
	DisconnectAfter time.Duration
}

// playerState carries the server-private fields alongside the broadcast view.
type playerState struct {
	Player
	intentX       float64
	intentZ       float64
	holder        Holder
	lastInput     time.Time
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

// World owns all players, the prop catalog, and live prop instances.
// Commands are applied and ticks stepped from a single consumer goroutine;
// the mutex guards the synchronous join/heartbeat/snapshot surface.
type World struct {
	mu      sync.Mutex
	cfg     WorldConfig
	catalog *Catalog
	players map[string]*playerState
	props   *propTable
	nextID  atomic.Uint64
	tick    uint64
	deps    Deps
}

// NewWorld validates the catalog and constructs an empty world.
func NewWorld(cfg WorldConfig, catalog *Catalog, deps Deps) (*World, error) {
	if catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	return &World{
		cfg:     cfg,
		catalog: catalog,
		players: make(map[string]*playerState),
		props:   newPropTable(),
		deps:    deps.normalized(),
	}, nil
}

// CatalogIDs returns the ordered prototype IDs offered to clients.
func (w *World) CatalogIDs() []PrototypeID {
	return w.catalog.IDs()
}

// AddPlayer registers a new player at the spawn pose and returns its view.
func (w *World) AddPlayer() Player {
	id := fmt.Sprintf("player-%d", w.nextID.Add(1))
	now := w.deps.Clock.Now()

	w.mu.Lock()
	state := &playerState{
		Player: Player{
			ID:   id,
			Pose: w.cfg.SpawnPose,
		},
		lastHeartbeat: now,
	}
	w.players[id] = state
	tick := w.tick
	view := state.view(w.catalog)
	w.mu.Unlock()

	lifecycle.PlayerJoined(context.Background(), w.deps.Publisher, tick,
		logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer},
		lifecycle.PlayerJoinedPayload{SpawnX: w.cfg.SpawnPose.X, SpawnY: w.cfg.SpawnPose.Y, SpawnZ: w.cfg.SpawnPose.Z},
		nil)
	return view
}

// RemovePlayer drops a player along with any held instance.
func (w *World) RemovePlayer(id, reason string) bool {
	w.mu.Lock()
	state, ok := w.players[id]
	if !ok {
		w.mu.Unlock()
		return false
	}
	state.holder.Release(w.props)
	delete(w.players, id)
	tick := w.tick
	w.mu.Unlock()

	lifecycle.PlayerLeft(context.Background(), w.deps.Publisher, tick,
		logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer},
		lifecycle.PlayerLeftPayload{Reason: reason},
		nil)
	return true
}

// HasPlayer reports whether the given player is registered.
func (w *World) HasPlayer(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.players[id]
	return ok
}

// UpdateHeartbeat records the most recent heartbeat time and RTT.
func (w *World) UpdateHeartbeat(id string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	state, ok := w.players[id]
	if !ok {
		return 0, false
	}
	state.lastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			state.lastRTT = rtt
		}
	}
	return state.lastRTT, true
}

// PruneStale removes players whose heartbeat lapsed and returns their IDs.
func (w *World) PruneStale(now time.Time) []string {
	w.mu.Lock()
	var stale []string
	for id, state := range w.players {
		if now.Sub(state.lastHeartbeat) > w.cfg.DisconnectAfter {
			stale = append(stale, id)
		}
	}
	w.mu.Unlock()

	sort.Strings(stale)
	for _, id := range stale {
		w.RemovePlayer(id, "heartbeat_timeout")
		w.deps.Logger.Printf("disconnecting %s due to heartbeat timeout", id)
	}
	return stale
}

// Apply processes staged commands in FIFO order before the tick advances.
func (w *World) Apply(commands []Command) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, cmd := range commands {
		state, ok := w.players[cmd.ActorID]
		if !ok {
			if w.deps.Metrics != nil {
				w.deps.Metrics.Add(commandUnknownActorMetricKey, 1)
			}
			continue
		}
		switch cmd.Type {
		case CommandMove:
			if cmd.Move != nil {
				w.applyMoveLocked(state, cmd.Move)
			}
		case CommandGrab:
			w.applyGrabLocked(state)
		case CommandCycleNext:
			w.applyCycleLocked(state, +1)
		case CommandCyclePrevious:
			w.applyCycleLocked(state, -1)
		}
	}
	return nil
}

// Step advances the world by dt seconds: locomotion first, then the anchor
// lock for every held instance.
func (w *World) Step(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tick++
	for _, state := range w.players {
		stepLocomotion(state, w.cfg.Locomotion, dt)
		state.holder.SyncAnchor(w.props, w.anchorFor(state))
	}
}

// Snapshot copies players and props for broadcasting.
func (w *World) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	players := make([]Player, 0, len(w.players))
	for _, state := range w.players {
		players = append(players, state.view(w.catalog))
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	return Snapshot{
		Tick:    w.tick,
		Players: players,
		Props:   w.props.snapshot(),
	}
}

// Deps exposes the injected infrastructure dependencies.
func (w *World) Deps() Deps {
	return w.deps
}

// DiagnosticsPlayers reports per-player connectivity data.
func (w *World) DiagnosticsPlayers() []DiagnosticsPlayer {
	w.mu.Lock()
	defer w.mu.Unlock()

	players := make([]DiagnosticsPlayer, 0, len(w.players))
	for _, state := range w.players {
		players = append(players, DiagnosticsPlayer{
			ID:            state.ID,
			LastHeartbeat: state.lastHeartbeat.UnixMilli(),
			RTTMillis:     state.lastRTT.Milliseconds(),
		})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players
}

func (w *World) applyMoveLocked(state *playerState, move *MoveCommand) {
	dx := move.DX
	dz := move.DZ
	if length := math.Hypot(dx, dz); length > 1 {
		dx /= length
		dz /= length
	}
	state.intentX = dx
	state.intentZ = dz
	state.lastInput = w.deps.Clock.Now()
}

func (w *World) applyGrabLocked(state *playerState) {
	transition, ok := state.holder.Grab(w.catalog, w.props, w.anchorFor(state))
	if !ok {
		if w.deps.Metrics != nil {
			w.deps.Metrics.Add(grabBlockedMetricKey, 1)
		}
		w.deps.Logger.Printf("grab ignored for %s: catalog is empty", state.ID)
		return
	}
	w.publishTransitionLocked(state.ID, transition)
}

func (w *World) applyCycleLocked(state *playerState, step int) {
	var transition HolderTransition
	var ok bool
	if step > 0 {
		transition, ok = state.holder.CycleNext(w.catalog, w.props, w.anchorFor(state))
	} else {
		transition, ok = state.holder.CyclePrevious(w.catalog, w.props, w.anchorFor(state))
	}
	if !ok {
		return
	}
	w.publishTransitionLocked(state.ID, transition)
}

func (w *World) publishTransitionLocked(actorID string, transition HolderTransition) {
	actor := logging.EntityRef{ID: actorID, Kind: logging.EntityKindPlayer}
	ctx := context.Background()
	switch transition.Kind {
	case TransitionSpawned:
		gameplay.PropSpawned(ctx, w.deps.Publisher, w.tick, actor, gameplay.PropSpawnedPayload{
			Prototype: string(transition.Prototype),
			Index:     transition.Index,
			Instance:  string(transition.Instance),
		}, nil)
	case TransitionDropped:
		gameplay.PropDropped(ctx, w.deps.Publisher, w.tick, actor, gameplay.PropDroppedPayload{
			Index:    transition.Index,
			Instance: string(transition.Dropped),
		}, nil)
	case TransitionCycled:
		gameplay.PropCycled(ctx, w.deps.Publisher, w.tick, actor, gameplay.PropCycledPayload{
			Prototype: string(transition.Prototype),
			Index:     transition.Index,
			Instance:  string(transition.Instance),
			Replaced:  string(transition.Dropped),
		}, nil)
	}
}

// anchorFor derives the hand anchor pose: a fixed offset in front of the
// player, rotated by its yaw, at hand height.
func (w *World) anchorFor(state *playerState) Pose {
	yawRad := state.Pose.Yaw * math.Pi / 180
	return Pose{
		X:   state.Pose.X + math.Sin(yawRad)*w.cfg.HandOffset,
		Y:   state.Pose.Y + w.cfg.HandHeight,
		Z:   state.Pose.Z + math.Cos(yawRad)*w.cfg.HandOffset,
		Yaw: state.Pose.Yaw,
	}
}

// view renders the broadcast-facing copy of a player.
func (p *playerState) view(cat *Catalog) Player {
	player := p.Player
	if ref, ok := p.holder.Instance(); ok {
		proto, _ := cat.At(p.holder.Selection())
		player.Held = &HeldProp{Index: p.holder.Selection(), Instance: ref, Prototype: proto.ID}
	}
	return player
}
