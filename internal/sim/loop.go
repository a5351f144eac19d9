package sim

import (
	"sync"
	"time"

	"propbox/server/internal/telemetry"
)

const (
	// CommandRejectQueueLimit indicates a command was dropped due to
	// per-actor queue throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the global command buffer is
	// saturated.
	CommandRejectQueueFull = "queue_full"
)

// LoopConfig tunes the command buffer and tick loop orchestration.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerActorLimit   int
	WarningStep     int
}

// LoopTickContext describes one scheduled tick.
type LoopTickContext struct {
	Tick  uint64
	Now   time.Time
	Delta float64
}

// LoopStepResult captures the outcome of a single tick for observers.
type LoopStepResult struct {
	Tick         uint64
	Now          time.Time
	Delta        float64
	Snapshot     Snapshot
	Commands     []Command
	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
}

// LoopHooks lets the embedding hub observe and steer tick sequencing.
type LoopHooks struct {
	NextTick       func() uint64
	Prepare        func(LoopTickContext)
	AfterStep      func(LoopStepResult)
	OnCommandDrop  func(reason string, cmd Command)
	OnQueueWarning func(length int)
}

// Loop coordinates command ingestion and the fixed-timestep runner. All
// world mutation happens on the loop goroutine; producers only stage
// commands through Enqueue.
type Loop struct {
	core   EngineCore
	buffer *CommandBuffer
	hooks  LoopHooks
	config LoopConfig
	logger telemetry.Logger

	queueMu       sync.Mutex
	perActorCount map[string]int
	dropCounts    map[string]uint64
}

// NewLoop wraps the provided engine core with a ring-buffer queue and loop.
func NewLoop(core EngineCore, cfg LoopConfig, hooks LoopHooks) *Loop {
	if core == nil {
		return nil
	}
	deps := core.Deps()
	return &Loop{
		core:          core,
		buffer:        NewCommandBuffer(cfg.CommandCapacity, deps.Metrics),
		hooks:         hooks,
		config:        cfg,
		logger:        deps.Logger,
		perActorCount: make(map[string]int),
		dropCounts:    make(map[string]uint64),
	}
}

// Snapshot delegates to the underlying engine core.
func (l *Loop) Snapshot() Snapshot {
	if l == nil {
		return Snapshot{}
	}
	return l.core.Snapshot()
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// Enqueue stages a command, enforcing per-actor throttling and capacity
// limits.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, CommandRejectQueueFull
	}
	reason := ""
	var dropCount uint64
	l.queueMu.Lock()
	if l.config.PerActorLimit > 0 && cmd.ActorID != "" {
		count := l.perActorCount[cmd.ActorID]
		if count >= l.config.PerActorLimit {
			reason = CommandRejectQueueLimit
			dropCount = l.incrementDropLocked(cmd.ActorID)
		} else {
			l.perActorCount[cmd.ActorID] = count + 1
		}
	}
	if reason == "" {
		if !l.buffer.Push(cmd) {
			reason = CommandRejectQueueFull
			dropCount = l.incrementDropLocked(cmd.ActorID)
		} else if l.config.WarningStep > 0 {
			length := l.buffer.Len()
			if length >= l.config.WarningStep && length%l.config.WarningStep == 0 {
				l.queueMu.Unlock()
				if l.hooks.OnQueueWarning != nil {
					l.hooks.OnQueueWarning(length)
				}
				return true, ""
			}
		}
	}
	l.queueMu.Unlock()
	if reason != "" {
		l.reportDrop(reason, cmd, dropCount)
		return false, reason
	}
	return true, ""
}

// Advance executes a single simulation step using the staged commands.
func (l *Loop) Advance(ctx LoopTickContext) LoopStepResult {
	if l == nil {
		return LoopStepResult{}
	}
	commands := l.drainCommands()
	if l.hooks.Prepare != nil {
		l.hooks.Prepare(ctx)
	}
	_ = l.core.Apply(commands)
	l.core.Step(ctx.Delta)
	return LoopStepResult{
		Tick:     ctx.Tick,
		Now:      ctx.Now,
		Delta:    ctx.Delta,
		Snapshot: l.core.Snapshot(),
		Commands: commands,
	}
}

// Run drives the fixed-timestep loop until the stop channel closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	tickRate := l.config.TickRate
	if tickRate <= 0 {
		tickRate = 15
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	clock := l.core.Deps().Clock
	last := clock.Now()
	budgetSeconds := 1.0 / float64(tickRate)
	maxDt := budgetSeconds
	if l.config.CatchupMaxTicks > 1 {
		maxDt = budgetSeconds * float64(l.config.CatchupMaxTicks)
	}
	budgetDuration := time.Second / time.Duration(tickRate)

	var tick uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := clock.Now()
			dt := now.Sub(last).Seconds()
			clamped := false
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				dt = maxDt
				clamped = true
			}
			last = now

			if l.hooks.NextTick != nil {
				tick = l.hooks.NextTick()
			} else {
				tick++
			}

			start := clock.Now()
			result := l.Advance(LoopTickContext{Tick: tick, Now: now, Delta: dt})
			result.Duration = clock.Now().Sub(start)
			result.Budget = budgetDuration
			result.ClampedDelta = clamped

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.buffer.Drain()
	if len(l.perActorCount) > 0 {
		l.perActorCount = make(map[string]int)
	}
	return commands
}

func (l *Loop) incrementDropLocked(actorID string) uint64 {
	if actorID == "" {
		return 0
	}
	count := l.dropCounts[actorID] + 1
	l.dropCounts[actorID] = count
	return count
}

func (l *Loop) reportDrop(reason string, cmd Command, count uint64) {
	if l.hooks.OnCommandDrop != nil {
		l.hooks.OnCommandDrop(reason, cmd)
	}
	if reason == CommandRejectQueueLimit && count > 0 && count&(count-1) == 0 {
		if l.logger != nil {
			l.logger.Printf(
				"[backpressure] dropping command actor=%s type=%s count=%d limit=%d",
				cmd.ActorID,
				cmd.Type,
				count,
				l.config.PerActorLimit,
			)
		}
	}
}

// Ensure Loop implements Engine and World implements EngineCore.
var (
	_ Engine     = (*Loop)(nil)
	_ EngineCore = (*World)(nil)
)
