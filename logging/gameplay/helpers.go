package gameplay

import (
	"context"

	"propbox/server/logging"
)

const (
	// EventPropSpawned is emitted when a player conjures a prop into its hand.
	EventPropSpawned logging.EventType = "gameplay.prop_spawned"
	// EventPropDropped is emitted when a held prop is destroyed by a drop.
	EventPropDropped logging.EventType = "gameplay.prop_dropped"
	// EventPropCycled is emitted when a held prop is swapped for the
	// adjacent catalog entry.
	EventPropCycled logging.EventType = "gameplay.prop_cycled"
)

// PropSpawnedPayload describes the freshly spawned instance.
type PropSpawnedPayload struct {
	Prototype string `json:"prototype"`
	Index     int    `json:"index"`
	Instance  string `json:"instance"`
}

// PropDroppedPayload describes the destroyed instance.
type PropDroppedPayload struct {
	Index    int    `json:"index"`
	Instance string `json:"instance"`
}

// PropCycledPayload describes a swap, including the replaced instance.
type PropCycledPayload struct {
	Prototype string `json:"prototype"`
	Index     int    `json:"index"`
	Instance  string `json:"instance"`
	Replaced  string `json:"replaced"`
}

// PropSpawned publishes a spawn event.
func PropSpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PropSpawnedPayload, extra map[string]any) {
	publish(ctx, pub, EventPropSpawned, tick, actor, payload, extra)
}

// PropDropped publishes a drop event.
func PropDropped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PropDroppedPayload, extra map[string]any) {
	publish(ctx, pub, EventPropDropped, tick, actor, payload, extra)
}

// PropCycled publishes a cycle event.
func PropCycled(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PropCycledPayload, extra map[string]any) {
	publish(ctx, pub, EventPropCycled, tick, actor, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, actor logging.EntityRef, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}
