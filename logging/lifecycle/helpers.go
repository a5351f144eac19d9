package lifecycle

import (
	"context"

	"propbox/server/logging"
)

const (
	// EventPlayerJoined is emitted when a player joins the world.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerLeft is emitted when a player leaves the world.
	EventPlayerLeft logging.EventType = "lifecycle.player_left"
)

// PlayerJoinedPayload captures spawn metadata for a new player.
type PlayerJoinedPayload struct {
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
	SpawnZ float64 `json:"spawnZ"`
}

// PlayerLeftPayload captures the reason a player left.
type PlayerLeftPayload struct {
	Reason string `json:"reason"`
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// PlayerLeft publishes a player departure event.
func PlayerLeft(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerLeftPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerLeft,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
