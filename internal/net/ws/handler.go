package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	server "propbox/server"
	"propbox/server/internal/net/intake"
	"propbox/server/internal/net/proto"
	"propbox/server/internal/sim"
	"propbox/server/internal/telemetry"
)

// Handler coordinates a websocket session for a player.
type Handler struct {
	hub    *server.Hub
	logger telemetry.Logger
}

// NewHandler constructs a websocket session handler for the given hub.
func NewHandler(hub *server.Hub, logger telemetry.Logger) *Handler {
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	return &Handler{hub: hub, logger: logger}
}

// Serve orchestrates a websocket session for the provided player connection.
// It blocks until the connection drops or the player is removed.
func (h *Handler) Serve(playerID string, conn *websocket.Conn) {
	if h == nil || h.hub == nil || conn == nil {
		return
	}

	sub, snapshot, ok := h.hub.Subscribe(playerID, conn)
	if !ok {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown player")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	data, err := h.hub.MarshalState(snapshot)
	if err != nil {
		h.logger.Printf("failed to marshal initial state for %s: %v", playerID, err)
		h.hub.Disconnect(playerID)
		return
	}
	if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
		h.hub.Disconnect(playerID)
		return
	}

	stage := intake.CommandContext{
		Engine:    h.hub.Engine(),
		HasPlayer: h.hub.HasPlayer,
		Tick:      h.hub.Tick,
		Now:       h.hub.Now,
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.hub.Disconnect(playerID)
			return
		}

		var msg proto.ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", playerID, err)
			continue
		}

		normalizedSeq := uint64(0)
		if msg.CommandSeq != nil && *msg.CommandSeq > 0 {
			normalizedSeq = *msg.CommandSeq
		}

		writeJSON := func(payload any) bool {
			data, err := json.Marshal(payload)
			if err != nil {
				h.logger.Printf("failed to marshal response for %s: %v", playerID, err)
				return true
			}
			if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
				h.hub.Disconnect(playerID)
				return false
			}
			return true
		}

		if msg.Type == proto.TypeHeartbeat {
			now := time.Now()
			rtt, ok := h.hub.UpdateHeartbeat(playerID, now, msg.SentAt)
			if !ok {
				continue
			}
			ack := proto.Heartbeat{
				Ver:        server.ProtocolVersion,
				Type:       proto.TypeHeartbeat,
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}
			if !writeJSON(ack) {
				return
			}
			continue
		}

		// Sequenced commands are idempotent: a replayed seq only re-acks.
		if normalizedSeq > 0 {
			if last := sub.LastCommandSeq(); last > 0 && normalizedSeq <= last {
				if !writeJSON(proto.CommandAck{Ver: server.ProtocolVersion, Type: proto.TypeCommandAck, Seq: normalizedSeq}) {
					return
				}
				continue
			}
		}

		cmd, ok, reason := intake.StageClientCommand(stage, playerID, msg)
		if normalizedSeq > 0 {
			if ok {
				ack := proto.CommandAck{Ver: server.ProtocolVersion, Type: proto.TypeCommandAck, Seq: normalizedSeq}
				if cmd.OriginTick > 0 {
					ack.Tick = cmd.OriginTick
				}
				if !writeJSON(ack) {
					return
				}
				sub.StoreLastCommandSeq(normalizedSeq)
			} else {
				reject := proto.CommandReject{
					Ver:    server.ProtocolVersion,
					Type:   proto.TypeCommandReject,
					Seq:    normalizedSeq,
					Reason: reason,
					Retry:  reason == sim.CommandRejectQueueLimit,
				}
				if !writeJSON(reject) {
					return
				}
			}
		}
		if !ok {
			switch reason {
			case server.CommandRejectInvalidAction:
				h.logger.Printf("unknown message type %q from %s", msg.Type, playerID)
			case server.CommandRejectUnknownActor:
				h.logger.Printf("command ignored for unknown player %s", playerID)
			}
		}
	}
}
