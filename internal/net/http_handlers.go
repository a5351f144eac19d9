package net

import (
	"encoding/json"
	nethttp "net/http"

	"github.com/gorilla/websocket"

	server "propbox/server"
	"propbox/server/internal/net/ws"
	"propbox/server/internal/sim"
	"propbox/server/internal/telemetry"
	"propbox/server/logging"
)

// HTTPHandlerConfig tunes the HTTP surface.
type HTTPHandlerConfig struct {
	Logger  telemetry.Logger
	Metrics *logging.Metrics
}

// NewHTTPHandler exposes the join, websocket, health, and diagnostics
// endpoints for the given hub.
func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}
	session := ws.NewHandler(hub, logger)

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/join", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			nethttp.Error(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		resp := hub.Join()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Printf("failed to encode join response: %v", err)
		}
	})

	mux.HandleFunc("/ws", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		playerID := r.URL.Query().Get("id")
		if playerID == "" {
			nethttp.Error(w, "missing id", nethttp.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("upgrade failed for %s: %v", playerID, err)
			return
		}
		go session.Serve(playerID, conn)
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		players, pending := hub.DiagnosticsSnapshot()
		payload := struct {
			Status          string                  `json:"status"`
			ServerTime      int64                   `json:"serverTime"`
			Tick            uint64                  `json:"tick"`
			PendingCommands int                     `json:"pendingCommands"`
			Players         []sim.DiagnosticsPlayer `json:"players"`
			Telemetry       map[string]uint64       `json:"telemetry,omitempty"`
		}{
			Status:          "ok",
			ServerTime:      hub.Now().UnixMilli(),
			Tick:            hub.Tick(),
			PendingCommands: pending,
			Players:         players,
			Telemetry:       cfg.Metrics.TelemetrySnapshot(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Printf("failed to encode diagnostics: %v", err)
		}
	})

	return mux
}
