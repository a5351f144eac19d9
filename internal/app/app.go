package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	server "propbox/server"
	"propbox/server/internal/config"
	servernet "propbox/server/internal/net"
	"propbox/server/internal/sim"
	"propbox/server/internal/telemetry"
	"propbox/server/logging"
	loggingSinks "propbox/server/logging/sinks"
)

// Run assembles the server from configuration and blocks serving it.
func Run(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("PROPBOX_CONFIG"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	telemetryLogger := telemetry.WrapLogger(log.Default())

	logConfig := logging.DefaultConfig()
	logConfig.EnabledSinks = cfg.Logging.Sinks
	if severity, ok := logging.ParseSeverity(cfg.Logging.MinimumSeverity); ok {
		logConfig.MinimumSeverity = severity
	}

	sinks := map[string]logging.Sink{
		"console": loggingSinks.NewConsole(os.Stdout, logConfig.Console),
	}
	if cfg.Logging.JSONPath != "" {
		file, err := os.OpenFile(cfg.Logging.JSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open json log %s: %w", cfg.Logging.JSONPath, err)
		}
		defer file.Close()
		sinks["json"] = loggingSinks.NewJSON(file, logConfig.JSON.FlushInterval)
	}

	router, err := logging.NewRouter(logConfig, logging.SystemClock{}, log.Default(), sinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(ctx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	catalogIDs := make([]sim.PrototypeID, len(cfg.Catalog))
	for i, id := range cfg.Catalog {
		catalogIDs[i] = sim.PrototypeID(id)
	}
	catalog, err := sim.NewCatalog(catalogIDs)
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	metrics := logging.NewMetrics()
	hub, err := server.NewHub(server.HubConfig{
		TickRate:          cfg.TickRate,
		CatchupMaxTicks:   cfg.CatchupMaxTicks,
		CommandCapacity:   cfg.CommandCapacity,
		PerActorLimit:     cfg.PerActorLimit,
		QueueWarning:      cfg.CommandCapacity / 2,
		HeartbeatInterval: cfg.HeartbeatInterval(),
		World: sim.WorldConfig{
			Locomotion: sim.LocomotionConfig{
				MoveSpeed:     cfg.MoveSpeed,
				RotationSpeed: cfg.RotationSpeed,
			},
			HandOffset:      cfg.HandOffset,
			HandHeight:      cfg.HandHeight,
			SpawnPose:       sim.Pose{X: cfg.SpawnX, Y: cfg.SpawnY, Z: cfg.SpawnZ},
			DisconnectAfter: cfg.DisconnectAfter(),
		},
		Catalog:   catalog,
		Logger:    telemetryLogger,
		Metrics:   telemetry.WrapMetrics(metrics),
		Publisher: router,
		Clock:     logging.SystemClock{},
	})
	if err != nil {
		return fmt.Errorf("failed to construct hub: %w", err)
	}

	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		Logger:  telemetryLogger,
		Metrics: metrics,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	telemetryLogger.Printf("server listening on %s", srv.Addr)

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
