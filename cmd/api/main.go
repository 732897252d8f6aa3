package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/samirrijal/minarah/internal/adapters/http"
	"github.com/samirrijal/minarah/internal/adapters/memory"
	natsadapter "github.com/samirrijal/minarah/internal/adapters/nats"
	"github.com/samirrijal/minarah/internal/adapters/postgres"
	"github.com/samirrijal/minarah/internal/adapters/scorer"
	"github.com/samirrijal/minarah/internal/adapters/valkey"
	"github.com/samirrijal/minarah/internal/core/ports"
	"github.com/samirrijal/minarah/internal/core/usecases"
	"github.com/samirrijal/minarah/internal/pkg/config"
	"github.com/samirrijal/minarah/internal/pkg/logging"
	"github.com/samirrijal/minarah/internal/pkg/telemetry"
	"github.com/samirrijal/minarah/internal/realtime"
)

// repositories groups the storage ports selected by storage.driver.
type repositories struct {
	nodes       ports.RoadGraphRepository
	sos         ports.SOSRepository
	teams       ports.RescueTeamRepository
	predictions ports.PredictionRepository
}

func main() {
	cfg, err := config.Load("minarah-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup("minarah-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	clock := clockwork.NewRealClock()

	// Storage
	var (
		repos repositories
		db    *postgres.DB
	)
	switch cfg.Storage.Driver {
	case "memory":
		slog.Warn("using in-memory storage; state is lost on restart")
		nodes := memory.NewRoadGraphRepo()
		if cfg.Storage.GraphFile != "" {
			st, err := seedRoadGraph(ctx, cfg.Storage.GraphFile, nodes)
			if err != nil {
				log.Fatalf("seed road graph: %v", err)
			}
			slog.Info("road graph seeded", "file", cfg.Storage.GraphFile, "nodes", st.Nodes, "edges", st.Edges)
		}
		repos = repositories{
			nodes:       nodes,
			sos:         memory.NewSOSRepo(clock),
			teams:       memory.NewTeamRepo(),
			predictions: memory.NewPredictionRepo(),
		}
	default:
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolStats(ctx, 15*time.Second)

		repos = repositories{
			nodes:       postgres.NewRoadGraphRepo(db),
			sos:         postgres.NewSOSRepo(db, clock),
			teams:       postgres.NewTeamRepo(db),
			predictions: postgres.NewPredictionRepo(db),
		}
	}

	// Cache
	var (
		cache     *valkey.Cache
		nodeCache ports.CacheService
	)
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
			cache = nil
		} else {
			defer cache.Close()
			nodeCache = cache
		}
	}

	hub := realtime.NewHub(cfg.Hub.BufferSize)
	defer hub.Close()

	// NATS: mirror local events and relay other instances' events into the hub.
	var (
		events ports.EventPublisher
		relay  *natsadapter.Relay
		pub    *natsadapter.Publisher
	)
	if cfg.NATS.Enabled {
		pub, err = natsadapter.NewPublisher(cfg.NATS.URL, uuid.NewString())
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
			pub = nil
		} else {
			defer pub.Close()
			events = pub
			relay = natsadapter.NewRelay(pub.Origin(), hub)
			if err := relay.Start(pub.Conn()); err != nil {
				slog.Warn("nats relay unavailable", "error", err)
			} else {
				defer relay.Stop()
			}
		}
	}

	// Use cases
	graph := usecases.NewRoadGraphService(repos.nodes, nodeCache, cfg.Valkey.NodeTTL)
	deps := &http.Dependencies{
		Routing:     usecases.NewRoutingService(graph, cfg.Routing.MaxExpansions),
		SOS:         usecases.NewSOSService(repos.sos, repos.teams, hub, events, clock),
		Teams:       usecases.NewRescueTeamService(repos.teams),
		Predictions: usecases.NewPredictionService(scorer.New(cfg.Scorer.URL, cfg.Scorer.Timeout()), repos.predictions, clock),
		Hub:         hub,
		WS: http.WSConfig{
			WriteTimeout: cfg.Hub.WriteTimeout(),
			PingInterval: cfg.Hub.PingInterval(),
		},
		OpenAPIPath: cfg.Server.OpenAPIPath,
		DB:          db,
		Cache:       cache,
	}
	if pub != nil {
		deps.NATS = pub.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Minarah API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "storage", cfg.Storage.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Closing the hub ends every /ws writer so the server can drain.
	hub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
