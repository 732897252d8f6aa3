package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/minarah/internal/adapters/nats"
	"github.com/samirrijal/minarah/internal/adapters/postgres"
	"github.com/samirrijal/minarah/internal/core/usecases"
	"github.com/samirrijal/minarah/internal/pkg/config"
	"github.com/samirrijal/minarah/internal/pkg/logging"
	"github.com/samirrijal/minarah/internal/workflows"
)

func main() {
	cfg, err := config.Load("minarah-missions")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("minarah-missions", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	taskQueue := cfg.Temporal.TaskQueue
	if taskQueue == "" {
		taskQueue = workflows.DefaultTaskQueue
	}
	w := worker.New(c, taskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.MissionWorkflow)
	w.RegisterActivity(&workflows.MissionActivities{
		Teams: usecases.NewRescueTeamService(postgres.NewTeamRepo(db)),
	})

	// SOS events from the API instances drive mission signals.
	if cfg.NATS.Enabled {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "minarah-missions")
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer sub.Close()

		trigger := workflows.NewTrigger(c, taskQueue)
		if err := sub.SubscribeSOSEvents(ctx, trigger.HandleEvent); err != nil {
			log.Fatalf("subscribe: %v", err)
		}
	} else {
		slog.Warn("nats disabled; missions only start from direct signals")
	}

	slog.Info("missions worker started", "task_queue", taskQueue, "namespace", cfg.Temporal.Namespace)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
