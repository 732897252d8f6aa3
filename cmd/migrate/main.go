package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/minarah/internal/pkg/config"
)

var files = []string{
	"migrations/001_core_tables.sql",
	"migrations/002_indexes.sql",
}

// tables in drop order; sos_requests references rescue_teams.
var tables = []string{
	"flood_predictions",
	"sos_requests",
	"rescue_teams",
	"road_nodes",
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("minarah-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, pool)
	case "down":
		dropTables(ctx, pool)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		_, err = pool.Exec(ctx, string(data))
		if err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}

func dropTables(ctx context.Context, pool *pgxpool.Pool) {
	for _, t := range tables {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+t+" CASCADE"); err != nil {
			log.Fatalf("drop %s: %v", t, err)
		}
		fmt.Printf("DROP %s\n", t)
	}

	log.Println("all tables dropped")
}
