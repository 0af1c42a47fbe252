package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/samirrijal/seascope/internal/adapters/postgres"
	"github.com/samirrijal/seascope/internal/pkg/config"
)

// migrations are applied in order from the migrations directory.
var migrations = []string{
	"001_query_log.sql",
	"002_catalog.sql",
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	_ = godotenv.Load(".env")

	cfg, err := config.Load("seascope-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	dir := os.Getenv("SEASCOPE_MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}

	switch os.Args[1] {
	case "up":
		applied, err := db.ApplyMigrations(ctx, dir, migrations)
		for _, f := range applied {
			fmt.Printf("OK  %s\n", f)
		}
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Println("all migrations applied")
	case "down":
		for _, table := range []string{"catalog_entries", "query_log"} {
			if _, err := db.Pool.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				log.Fatalf("drop %s: %v", table, err)
			}
			fmt.Printf("DROP  %s\n", table)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
