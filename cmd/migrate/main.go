package main

import (
	"flag"
	"log"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/migrations"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration instead of migrating up")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	dsn := cfg.Postgres.GetDSN()

	if *down {
		if err := migrations.Down(dsn); err != nil {
			log.Fatalf("failed to roll back migration: %v", err)
		}
		log.Println("rolled back the most recent migration")
		return
	}

	if err := migrations.Up(dsn); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}
	log.Println("applied all pending migrations")
}
