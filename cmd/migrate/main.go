package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marinewx/seatemp/internal/adapters/postgres"
	"github.com/marinewx/seatemp/internal/pkg/config"
	"github.com/marinewx/seatemp/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("seatemp-migrate")
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
		log.Println("down migration not yet implemented")
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) {
	applied, err := postgres.Migrate(ctx, pool, migrations.FS)
	for _, f := range applied {
		fmt.Printf("OK  %s\n", f)
	}
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	log.Println("all migrations applied")
}
