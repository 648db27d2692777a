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

	natsadapter "github.com/marinewx/seatemp/internal/adapters/nats"
	"github.com/marinewx/seatemp/internal/adapters/postgres"
	"github.com/marinewx/seatemp/internal/core/domain"
	"github.com/marinewx/seatemp/internal/core/usecases"
	"github.com/marinewx/seatemp/internal/pkg/config"
	"github.com/marinewx/seatemp/internal/pkg/logging"
)

const usage = "usage: ingestor <load|publish> <file.json> | ingestor consume"

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load("seatemp-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd := os.Args[1]; cmd {
	case "load":
		err = runLoad(ctx, cfg, fileArg())
	case "publish":
		err = runPublish(ctx, cfg, fileArg())
	case "consume":
		err = runConsume(ctx, cfg)
	default:
		log.Fatalf("unknown command: %s\n%s", cmd, usage)
	}
	if err != nil {
		slog.Error("ingestion failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func fileArg() string {
	if len(os.Args) < 3 {
		log.Fatal(usage)
	}
	return os.Args[2]
}

func readReports(path string) ([]domain.WeatherReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reports, err := decodeReports(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	slog.Info("reports decoded", "file", path, "count", len(reports))
	return reports, nil
}

// runLoad writes the file straight into the store.
func runLoad(ctx context.Context, cfg *config.Config, path string) error {
	reports, err := readReports(path)
	if err != nil {
		return err
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	if err != nil {
		return err
	}
	defer db.Close()

	svc := usecases.NewIngestService(postgres.NewWeatherRepo(postgres.NewProviderFromDB(db)), nil, nil)

	start := time.Now()
	n, err := svc.Load(ctx, reports)
	slog.Info("load finished",
		"read", len(reports),
		"inserted", n,
		"skipped", len(reports)-n,
		"duration", time.Since(start).String(),
	)
	return err
}

// runPublish sends the file to JetStream for a consumer to store.
func runPublish(ctx context.Context, cfg *config.Config, path string) error {
	reports, err := readReports(path)
	if err != nil {
		return err
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		return err
	}
	defer pub.Close()

	svc := usecases.NewIngestService(nil, pub, nil)
	n, err := svc.Publish(ctx, reports)
	slog.Info("publish finished", "read", len(reports), "published", n, "subject", cfg.NATS.Subject)
	return err
}

// runConsume stores reports from JetStream until interrupted.
func runConsume(ctx context.Context, cfg *config.Config) error {
	db := postgres.NewProvider(cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	defer db.Close()
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		return err
	}
	defer sub.Close()

	go db.ReportPoolStats(ctx, 15*time.Second)

	svc := usecases.NewIngestService(postgres.NewWeatherRepo(db), nil, sub)
	slog.Info("consuming reports", "subject", cfg.NATS.Subject+".>")
	if err := svc.Consume(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	slog.Info("consumer stopped")
	return nil
}
