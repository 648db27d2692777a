package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("seatemp-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Stream.BatchSize != 10 {
		t.Errorf("expected batch size 10, got %d", cfg.Stream.BatchSize)
	}
	if cfg.Telemetry.ServiceName != "seatemp-test" {
		t.Errorf("expected service name seatemp-test, got %s", cfg.Telemetry.ServiceName)
	}
	if cfg.NATS.Subject != "weather.reports" {
		t.Errorf("unexpected subject %s", cfg.NATS.Subject)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SEATEMP_DATABASE_HOST", "db.internal")
	t.Setenv("SEATEMP_STREAM_BATCH_SIZE", "25")

	cfg, err := Load("seatemp-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected db.internal, got %s", cfg.Database.Host)
	}
	if cfg.Stream.BatchSize != 25 {
		t.Errorf("expected batch size 25, got %d", cfg.Stream.BatchSize)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("SEATEMP_STREAM_BATCH_SIZE", "0")
	if _, err := Load("seatemp-test"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.port", "database.host", "nats.url", "valkey.addr", "stream.batch_size", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, DBName: "weather", SSLMode: "disable"}
	if got := d.DSN(); got != "postgres://u:p@h:5432/weather?sslmode=disable" {
		t.Errorf("unexpected dsn %s", got)
	}
}
