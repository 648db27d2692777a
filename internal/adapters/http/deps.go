package http

import (
	natsadapter "github.com/marinewx/seatemp/internal/adapters/nats"
	"github.com/marinewx/seatemp/internal/adapters/postgres"
	"github.com/marinewx/seatemp/internal/adapters/valkey"
	"github.com/marinewx/seatemp/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. DB, Cache and
// NATS are only used by readiness checks and may be nil.
type Dependencies struct {
	SeaTemperatures *usecases.SeaTemperatureService
	Weather         *usecases.WeatherService
	DB              *postgres.Provider
	Cache           *valkey.Cache
	NATS            *natsadapter.Publisher
}
