package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/minarah/internal/adapters/postgres"
	"github.com/samirrijal/minarah/internal/adapters/valkey"
	"github.com/samirrijal/minarah/internal/core/usecases"
	"github.com/samirrijal/minarah/internal/realtime"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Routing     *usecases.RoutingService
	SOS         *usecases.SOSService
	Teams       *usecases.RescueTeamService
	Predictions *usecases.PredictionService
	Hub         *realtime.Hub
	WS          WSConfig
	OpenAPIPath string // defaults to DefaultOpenAPIPath
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
}

// WSConfig tunes the /ws writer.
type WSConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
}

func (w WSConfig) withDefaults() WSConfig {
	if w.WriteTimeout <= 0 {
		w.WriteTimeout = 5 * time.Second
	}
	if w.PingInterval <= 0 {
		w.PingInterval = 30 * time.Second
	}
	return w
}
