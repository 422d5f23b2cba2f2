package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/binroute/internal/adapters/postgres"
	"github.com/samirrijal/binroute/internal/adapters/valkey"
	"github.com/samirrijal/binroute/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Bins      *usecases.BinService
	Placement *usecases.PlacementService
	Auth      *usecases.AuthService
	NATS      *nats.Conn
	DB        *postgres.DB
	Sessions  *valkey.SessionStore
}
