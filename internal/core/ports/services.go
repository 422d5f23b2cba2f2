package ports

import (
	"context"
	"time"

	"github.com/samirrijal/binroute/internal/core/domain"
)

// RoutingService answers driving-direction requests against an external API.
// Implementations issue exactly one outbound request and never retry.
type RoutingService interface {
	// FetchRoute returns the route geometry for an ordered sequence of
	// ≥2 waypoints. Returns domain.ErrRouteUnavailable when the service
	// answered but produced no route, and *domain.UpstreamError on
	// network/HTTP failure.
	FetchRoute(ctx context.Context, waypoints []domain.GeoPoint) (domain.RouteGeometry, error)
}

// ReverseGeocoder maps a coordinate to the address tags of the nearest
// known feature.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, point domain.GeoPoint) (domain.Address, error)
}

// EventPublisher publishes bin lifecycle events to a message broker.
type EventPublisher interface {
	PublishBinAdded(ctx context.Context, bin *domain.Bin) error
	PublishBinFull(ctx context.Context, bin *domain.Bin) error
}

// SessionStore holds login sessions keyed by opaque token.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}
