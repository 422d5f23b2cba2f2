package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/binroute/internal/core/domain"
	"github.com/samirrijal/binroute/internal/core/ports"
	"github.com/samirrijal/binroute/internal/pkg/geospatial"
)

// minSpacingMeters is the minimum great-circle distance between two
// accepted candidates.
const minSpacingMeters = 200.0

// PlacementService proposes bin placements along the road network inside a
// user-drawn region.
type PlacementService struct {
	routing       ports.RoutingService
	geocoder      ports.ReverseGeocoder
	lookupTimeout time.Duration
}

// NewPlacementService creates a new PlacementService. lookupTimeout bounds
// each individual reverse-geocode call; zero disables the bound.
func NewPlacementService(routing ports.RoutingService, geocoder ports.ReverseGeocoder, lookupTimeout time.Duration) *PlacementService {
	return &PlacementService{routing: routing, geocoder: geocoder, lookupTimeout: lookupTimeout}
}

// SuggestBins walks the driving route between the first and last region
// vertices and evaluates every geometry point for bin placement:
//
//   - points outside the region's bounding box are rejected;
//   - points closer than 200 m to the previously accepted point are rejected;
//   - surviving points are reverse-geocoded one at a time — water-tagged
//     addresses and addresses without a road tag are rejected, and a failed
//     lookup rejects only that point.
//
// A routing failure is propagated as-is with no partial results. An empty
// route geometry yields an empty, non-error result.
func (s *PlacementService) SuggestBins(ctx context.Context, region domain.Region) ([]domain.CandidateBin, error) {
	if len(region) == 0 {
		return nil, fmt.Errorf("region must contain at least one vertex")
	}

	waypoints := []domain.GeoPoint{region[0], region[len(region)-1]}

	geometry, err := s.routing.FetchRoute(ctx, waypoints)
	if err != nil {
		return nil, err
	}

	bounds := geospatial.BoundsOf(region)
	candidates := make([]domain.CandidateBin, 0, len(geometry))

	var lastAccepted *domain.GeoPoint
	for _, point := range geometry {
		candidates = append(candidates, s.evaluate(ctx, point, bounds, &lastAccepted))
	}

	return candidates, nil
}

// Accepted filters a candidate list down to the accepted points, in order.
func Accepted(candidates []domain.CandidateBin) []domain.GeoPoint {
	points := make([]domain.GeoPoint, 0, len(candidates))
	for _, c := range candidates {
		if c.Accepted {
			points = append(points, c.Location)
		}
	}
	return points
}

func (s *PlacementService) evaluate(ctx context.Context, point domain.GeoPoint, bounds domain.Bounds, lastAccepted **domain.GeoPoint) domain.CandidateBin {
	c := domain.CandidateBin{Location: point}

	if !bounds.Contains(point) {
		c.Reason = domain.RejectOutsideRegion
		return c
	}

	if *lastAccepted != nil && geospatial.Distance(**lastAccepted, point) < minSpacingMeters {
		c.Reason = domain.RejectTooClose
		return c
	}

	addr, err := s.reverse(ctx, point)
	switch {
	case err != nil:
		slog.Warn("reverse geocode failed, rejecting candidate",
			"lat", point.Lat, "lon", point.Lon, "error", err)
		c.Reason = domain.RejectLookupFailed
	case addr.OnWater():
		c.Reason = domain.RejectWater
	case addr.OnRoad():
		c.Accepted = true
		p := point
		*lastAccepted = &p
	default:
		c.Reason = domain.RejectNotOnRoad
	}

	return c
}

// reverse issues a single lookup under its own deadline so one slow
// upstream call cannot stall the rest of the batch indefinitely.
func (s *PlacementService) reverse(ctx context.Context, point domain.GeoPoint) (domain.Address, error) {
	if s.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lookupTimeout)
		defer cancel()
	}
	return s.geocoder.Reverse(ctx, point)
}
