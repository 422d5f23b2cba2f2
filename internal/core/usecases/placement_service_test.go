package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/samirrijal/binroute/internal/core/domain"
	"github.com/samirrijal/binroute/internal/core/usecases"
	"github.com/samirrijal/binroute/internal/pkg/geospatial"
)

// --- Mock routing + geocoding ---

type mockRouter struct {
	fetchRouteFn func(ctx context.Context, waypoints []domain.GeoPoint) (domain.RouteGeometry, error)
}

func (m *mockRouter) FetchRoute(ctx context.Context, waypoints []domain.GeoPoint) (domain.RouteGeometry, error) {
	if m.fetchRouteFn != nil {
		return m.fetchRouteFn(ctx, waypoints)
	}
	return nil, nil
}

type mockGeocoder struct {
	reverseFn func(ctx context.Context, p domain.GeoPoint) (domain.Address, error)
}

func (m *mockGeocoder) Reverse(ctx context.Context, p domain.GeoPoint) (domain.Address, error) {
	if m.reverseFn != nil {
		return m.reverseFn(ctx, p)
	}
	return domain.Address{Road: "Main Street"}, nil
}

// testRegion is a box around Potheri wide enough for all fixture points.
var testRegion = domain.Region{
	{Lat: 12.80, Lon: 80.00},
	{Lat: 12.90, Lon: 80.00},
	{Lat: 12.90, Lon: 80.10},
	{Lat: 12.80, Lon: 80.10},
}

func onRoad() *mockGeocoder {
	return &mockGeocoder{reverseFn: func(ctx context.Context, p domain.GeoPoint) (domain.Address, error) {
		return domain.Address{Road: "GST Road"}, nil
	}}
}

// --- Tests ---

func TestSuggestBins_MinimumSpacing(t *testing.T) {
	// Points ~111m apart along a meridian: every other one must be rejected.
	geometry := domain.RouteGeometry{
		{Lat: 12.850, Lon: 80.05},
		{Lat: 12.851, Lon: 80.05},
		{Lat: 12.852, Lon: 80.05},
		{Lat: 12.853, Lon: 80.05},
		{Lat: 12.854, Lon: 80.05},
	}
	router := &mockRouter{fetchRouteFn: func(ctx context.Context, w []domain.GeoPoint) (domain.RouteGeometry, error) {
		return geometry, nil
	}}

	svc := usecases.NewPlacementService(router, onRoad(), 0)
	candidates, err := svc.SuggestBins(context.Background(), testRegion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accepted := usecases.Accepted(candidates)
	for i := 1; i < len(accepted); i++ {
		d := geospatial.Distance(accepted[i-1], accepted[i])
		if d < 200 {
			t.Errorf("accepted candidates %d and %d only %.0fm apart", i-1, i, d)
		}
	}
	if len(accepted) != 3 {
		t.Errorf("expected 3 accepted candidates (0, 2, 4), got %d", len(accepted))
	}
}

func TestSuggestBins_RejectsWater(t *testing.T) {
	router := &mockRouter{fetchRouteFn: func(ctx context.Context, w []domain.GeoPoint) (domain.RouteGeometry, error) {
		return domain.RouteGeometry{{Lat: 12.85, Lon: 80.05}, {Lat: 12.86, Lon: 80.05}}, nil
	}}
	geocoder := &mockGeocoder{reverseFn: func(ctx context.Context, p domain.GeoPoint) (domain.Address, error) {
		if p.Lat == 12.85 {
			return domain.Address{Waterway: "canal", Road: "Bridge Road"}, nil
		}
		return domain.Address{Road: "Bridge Road"}, nil
	}}

	svc := usecases.NewPlacementService(router, geocoder, 0)
	candidates, err := svc.SuggestBins(context.Background(), testRegion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, c := range candidates {
		if c.Accepted && c.Location.Lat == 12.85 {
			t.Error("water-tagged point was accepted")
		}
	}
	if candidates[0].Reason != domain.RejectWater {
		t.Errorf("expected reason %q, got %q", domain.RejectWater, candidates[0].Reason)
	}
	if !candidates[1].Accepted {
		t.Error("road point should have been accepted")
	}
}

func TestSuggestBins_RejectsNonRoad(t *testing.T) {
	router := &mockRouter{fetchRouteFn: func(ctx context.Context, w []domain.GeoPoint) (domain.RouteGeometry, error) {
		return domain.RouteGeometry{{Lat: 12.85, Lon: 80.05}}, nil
	}}
	geocoder := &mockGeocoder{reverseFn: func(ctx context.Context, p domain.GeoPoint) (domain.Address, error) {
		return domain.Address{DisplayName: "open field"}, nil
	}}

	svc := usecases.NewPlacementService(router, geocoder, 0)
	candidates, err := svc.SuggestBins(context.Background(), testRegion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates[0].Accepted || candidates[0].Reason != domain.RejectNotOnRoad {
		t.Errorf("expected not_on_road rejection, got %+v", candidates[0])
	}
}

func TestSuggestBins_RejectsOutsideRegion(t *testing.T) {
	router := &mockRouter{fetchRouteFn: func(ctx context.Context, w []domain.GeoPoint) (domain.RouteGeometry, error) {
		return domain.RouteGeometry{{Lat: 13.50, Lon: 80.05}}, nil
	}}

	geocoded := false
	geocoder := &mockGeocoder{reverseFn: func(ctx context.Context, p domain.GeoPoint) (domain.Address, error) {
		geocoded = true
		return domain.Address{Road: "somewhere"}, nil
	}}

	svc := usecases.NewPlacementService(router, geocoder, 0)
	candidates, err := svc.SuggestBins(context.Background(), testRegion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates[0].Accepted || candidates[0].Reason != domain.RejectOutsideRegion {
		t.Errorf("expected outside_region rejection, got %+v", candidates[0])
	}
	if geocoded {
		t.Error("out-of-bounds point must not be reverse-geocoded")
	}
}

func TestSuggestBins_EmptyRouteIsNotAnError(t *testing.T) {
	router := &mockRouter{fetchRouteFn: func(ctx context.Context, w []domain.GeoPoint) (domain.RouteGeometry, error) {
		return domain.RouteGeometry{}, nil
	}}

	svc := usecases.NewPlacementService(router, onRoad(), 0)
	candidates, err := svc.SuggestBins(context.Background(), testRegion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestSuggestBins_PropagatesRouteUnavailable(t *testing.T) {
	router := &mockRouter{fetchRouteFn: func(ctx context.Context, w []domain.GeoPoint) (domain.RouteGeometry, error) {
		// Degenerate request: identical start and end waypoints.
		if len(w) == 2 && w[0] == w[1] {
			return nil, domain.ErrRouteUnavailable
		}
		return domain.RouteGeometry{}, nil
	}}

	svc := usecases.NewPlacementService(router, onRoad(), 0)
	degenerate := domain.Region{{Lat: 13.0, Lon: 80.2}, {Lat: 13.0, Lon: 80.2}}

	candidates, err := svc.SuggestBins(context.Background(), degenerate)
	if !errors.Is(err, domain.ErrRouteUnavailable) {
		t.Fatalf("expected ErrRouteUnavailable, got %v", err)
	}
	if candidates != nil {
		t.Error("no partial results expected on routing failure")
	}
}

func TestSuggestBins_LookupFailureRejectsOnlyThatPoint(t *testing.T) {
	router := &mockRouter{fetchRouteFn: func(ctx context.Context, w []domain.GeoPoint) (domain.RouteGeometry, error) {
		return domain.RouteGeometry{
			{Lat: 12.850, Lon: 80.05},
			{Lat: 12.853, Lon: 80.05},
		}, nil
	}}
	geocoder := &mockGeocoder{reverseFn: func(ctx context.Context, p domain.GeoPoint) (domain.Address, error) {
		if p.Lat == 12.850 {
			return domain.Address{}, fmt.Errorf("geocoder: 503")
		}
		return domain.Address{Road: "GST Road"}, nil
	}}

	svc := usecases.NewPlacementService(router, geocoder, time.Second)
	candidates, err := svc.SuggestBins(context.Background(), testRegion)
	if err != nil {
		t.Fatalf("lookup failure must not abort the batch: %v", err)
	}

	if candidates[0].Accepted || candidates[0].Reason != domain.RejectLookupFailed {
		t.Errorf("expected lookup_failed rejection, got %+v", candidates[0])
	}
	if !candidates[1].Accepted {
		t.Error("second candidate should survive the first one's lookup failure")
	}
}

func TestSuggestBins_UsesFirstAndLastVertexAsWaypoints(t *testing.T) {
	var got []domain.GeoPoint
	router := &mockRouter{fetchRouteFn: func(ctx context.Context, w []domain.GeoPoint) (domain.RouteGeometry, error) {
		got = w
		return domain.RouteGeometry{}, nil
	}}

	svc := usecases.NewPlacementService(router, onRoad(), 0)
	if _, err := svc.SuggestBins(context.Background(), testRegion); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 waypoints, got %d", len(got))
	}
	if got[0] != testRegion[0] || got[1] != testRegion[len(testRegion)-1] {
		t.Errorf("expected first and last region vertices, got %+v", got)
	}
}
