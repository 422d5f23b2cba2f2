// Package ors wraps the OpenRouteService directions API.
package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/samirrijal/binroute/internal/core/domain"
	"github.com/samirrijal/binroute/internal/pkg/metrics"
)

// Format selects the response mode of the directions API.
type Format string

const (
	// FormatGeoJSON returns inline [lon,lat] coordinate lists.
	FormatGeoJSON Format = "geojson"
	// FormatJSON returns an encoded polyline geometry.
	FormatJSON Format = "json"
)

// Client implements ports.RoutingService against OpenRouteService.
// It issues exactly one request per FetchRoute call and never retries.
type Client struct {
	apiKey     string
	baseURL    string
	profile    string
	format     Format
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host (used by tests).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithFormat selects the response mode.
func WithFormat(f Format) Option {
	return func(c *Client) { c.format = f }
}

// WithProfile selects the routing profile (default driving-car).
func WithProfile(p string) Option {
	return func(c *Client) { c.profile = p }
}

// WithTimeout bounds each outbound request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a directions client. The API key comes from
// configuration; it is never embedded in source.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
		format:  FormatGeoJSON,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

// geojsonResponse is the /geojson response mode: inline coordinates.
type geojsonResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// jsonResponse is the plain response mode: encoded polyline geometry.
type jsonResponse struct {
	Routes []struct {
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// FetchRoute requests a driving route through the given waypoints and
// decodes the returned geometry into (lat,lon) order. ORS speaks (lon,lat),
// so coordinates are swapped on the way out and back.
func (c *Client) FetchRoute(ctx context.Context, waypoints []domain.GeoPoint) (domain.RouteGeometry, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("need at least 2 waypoints, got %d", len(waypoints))
	}

	coords := make([][2]float64, len(waypoints))
	for i, w := range waypoints {
		coords[i] = [2]float64{w.Lon, w.Lat}
	}

	body, err := json.Marshal(directionsRequest{Coordinates: coords})
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/directions/%s", c.baseURL, c.profile)
	if c.format == FormatGeoJSON {
		url += "/geojson"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build directions request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RoutingRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RoutingErrors.Inc()
		return nil, &domain.UpstreamError{Service: "routing", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RoutingErrors.Inc()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.UpstreamError{
			Service: "routing",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, msg),
		}
	}

	if c.format == FormatGeoJSON {
		return decodeGeoJSON(resp.Body)
	}
	return decodeJSON(resp.Body)
}

func decodeGeoJSON(r io.Reader) (domain.RouteGeometry, error) {
	var body geojsonResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, &domain.UpstreamError{Service: "routing", Err: fmt.Errorf("decode geojson: %w", err)}
	}
	if len(body.Features) == 0 {
		return nil, domain.ErrRouteUnavailable
	}

	coords := body.Features[0].Geometry.Coordinates
	geometry := make(domain.RouteGeometry, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		geometry = append(geometry, domain.GeoPoint{Lat: c[1], Lon: c[0]})
	}
	return geometry, nil
}

func decodeJSON(r io.Reader) (domain.RouteGeometry, error) {
	var body jsonResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, &domain.UpstreamError{Service: "routing", Err: fmt.Errorf("decode json: %w", err)}
	}
	if len(body.Routes) == 0 {
		return nil, domain.ErrRouteUnavailable
	}

	// ORS encodes polylines in (lat,lon) order already.
	coords, _, err := polyline.DecodeCoords([]byte(body.Routes[0].Geometry))
	if err != nil {
		return nil, &domain.UpstreamError{Service: "routing", Err: fmt.Errorf("decode polyline: %w", err)}
	}

	geometry := make(domain.RouteGeometry, 0, len(coords))
	for _, c := range coords {
		geometry = append(geometry, domain.GeoPoint{Lat: c[0], Lon: c[1]})
	}
	return geometry, nil
}
