// Package nominatim wraps the OSM Nominatim reverse-geocoding API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samirrijal/binroute/internal/core/domain"
	"github.com/samirrijal/binroute/internal/pkg/metrics"
)

// Client implements ports.ReverseGeocoder. Lookups are issued one at a
// time by the caller; the client itself holds no state beyond the HTTP
// client and never retries.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a reverse-geocoding client. Nominatim's usage policy
// requires an identifying User-Agent, so userAgent must not be empty.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road     string `json:"road"`
		Waterway string `json:"waterway"`
		River    string `json:"river"`
		Lake     string `json:"lake"`
	} `json:"address"`
}

// Reverse maps a coordinate to its nearest address tags.
func (c *Client) Reverse(ctx context.Context, point domain.GeoPoint) (domain.Address, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(point.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(point.Lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return domain.Address{}, fmt.Errorf("build reverse request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	metrics.GeocodeLookups.Inc()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.GeocodeErrors.Inc()
		return domain.Address{}, &domain.UpstreamError{Service: "geocoding", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.GeocodeErrors.Inc()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Address{}, &domain.UpstreamError{
			Service: "geocoding",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, msg),
		}
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.GeocodeErrors.Inc()
		return domain.Address{}, &domain.UpstreamError{Service: "geocoding", Err: fmt.Errorf("decode reverse response: %w", err)}
	}

	return domain.Address{
		Road:        body.Address.Road,
		Waterway:    body.Address.Waterway,
		River:       body.Address.River,
		Lake:        body.Address.Lake,
		DisplayName: body.DisplayName,
	}, nil
}
