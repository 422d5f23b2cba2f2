package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/binroute/internal/core/domain"
	"github.com/samirrijal/binroute/internal/core/usecases"
	"github.com/samirrijal/binroute/internal/pkg/metrics"
)

// ListBinsHandler returns all bins.
func ListBinsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bins, err := deps.Bins.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		if bins == nil {
			bins = []domain.Bin{}
		}
		return c.JSON(bins)
	}
}

// NextBinNameHandler returns the next sequential bin name.
func NextBinNameHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := deps.Bins.NextName(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(fiber.Map{"nextBinName": name})
	}
}

type addBinRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
}

// AddBinHandler creates a bin at the given location.
func AddBinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addBinRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.Name) == "" {
			return errBadRequest(c, "name is required")
		}

		addedBy := ""
		if sess := SessionFromCtx(c); sess != nil {
			addedBy = sess.Username
		}

		loc := domain.GeoPoint{Lat: req.Latitude, Lon: req.Longitude}
		if _, err := deps.Bins.Add(c.Context(), loc, req.Name, addedBy); err != nil {
			return errInternal(c, err.Error())
		}

		metrics.BinsAdded.Inc()
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Bin added successfully",
		})
	}
}

type markBinFullRequest struct {
	BinName string `json:"binName"`
}

// MarkBinFullHandler flags a bin as full by name.
func MarkBinFullHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req markBinFullRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.BinName) == "" {
			return errBadRequest(c, "binName is required")
		}

		if err := deps.Bins.MarkFull(c.Context(), req.BinName); err != nil {
			if errors.Is(err, domain.ErrBinNotFound) {
				return errNotFound(c, "bin not found: "+req.BinName)
			}
			return errInternal(c, err.Error())
		}

		metrics.BinsMarkedFull.Inc()
		return c.JSON(fiber.Map{"success": true})
	}
}

type suggestBinsRequest struct {
	Coordinates []domain.GeoPoint `json:"coordinates"`
}

type suggestedBin struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SuggestBinsHandler runs the placement filter over a road route through
// the submitted region and returns the accepted candidate locations.
func SuggestBinsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req suggestBinsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Coordinates) == 0 {
			return errBadRequest(c, "coordinates are required")
		}

		metrics.SuggestionRequests.Inc()

		candidates, err := deps.Placement.SuggestBins(c.Context(), domain.Region(req.Coordinates))
		if err != nil {
			var ue *domain.UpstreamError
			if errors.Is(err, domain.ErrRouteUnavailable) || errors.As(err, &ue) {
				return c.Status(500).JSON(fiber.Map{"error": "Failed to suggest bins along the road"})
			}
			return errInternal(c, err.Error())
		}

		for _, cand := range candidates {
			metrics.CandidatesEvaluated.Inc()
			if !cand.Accepted {
				metrics.CandidatesRejected.WithLabelValues(cand.Reason).Inc()
			}
		}

		accepted := usecases.Accepted(candidates)
		suggested := make([]suggestedBin, 0, len(accepted))
		for _, p := range accepted {
			suggested = append(suggested, suggestedBin{Latitude: p.Lat, Longitude: p.Lon})
		}

		return c.JSON(fiber.Map{"suggestedBins": suggested})
	}
}
