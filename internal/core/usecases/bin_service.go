package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/binroute/internal/core/domain"
	"github.com/samirrijal/binroute/internal/core/ports"
)

// BinService handles bin lifecycle operations.
type BinService struct {
	bins      ports.BinRepository
	publisher ports.EventPublisher
}

// NewBinService creates a new BinService. publisher may be nil when no
// broker is available; events are then skipped.
func NewBinService(bins ports.BinRepository, publisher ports.EventPublisher) *BinService {
	return &BinService{bins: bins, publisher: publisher}
}

// List returns every bin. There is deliberately no caching here: each map
// load re-reads the table.
func (s *BinService) List(ctx context.Context) ([]domain.Bin, error) {
	return s.bins.List(ctx)
}

// NextName derives the next sequential bin name from the current row count.
// Count and the later insert are not atomic: two concurrent callers can
// observe the same count and produce the same name. That race is accepted.
func (s *BinService) NextName(ctx context.Context) (string, error) {
	count, err := s.bins.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("count bins: %w", err)
	}
	return fmt.Sprintf("bin %d", count+1), nil
}

// Add persists a new bin with status normal and publishes a bin-added event.
func (s *BinService) Add(ctx context.Context, location domain.GeoPoint, name, addedBy string) (*domain.Bin, error) {
	if name == "" {
		return nil, fmt.Errorf("bin name must not be empty")
	}

	bin := &domain.Bin{
		Name:     name,
		Location: location,
		Status:   domain.BinStatusNormal,
		AddedBy:  addedBy,
	}
	if err := s.bins.Create(ctx, bin); err != nil {
		return nil, fmt.Errorf("create bin: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishBinAdded(ctx, bin); err != nil {
			slog.Warn("publish bin added failed", "bin", bin.Name, "error", err)
		}
	}

	return bin, nil
}

// MarkFull transitions exactly one bin, by name, to status full and
// publishes a bin-full event. Previously full bins keep their persisted
// status; un-marking is a presentation concern.
func (s *BinService) MarkFull(ctx context.Context, name string) error {
	bin, err := s.bins.GetByName(ctx, name)
	if err != nil {
		return err
	}

	if err := s.bins.SetStatus(ctx, bin.Name, domain.BinStatusFull); err != nil {
		return fmt.Errorf("mark bin full: %w", err)
	}
	bin.Status = domain.BinStatusFull

	if s.publisher != nil {
		if err := s.publisher.PublishBinFull(ctx, bin); err != nil {
			slog.Warn("publish bin full failed", "bin", bin.Name, "error", err)
		}
	}

	return nil
}
