package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/binroute/internal/core/domain"
	"github.com/samirrijal/binroute/internal/core/usecases"
)

// --- Mock BinRepository ---

type mockBinRepo struct {
	createFn    func(ctx context.Context, bin *domain.Bin) error
	listFn      func(ctx context.Context) ([]domain.Bin, error)
	countFn     func(ctx context.Context) (int, error)
	getByNameFn func(ctx context.Context, name string) (*domain.Bin, error)
	setStatusFn func(ctx context.Context, name, status string) error
}

func (m *mockBinRepo) Create(ctx context.Context, bin *domain.Bin) error {
	if m.createFn != nil {
		return m.createFn(ctx, bin)
	}
	return nil
}

func (m *mockBinRepo) List(ctx context.Context) ([]domain.Bin, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockBinRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockBinRepo) GetByName(ctx context.Context, name string) (*domain.Bin, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, domain.ErrBinNotFound
}

func (m *mockBinRepo) SetStatus(ctx context.Context, name, status string) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, name, status)
	}
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	added []string
	full  []string
}

func (m *mockPublisher) PublishBinAdded(ctx context.Context, bin *domain.Bin) error {
	m.added = append(m.added, bin.Name)
	return nil
}

func (m *mockPublisher) PublishBinFull(ctx context.Context, bin *domain.Bin) error {
	m.full = append(m.full, bin.Name)
	return nil
}

// --- Tests ---

func TestBinService_NextName(t *testing.T) {
	repo := &mockBinRepo{countFn: func(ctx context.Context) (int, error) { return 4, nil }}
	svc := usecases.NewBinService(repo, nil)

	name, err := svc.NextName(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "bin 5" {
		t.Errorf("expected 'bin 5', got %q", name)
	}
}

func TestBinService_NextName_RaceYieldsDuplicates(t *testing.T) {
	// Two callers observing the same count legitimately get the same name.
	repo := &mockBinRepo{countFn: func(ctx context.Context) (int, error) { return 7, nil }}
	svc := usecases.NewBinService(repo, nil)

	a, _ := svc.NextName(context.Background())
	b, _ := svc.NextName(context.Background())
	if a != b {
		t.Errorf("expected identical names from equal counts, got %q and %q", a, b)
	}
}

func TestBinService_Add(t *testing.T) {
	var created *domain.Bin
	repo := &mockBinRepo{createFn: func(ctx context.Context, bin *domain.Bin) error {
		created = bin
		return nil
	}}
	pub := &mockPublisher{}
	svc := usecases.NewBinService(repo, pub)

	bin, err := svc.Add(context.Background(), domain.GeoPoint{Lat: 12.8, Lon: 80.0}, "bin 1", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("repo.Create was not called")
	}
	if bin.Status != domain.BinStatusNormal {
		t.Errorf("new bins must start normal, got %q", bin.Status)
	}
	if bin.Location.Lat != 12.8 || bin.Location.Lon != 80.0 {
		t.Errorf("unexpected location %+v", bin.Location)
	}
	if len(pub.added) != 1 || pub.added[0] != "bin 1" {
		t.Errorf("expected one bin-added event for 'bin 1', got %v", pub.added)
	}
}

func TestBinService_Add_EmptyName(t *testing.T) {
	svc := usecases.NewBinService(&mockBinRepo{}, nil)
	if _, err := svc.Add(context.Background(), domain.GeoPoint{}, "", "admin"); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestBinService_MarkFull(t *testing.T) {
	var gotName, gotStatus string
	repo := &mockBinRepo{
		getByNameFn: func(ctx context.Context, name string) (*domain.Bin, error) {
			return &domain.Bin{Name: name, Status: domain.BinStatusNormal}, nil
		},
		setStatusFn: func(ctx context.Context, name, status string) error {
			gotName, gotStatus = name, status
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewBinService(repo, pub)

	if err := svc.MarkFull(context.Background(), "bin 2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotName != "bin 2" || gotStatus != domain.BinStatusFull {
		t.Errorf("expected bin 2 → full, got %q → %q", gotName, gotStatus)
	}
	if len(pub.full) != 1 {
		t.Errorf("expected one bin-full event, got %v", pub.full)
	}
}

func TestBinService_MarkFull_UnknownBin(t *testing.T) {
	svc := usecases.NewBinService(&mockBinRepo{}, nil)
	err := svc.MarkFull(context.Background(), "bin 99")
	if !errors.Is(err, domain.ErrBinNotFound) {
		t.Errorf("expected ErrBinNotFound, got %v", err)
	}
}
