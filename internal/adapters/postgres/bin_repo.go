package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/binroute/internal/core/domain"
)

// BinRepo implements ports.BinRepository with pgx. Operations run without
// explicit transactions; the count-then-insert race around sequential names
// is accepted behavior.
type BinRepo struct {
	db *DB
}

// NewBinRepo creates a new BinRepo.
func NewBinRepo(db *DB) *BinRepo {
	return &BinRepo{db: db}
}

// Create inserts a new bin.
func (r *BinRepo) Create(ctx context.Context, b *domain.Bin) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO bins (name, location, status, added_by)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, $5)
		RETURNING id, created_at
	`, b.Name, b.Location.Lon, b.Location.Lat, b.Status, b.AddedBy).
		Scan(&b.ID, &b.CreatedAt)
}

// List returns every bin, oldest first.
func (r *BinRepo) List(ctx context.Context) ([]domain.Bin, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       status, COALESCE(added_by, ''), created_at
		FROM bins
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bins []domain.Bin
	for rows.Next() {
		var b domain.Bin
		if err := rows.Scan(
			&b.ID, &b.Name,
			&b.Location.Lat, &b.Location.Lon,
			&b.Status, &b.AddedBy, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		bins = append(bins, b)
	}
	return bins, rows.Err()
}

// Count returns the current number of bins.
func (r *BinRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM bins`).Scan(&count)
	return count, err
}

// GetByName returns the oldest bin with the given name. Names are not
// unique by construction, so ties resolve to the first created.
func (r *BinRepo) GetByName(ctx context.Context, name string) (*domain.Bin, error) {
	var b domain.Bin
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       status, COALESCE(added_by, ''), created_at
		FROM bins WHERE name = $1
		ORDER BY created_at
		LIMIT 1
	`, name).Scan(
		&b.ID, &b.Name,
		&b.Location.Lat, &b.Location.Lon,
		&b.Status, &b.AddedBy, &b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBinNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SetStatus updates the status of one bin by name.
func (r *BinRepo) SetStatus(ctx context.Context, name, status string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE bins SET status = $2
		WHERE id = (SELECT id FROM bins WHERE name = $1 ORDER BY created_at LIMIT 1)
	`, name, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBinNotFound
	}
	return nil
}
