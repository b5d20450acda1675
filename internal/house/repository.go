package house

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nerrad567/smarthome-core/internal/geo"
)

// Directory lists houses.
type Directory interface {
	// FindAll returns every house in creation order. An empty result is not an error.
	FindAll(ctx context.Context) ([]House, error)
}

// First returns the first house from dir, or ErrNoHouseConfigured.
func First(ctx context.Context, dir Directory) (*House, error) {
	houses, err := dir.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(houses) == 0 {
		return nil, ErrNoHouseConfigured
	}
	return &houses[0], nil
}

// SQLiteRepository implements Directory using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed house directory.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// FindAll returns every house ordered by creation time then ID.
func (r *SQLiteRepository) FindAll(ctx context.Context) ([]House, error) {
	const query = `SELECT id, name, address, latitude, longitude
		FROM houses ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying houses: %w", err)
	}
	defer rows.Close()

	houses := []House{}
	for rows.Next() {
		var h House
		var address sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&h.ID, &h.Name, &address, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scanning house: %w", err)
		}
		if lat.Valid && lon.Valid {
			h.Location = &Location{
				Address:    address.String,
				Coordinate: geo.Coordinate{Latitude: lat.Float64, Longitude: lon.Float64},
			}
		}
		houses = append(houses, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating houses: %w", err)
	}
	return houses, nil
}

// Save inserts or updates a house. A nil Location clears the stored one.
func (r *SQLiteRepository) Save(ctx context.Context, h *House) error {
	if err := h.Validate(); err != nil {
		return err
	}

	var address sql.NullString
	var lat, lon sql.NullFloat64
	if h.Location != nil {
		address = sql.NullString{String: h.Location.Address, Valid: true}
		lat = sql.NullFloat64{Float64: h.Location.Coordinate.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: h.Location.Coordinate.Longitude, Valid: true}
	}

	const query = `INSERT INTO houses (id, name, address, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			latitude = excluded.latitude,
			longitude = excluded.longitude`
	if _, err := r.db.ExecContext(ctx, query, h.ID, h.Name, address, lat, lon); err != nil {
		return fmt.Errorf("saving house %s: %w", h.ID, err)
	}
	return nil
}
