package house

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/smarthome-core/internal/geo"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database/databasetest"
)

func TestSQLiteRepository_FindAll(t *testing.T) {
	db := databasetest.Open(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()

	houses, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(houses) != 0 {
		t.Fatalf("FindAll() on empty db returned %d houses", len(houses))
	}

	located := House{
		ID:   "house-a",
		Name: "Main",
		Location: &Location{
			Address:    "Grote Markt 1, Brussels",
			Coordinate: geo.Coordinate{Latitude: 50.8467, Longitude: 4.3525},
		},
	}
	bare := House{ID: "house-b", Name: "Cabin"}
	for _, h := range []*House{&located, &bare} {
		if err := repo.Save(ctx, h); err != nil {
			t.Fatalf("Save(%s) error = %v", h.ID, err)
		}
	}

	houses, err = repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(houses) != 2 {
		t.Fatalf("FindAll() returned %d houses, want 2", len(houses))
	}
	if houses[0].Location == nil {
		t.Fatal("house-a should have a location")
	}
	if houses[0].Location.Coordinate.Latitude != 50.8467 {
		t.Errorf("Latitude = %v, want 50.8467", houses[0].Location.Coordinate.Latitude)
	}
	if houses[1].Location != nil {
		t.Errorf("house-b Location = %+v, want nil", houses[1].Location)
	}
}

func TestSQLiteRepository_Save_ClearsLocation(t *testing.T) {
	db := databasetest.Open(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()

	h := House{ID: "house-a", Location: &Location{Address: "x", Coordinate: geo.Coordinate{Latitude: 1, Longitude: 2}}}
	if err := repo.Save(ctx, &h); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	h.Location = nil
	if err := repo.Save(ctx, &h); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := First(ctx, repo)
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if got.Location != nil {
		t.Errorf("Location = %+v, want nil after clearing", got.Location)
	}
}

func TestSQLiteRepository_Save_Validation(t *testing.T) {
	db := databasetest.Open(t)
	repo := NewSQLiteRepository(db.DB)

	tests := []struct {
		name  string
		house House
	}{
		{"missing id", House{}},
		{"bad latitude", House{ID: "h", Location: &Location{Coordinate: geo.Coordinate{Latitude: 91}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Save(context.Background(), &tt.house)
			if !errors.Is(err, ErrInvalidHouse) {
				t.Errorf("Save() error = %v, want ErrInvalidHouse", err)
			}
		})
	}
}

func TestFirst_NoHouse(t *testing.T) {
	db := databasetest.Open(t)
	_, err := First(context.Background(), NewSQLiteRepository(db.DB))
	if !errors.Is(err, ErrNoHouseConfigured) {
		t.Errorf("First() error = %v, want ErrNoHouseConfigured", err)
	}
}
