package geocode

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/telemacher/internal/domain"
	"github.com/tbourn/telemacher/internal/repo"
)

// DBStore persists geocode results in the geocode_entries table.
type DBStore struct {
	DB *gorm.DB
}

func (s DBStore) Get(ctx context.Context, query string) (domain.Coordinate, error) {
	coord, err := repo.GetGeocode(ctx, s.DB, query)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Coordinate{}, ErrNotStored
	}
	return coord, err
}

func (s DBStore) Put(ctx context.Context, query string, c domain.Coordinate) error {
	return repo.PutGeocode(ctx, s.DB, query, c)
}
