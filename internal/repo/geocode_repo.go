// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file stores resolved place names so the in-memory
// geocode cache can be warmed across restarts.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/telemacher/internal/domain"
)

// GetGeocode loads the coordinate stored for the exact query string, or
// ErrNotFound.
func GetGeocode(ctx context.Context, db *gorm.DB, query string) (domain.Coordinate, error) {
	var row domain.GeocodeEntry
	err := db.WithContext(ctx).Where("query = ?", query).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Coordinate{}, ErrNotFound
	}
	if err != nil {
		return domain.Coordinate{}, err
	}
	return row.Coordinate(), nil
}

// PutGeocode inserts or replaces the coordinate for query.
func PutGeocode(ctx context.Context, db *gorm.DB, query string, c domain.Coordinate) error {
	row := &domain.GeocodeEntry{Query: query, Lat: c.Lat, Lng: c.Lng}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "query"}},
			DoUpdates: clause.AssignmentColumns([]string{"lat", "lng"}),
		}).
		Create(row).Error
}
