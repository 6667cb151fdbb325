// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file records the conversation transcript: one row per
// dispatched chat action together with the reply that was sent.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/telemacher/internal/domain"
)

// CreateExchange appends a transcript row for userID.
func CreateExchange(ctx context.Context, db *gorm.DB, userID uint64, kind, text, reply string) (*domain.Exchange, error) {
	e := &domain.Exchange{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Text:      text,
		Reply:     reply,
		CreatedAt: time.Now().UTC(),
	}
	return e, db.WithContext(ctx).Create(e).Error
}

// ListExchanges returns the most recent exchanges for userID, newest last.
// A limit <= 0 returns the whole history.
func ListExchanges(ctx context.Context, db *gorm.DB, userID uint64, limit int) ([]domain.Exchange, error) {
	var out []domain.Exchange
	q := db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// CountExchanges uses a raw COUNT so a missing table surfaces as an error.
func CountExchanges(ctx context.Context, db *gorm.DB, userID uint64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM exchanges WHERE user_id = ?", userID).Scan(&total).Error
	return total, err
}
