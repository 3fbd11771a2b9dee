package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crypto_stats_backend/models"
	"gorm.io/gorm"
)

// GormStore persists observations through gorm (Postgres in production,
// sqlite in package tests).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new gorm-backed observation store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Append persists one observation. Each insert is a single atomic row write.
func (s *GormStore) Append(ctx context.Context, obs *models.Observation) error {
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(obs).Error; err != nil {
		return fmt.Errorf("failed to persist observation for %s: %w", obs.CoinID, err)
	}
	return nil
}

// Latest returns the most recently observed record for the coin. Ties on
// observed_at go to the later insertion (higher id).
func (s *GormStore) Latest(ctx context.Context, coin models.Coin) (*models.Observation, error) {
	var obs models.Observation
	err := s.db.WithContext(ctx).
		Where("coin_id = ?", string(coin)).
		Order("observed_at DESC, id DESC").
		First(&obs).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoObservations
		}
		return nil, fmt.Errorf("failed to fetch latest observation for %s: %w", coin, err)
	}
	return &obs, nil
}

// Recent returns up to limit observations for the coin, newest first.
func (s *GormStore) Recent(ctx context.Context, coin models.Coin, limit int) ([]models.Observation, error) {
	var observations []models.Observation
	err := s.db.WithContext(ctx).
		Where("coin_id = ?", string(coin)).
		Order("observed_at DESC, id DESC").
		Limit(limit).
		Find(&observations).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent observations for %s: %w", coin, err)
	}
	return observations, nil
}
