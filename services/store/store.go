package store

import (
	"context"
	"errors"

	"crypto_stats_backend/models"
)

// ErrNoObservations indicates no records exist yet for the requested coin.
var ErrNoObservations = errors.New("no observations recorded for coin")

// ObservationStore is the append-only persistence layer for price samples.
// Append assigns ObservedAt at write time when the caller left it zero.
// Latest returns ErrNoObservations on an empty history; Recent returns an
// empty slice instead of an error.
type ObservationStore interface {
	Append(ctx context.Context, obs *models.Observation) error
	Latest(ctx context.Context, coin models.Coin) (*models.Observation, error)
	Recent(ctx context.Context, coin models.Coin, limit int) ([]models.Observation, error)
}
