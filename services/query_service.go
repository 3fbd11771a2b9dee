package services

import (
	"context"

	"crypto_stats_backend/models"
	"crypto_stats_backend/services/analysis"
	"crypto_stats_backend/services/store"
)

// DeviationWindow is the number of most recent price samples the deviation
// statistic is computed over.
const DeviationWindow = 100

// Snapshot is the latest recorded market state for one coin
type Snapshot struct {
	Price     float64 `json:"price"`
	MarketCap float64 `json:"marketCap"`
	Change24h float64 `json:"24hChange"`
}

// QueryService exposes the read path: latest snapshot and price deviation,
// composed from the observation store and the statistics helpers.
type QueryService struct {
	store store.ObservationStore
}

// NewQueryService creates a new query service
func NewQueryService(observationStore store.ObservationStore) *QueryService {
	return &QueryService{store: observationStore}
}

// GetSnapshot returns the most recently stored price, market cap and 24h
// change for the coin. Returns store.ErrNoObservations when nothing has been
// recorded yet.
func (qs *QueryService) GetSnapshot(ctx context.Context, coin models.Coin) (*Snapshot, error) {
	obs, err := qs.store.Latest(ctx, coin)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Price:     obs.PriceUSD.InexactFloat64(),
		MarketCap: obs.MarketCapUSD.InexactFloat64(),
		Change24h: obs.Change24hPercent.InexactFloat64(),
	}, nil
}

// GetDeviation returns the population standard deviation of the most recent
// DeviationWindow prices, rounded to 2 decimals. Returns
// store.ErrNoObservations when nothing has been recorded yet; past that
// guard the sample set is non-empty, so the statistics engine cannot fail.
func (qs *QueryService) GetDeviation(ctx context.Context, coin models.Coin) (float64, error) {
	observations, err := qs.store.Recent(ctx, coin, DeviationWindow)
	if err != nil {
		return 0, err
	}
	if len(observations) == 0 {
		return 0, store.ErrNoObservations
	}

	prices := make([]float64, 0, len(observations))
	for _, obs := range observations {
		prices = append(prices, obs.PriceUSD.InexactFloat64())
	}

	deviation, err := analysis.PopulationStdDev(prices)
	if err != nil {
		return 0, err
	}
	return analysis.Round2(deviation), nil
}
