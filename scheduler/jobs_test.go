package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"crypto_stats_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	failing map[models.Coin]error
	fetched []models.Coin
}

func (f *fakeFetcher) FetchQuote(ctx context.Context, coin models.Coin) (*models.Observation, error) {
	f.fetched = append(f.fetched, coin)
	if err, ok := f.failing[coin]; ok {
		return nil, err
	}
	return &models.Observation{
		CoinID:   string(coin),
		PriceUSD: decimal.NewFromInt(100),
	}, nil
}

type fakeStore struct {
	appended  []models.Observation
	appendErr map[models.Coin]error
}

func (f *fakeStore) Append(ctx context.Context, obs *models.Observation) error {
	if err, ok := f.appendErr[models.Coin(obs.CoinID)]; ok {
		return err
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}
	f.appended = append(f.appended, *obs)
	return nil
}

func (f *fakeStore) Latest(ctx context.Context, coin models.Coin) (*models.Observation, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) Recent(ctx context.Context, coin models.Coin, limit int) ([]models.Observation, error) {
	return nil, errors.New("not implemented")
}

func TestIngest_StoresOneObservationPerCoin(t *testing.T) {
	fetcher := &fakeFetcher{}
	st := &fakeStore{}
	coins := models.DefaultTrackedCoins()

	s := NewScheduler(fetcher, st, coins, 2*time.Hour)
	s.ingestObservations()

	require.Len(t, st.appended, len(coins))
	for i, coin := range coins {
		assert.Equal(t, string(coin), st.appended[i].CoinID)
	}
}

func TestIngest_FetchesCoinsInStableOrder(t *testing.T) {
	fetcher := &fakeFetcher{}
	st := &fakeStore{}
	coins := []models.Coin{models.CoinMatic, models.CoinBitcoin, models.CoinEthereum}

	s := NewScheduler(fetcher, st, coins, 2*time.Hour)
	s.ingestObservations()

	assert.Equal(t, coins, fetcher.fetched)
}

func TestIngest_OneFetchFailureDoesNotAbortBatch(t *testing.T) {
	fetcher := &fakeFetcher{
		failing: map[models.Coin]error{
			models.CoinBitcoin: errors.New("provider timeout"),
		},
	}
	st := &fakeStore{}
	coins := []models.Coin{models.CoinBitcoin, models.CoinEthereum, models.CoinMatic}

	s := NewScheduler(fetcher, st, coins, 2*time.Hour)
	s.ingestObservations()

	// All coins were attempted, only the failing one is missing from the store
	assert.Equal(t, coins, fetcher.fetched)
	require.Len(t, st.appended, 2)
	assert.Equal(t, string(models.CoinEthereum), st.appended[0].CoinID)
	assert.Equal(t, string(models.CoinMatic), st.appended[1].CoinID)
}

func TestIngest_StoreFailureDoesNotAbortBatch(t *testing.T) {
	fetcher := &fakeFetcher{}
	st := &fakeStore{
		appendErr: map[models.Coin]error{
			models.CoinEthereum: errors.New("connection lost"),
		},
	}
	coins := []models.Coin{models.CoinBitcoin, models.CoinEthereum, models.CoinMatic}

	s := NewScheduler(fetcher, st, coins, 2*time.Hour)
	s.ingestObservations()

	require.Len(t, st.appended, 2)
	assert.Equal(t, string(models.CoinBitcoin), st.appended[0].CoinID)
	assert.Equal(t, string(models.CoinMatic), st.appended[1].CoinID)
}
