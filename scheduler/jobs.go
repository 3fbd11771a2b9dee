package scheduler

import (
	"context"
	"log"
	"time"

	"crypto_stats_backend/models"
	"crypto_stats_backend/services/store"
	"github.com/go-co-op/gocron"
)

// runTimeout bounds one full ingestion pass over all tracked coins
const runTimeout = 2 * time.Minute

// QuoteFetcher is the narrow slice of the market-data client the scheduler
// consumes; the concrete CoinGecko client is injected at wiring time.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, coin models.Coin) (*models.Observation, error)
}

// Scheduler manages the recurring market-data ingestion job
type Scheduler struct {
	cron     *gocron.Scheduler
	fetcher  QuoteFetcher
	store    store.ObservationStore
	coins    []models.Coin
	interval time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(fetcher QuoteFetcher, observationStore store.ObservationStore, coins []models.Coin, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		fetcher:  fetcher,
		store:    observationStore,
		coins:    coins,
		interval: interval,
	}
}

// Start registers and starts the ingestion job. The job runs once
// immediately, then on a fixed interval regardless of how long the previous
// run took. SingletonMode keeps at most one run in flight: a trigger that
// fires while a run is still executing is skipped, not queued.
func (s *Scheduler) Start() {
	log.Println("Starting scheduler...")

	_, err := s.cron.Every(s.interval).
		SingletonMode().
		StartImmediately().
		Do(s.ingestObservations)
	if err != nil {
		log.Printf("Error scheduling ingestion job: %v", err)
		return
	}

	s.cron.StartAsync()
	log.Printf("Scheduler started, fetching every %v", s.interval)
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}

// ingestObservations fetches and stores one observation per tracked coin.
// A failure for one coin is logged and never aborts the rest of the batch;
// the next scheduled run retries naturally by re-fetching.
func (s *Scheduler) ingestObservations() {
	log.Println("Fetching market data...")

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	stored := 0
	for _, coin := range s.coins {
		obs, err := s.fetcher.FetchQuote(ctx, coin)
		if err != nil {
			log.Printf("Error fetching quote for %s: %v", coin, err)
			continue
		}

		if err := s.store.Append(ctx, obs); err != nil {
			log.Printf("Error storing observation for %s: %v", coin, err)
			continue
		}
		stored++
	}

	log.Printf("Stored observations for %d/%d coins", stored, len(s.coins))
}
