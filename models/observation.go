package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coin identifies a tracked cryptocurrency by its CoinGecko id
type Coin string

const (
	CoinBitcoin  Coin = "bitcoin"
	CoinEthereum Coin = "ethereum"
	CoinMatic    Coin = "matic-network"
)

// DefaultTrackedCoins returns the coins polled when TRACKED_COINS is not set.
// The order is stable; the scheduler iterates it deterministically.
func DefaultTrackedCoins() []Coin {
	return []Coin{CoinBitcoin, CoinMatic, CoinEthereum}
}

// Observation represents one price sample for one coin at one instant.
// Records are append-only: never updated or deleted once written.
type Observation struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	CoinID           string          `gorm:"index:idx_coin_observed;not null" json:"coin_id"`
	PriceUSD         decimal.Decimal `gorm:"type:decimal(24,8)" json:"price_usd"`
	MarketCapUSD     decimal.Decimal `gorm:"type:decimal(30,2)" json:"market_cap_usd"`
	Change24hPercent decimal.Decimal `gorm:"type:decimal(10,4)" json:"change_24h_percent"`
	ObservedAt       time.Time       `gorm:"index:idx_coin_observed" json:"observed_at"`
	CreatedAt        time.Time       `json:"created_at"`
}

// MigrateObservationModels runs database migrations for observation models
func MigrateObservationModels(db *gorm.DB) error {
	return db.AutoMigrate(&Observation{})
}
