package scheduler

// Package scheduler provides scheduled job management for the crypto stats
// backend. It handles:
// - Periodic market-data ingestion from CoinGecko (every 2 hours by default)
// - An immediate ingestion run at process startup
//
// The ingestion job is implemented in jobs.go
