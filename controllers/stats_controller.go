package controllers

import (
	"errors"
	"log"
	"net/http"

	"crypto_stats_backend/models"
	"crypto_stats_backend/services"
	"crypto_stats_backend/services/store"
	"github.com/gin-gonic/gin"
)

// StatsController handles the public market-stats read endpoints
type StatsController struct {
	queries *services.QueryService
}

// NewStatsController creates a new stats controller
func NewStatsController(queries *services.QueryService) *StatsController {
	return &StatsController{queries: queries}
}

// GetStats returns the latest stored snapshot for a coin
// GET /stats?coin=bitcoin
func (sc *StatsController) GetStats(c *gin.Context) {
	coinID := c.Query("coin")
	if coinID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coin query parameter is required"})
		return
	}

	snapshot, err := sc.queries.GetSnapshot(c.Request.Context(), models.Coin(coinID))
	if err != nil {
		if errors.Is(err, store.ErrNoObservations) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no data recorded for coin"})
			return
		}
		log.Printf("Error fetching snapshot for %s: %v", coinID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetDeviation returns the standard deviation of the most recent stored
// prices for a coin
// GET /deviation?coin=bitcoin
func (sc *StatsController) GetDeviation(c *gin.Context) {
	coinID := c.Query("coin")
	if coinID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coin query parameter is required"})
		return
	}

	deviation, err := sc.queries.GetDeviation(c.Request.Context(), models.Coin(coinID))
	if err != nil {
		if errors.Is(err, store.ErrNoObservations) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no data recorded for coin"})
			return
		}
		log.Printf("Error computing deviation for %s: %v", coinID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deviation": deviation})
}
