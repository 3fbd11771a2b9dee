package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crypto_stats_backend/models"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public CoinGecko API v3 endpoint
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

const requestTimeout = 15 * time.Second

// ErrMalformedResponse indicates the provider answered without the three
// required quote fields (price, market cap, 24h change).
var ErrMalformedResponse = errors.New("coingecko response missing required quote fields")

// Client fetches current market quotes from the CoinGecko simple price API.
// It is stateless between calls and performs no internal retries; retry
// policy belongs to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new CoinGecko client. An empty baseURL selects the
// public API; apiKey is optional (demo tier works without one).
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// simpleQuote mirrors one entry of the /simple/price response. Pointers
// distinguish a missing field from a literal zero.
type simpleQuote struct {
	USD          *float64 `json:"usd"`
	USDMarketCap *float64 `json:"usd_market_cap"`
	USD24hChange *float64 `json:"usd_24h_change"`
}

// FetchQuote requests the current USD price, market cap and 24h change for
// one coin and maps them onto an Observation. ObservedAt is left zero; the
// store assigns it at append time.
func (c *Client) FetchQuote(ctx context.Context, coin models.Coin) (*models.Observation, error) {
	query := url.Values{}
	query.Set("ids", string(coin))
	query.Set("vs_currencies", "usd")
	query.Set("include_market_cap", "true")
	query.Set("include_24hr_change", "true")

	endpoint := fmt.Sprintf("%s/simple/price?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build coingecko request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", coin, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d for %s", resp.StatusCode, coin)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read coingecko response: %w", err)
	}

	var payload map[string]simpleQuote
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse coingecko response for %s: %w", coin, err)
	}

	quote, ok := payload[string(coin)]
	if !ok || quote.USD == nil || quote.USDMarketCap == nil || quote.USD24hChange == nil {
		return nil, fmt.Errorf("quote for %s: %w", coin, ErrMalformedResponse)
	}

	return &models.Observation{
		CoinID:           string(coin),
		PriceUSD:         decimal.NewFromFloat(*quote.USD),
		MarketCapUSD:     decimal.NewFromFloat(*quote.USDMarketCap),
		Change24hPercent: decimal.NewFromFloat(*quote.USD24hChange),
	}, nil
}
