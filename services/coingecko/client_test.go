package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"crypto_stats_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchQuote_MapsProviderResponse(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"usd":40859.92,"usd_market_cap":802588973505.504,"usd_24h_change":3.4628}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	obs, err := client.FetchQuote(context.Background(), models.CoinBitcoin)
	require.NoError(t, err)

	assert.Equal(t, "/simple/price", gotPath)
	assert.Contains(t, gotQuery, "ids=bitcoin")
	assert.Contains(t, gotQuery, "vs_currencies=usd")
	assert.Contains(t, gotQuery, "include_market_cap=true")
	assert.Contains(t, gotQuery, "include_24hr_change=true")

	assert.Equal(t, "bitcoin", obs.CoinID)
	assert.Equal(t, 40859.92, obs.PriceUSD.InexactFloat64())
	assert.Equal(t, 802588973505.504, obs.MarketCapUSD.InexactFloat64())
	assert.Equal(t, 3.4628, obs.Change24hPercent.InexactFloat64())
	assert.True(t, obs.ObservedAt.IsZero(), "ObservedAt is assigned by the store, not the client")
}

func TestFetchQuote_SendsAPIKeyHeader(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-cg-demo-api-key")
		w.Write([]byte(`{"bitcoin":{"usd":1,"usd_market_cap":2,"usd_24h_change":3}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.FetchQuote(context.Background(), models.CoinBitcoin)
	require.NoError(t, err)
	assert.Equal(t, "test-key", gotKey)
}

func TestFetchQuote_MissingFieldsIsMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "coin absent", body: `{}`},
		{name: "missing price", body: `{"bitcoin":{"usd_market_cap":2,"usd_24h_change":3}}`},
		{name: "missing market cap", body: `{"bitcoin":{"usd":1,"usd_24h_change":3}}`},
		{name: "missing 24h change", body: `{"bitcoin":{"usd":1,"usd_market_cap":2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "")
			_, err := client.FetchQuote(context.Background(), models.CoinBitcoin)
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestFetchQuote_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>rate limited</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.FetchQuote(context.Background(), models.CoinBitcoin)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestFetchQuote_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.FetchQuote(context.Background(), models.CoinBitcoin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFetchQuote_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, "")
	_, err := client.FetchQuote(context.Background(), models.CoinBitcoin)
	require.Error(t, err)
}
