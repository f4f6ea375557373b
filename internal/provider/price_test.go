package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchQuoteParsesDecimalPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/price", r.URL.Path)
		assert.Equal(t, "WETH", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"WETH","price_usd":"3421.55"}`))
	}))
	defer srv.Close()

	c := NewPriceClient(srv.URL, time.Second)
	quote, err := c.FetchQuote(context.Background(), "weth")
	require.NoError(t, err)

	assert.Equal(t, "WETH", quote.Symbol)
	assert.InDelta(t, 3421.55, quote.PriceUSD, 1e-9)
	assert.Equal(t, "http", quote.Source)
	assert.False(t, quote.FetchedAt.IsZero())
}

func TestFetchQuoteRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewPriceClient(srv.URL, time.Second)
	_, err := c.FetchQuote(context.Background(), "WETH")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchQuoteRejectsGarbagePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"WETH","price_usd":"not-a-number"}`))
	}))
	defer srv.Close()

	c := NewPriceClient(srv.URL, time.Second)
	_, err := c.FetchQuote(context.Background(), "WETH")
	require.Error(t, err)
}

func TestFetchQuoteRejectsNegativePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"WETH","price_usd":"-3.5"}`))
	}))
	defer srv.Close()

	c := NewPriceClient(srv.URL, time.Second)
	_, err := c.FetchQuote(context.Background(), "WETH")
	require.Error(t, err)
}

func TestFetchQuoteUnconfiguredProvider(t *testing.T) {
	c := NewPriceClient("", time.Second)
	_, err := c.FetchQuote(context.Background(), "WETH")
	require.Error(t, err)
}
