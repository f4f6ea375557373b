package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TokenLens/riskgate/internal/model"
	"github.com/shopspring/decimal"
)

// PriceClient fetches spot prices from the configured HTTP provider. Timeout
// lives here, per call, not in the coordinator.
type PriceClient struct {
	baseURL string
	http    *http.Client
}

func NewPriceClient(baseURL string, timeout time.Duration) *PriceClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PriceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type priceResponse struct {
	Symbol   string `json:"symbol"`
	PriceUSD string `json:"price_usd"`
}

// FetchQuote performs one HTTP round-trip. The provider quotes prices as
// strings; decimal parsing rejects garbage before it reaches a float.
func (c *PriceClient) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	if c.baseURL == "" {
		return model.Quote{}, fmt.Errorf("price provider not configured")
	}

	endpoint := fmt.Sprintf("%s/v1/price?symbol=%s", c.baseURL, url.QueryEscape(strings.ToUpper(symbol)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Quote{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Quote{}, fmt.Errorf("price provider returned %d for %s", resp.StatusCode, symbol)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.Quote{}, fmt.Errorf("decode price response: %w", err)
	}

	price, err := decimal.NewFromString(body.PriceUSD)
	if err != nil {
		return model.Quote{}, fmt.Errorf("provider quoted invalid price %q: %w", body.PriceUSD, err)
	}
	if price.IsNegative() {
		return model.Quote{}, fmt.Errorf("provider quoted negative price for %s", symbol)
	}

	priceF, _ := price.Float64()
	return model.Quote{
		Symbol:    strings.ToUpper(symbol),
		PriceUSD:  priceF,
		Source:    "http",
		FetchedAt: time.Now(),
	}, nil
}
