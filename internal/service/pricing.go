package service

import (
	"context"
	"strings"
	"time"

	"github.com/TokenLens/riskgate/internal/market"
	"github.com/TokenLens/riskgate/internal/model"
	"github.com/TokenLens/riskgate/internal/pkg/apperrors"
	"github.com/TokenLens/riskgate/internal/provider"
	"github.com/TokenLens/riskgate/internal/resilience"
)

// Pricing serves spot quotes. A fresh websocket tick short-circuits HTTP;
// everything else goes through the coordinator so the price provider gets
// the same caching, rate limiting and breaker treatment as every upstream.
type Pricing struct {
	co     *resilience.Coordinator
	client *provider.PriceClient
	stream *market.QuoteStream
	ttl    time.Duration
}

func NewPricing(co *resilience.Coordinator, client *provider.PriceClient, stream *market.QuoteStream, ttl time.Duration) *Pricing {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Pricing{co: co, client: client, stream: stream, ttl: ttl}
}

func priceKey(symbol string) string {
	return "price:" + strings.ToUpper(symbol)
}

func (p *Pricing) GetQuote(ctx context.Context, symbol string, forceRefresh bool) (model.Quote, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return model.Quote{}, apperrors.NewInvalidRequest("empty symbol")
	}

	if !forceRefresh && p.stream != nil {
		if q, ok := p.stream.Fresh(symbol); ok {
			return q, nil
		}
	}

	return resilience.Execute(ctx, p.co, priceKey(symbol),
		resilience.Options{TTL: p.ttl, ForceRefresh: forceRefresh},
		func(ctx context.Context) (model.Quote, error) {
			return p.client.FetchQuote(ctx, symbol)
		})
}
