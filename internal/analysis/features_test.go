package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/TokenLens/riskgate/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestExtractFeaturesStringChecks(t *testing.T) {
	fv := ExtractFeatures(context.Background(), model.TokenRecord{
		Name:     "Visit https://free-tokens.xyz to claim",
		Symbol:   "FR$E",
		Verified: false,
	}, nil)

	assert.True(t, fv.NameHasURL)
	assert.True(t, fv.SymbolHasWeird)
	assert.False(t, fv.Verified)
	assert.Equal(t, len("Visit https://free-tokens.xyz to claim"), fv.NameLength)
}

func TestExtractFeaturesCleanToken(t *testing.T) {
	fv := ExtractFeatures(context.Background(), model.TokenRecord{
		Name:     "USD Coin",
		Symbol:   "USDC",
		Verified: true,
	}, nil)

	assert.False(t, fv.NameHasURL)
	assert.False(t, fv.SymbolHasWeird)
	assert.True(t, fv.Verified)
}

func TestExtractFeaturesClaimBaitWithoutURL(t *testing.T) {
	fv := ExtractFeatures(context.Background(), model.TokenRecord{
		Name:   "visit website to claim reward",
		Symbol: "WIN",
	}, nil)
	assert.True(t, fv.NameHasURL)
}

type failingChainSource struct{}

func (failingChainSource) Stats(context.Context, string) (ChainStats, error) {
	return ChainStats{}, errors.New("rpc down")
}

func TestExtractFeaturesDegradesOnChainSourceError(t *testing.T) {
	// A broken collaborator must not surface: the vector keeps zeros
	fv := ExtractFeatures(context.Background(), model.TokenRecord{
		Name:   "Some Token",
		Symbol: "TKN",
	}, failingChainSource{})

	assert.Zero(t, fv.Top1HolderPct)
	assert.Zero(t, fv.LiquidityUSD)
	assert.False(t, fv.InfiniteSupply)
}

type fixedChainSource struct{ stats ChainStats }

func (s fixedChainSource) Stats(context.Context, string) (ChainStats, error) {
	return s.stats, nil
}

func TestExtractFeaturesPassesThroughChainStats(t *testing.T) {
	fv := ExtractFeatures(context.Background(), model.TokenRecord{Symbol: "TKN"}, fixedChainSource{
		stats: ChainStats{
			Top1HolderPct:    82.5,
			LiquidityUSD:     12000,
			TaxRatePct:       12,
			ExternalListings: 3,
		},
	})

	assert.Equal(t, 82.5, fv.Top1HolderPct)
	assert.Equal(t, 12000.0, fv.LiquidityUSD)
	assert.Equal(t, 12.0, fv.TaxRatePct)
	assert.Equal(t, 3, fv.ExternalListings)
}
