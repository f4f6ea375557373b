package analysis

import (
	"context"
	"regexp"

	"github.com/TokenLens/riskgate/internal/model"
)

var (
	// URL fragments and claim-bait phrasing scammers put in token names
	urlPattern = regexp.MustCompile(`(?i)(https?://|www\.|\.com|\.net|\.org|\.io|\.xyz|\.site|visit\s|claim\s|airdrop|reward)`)

	weirdSymbolPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// ChainStats is the on-chain slice of the feature vector supplied by a
// collaborator (holder distribution, liquidity venue, tax probe).
type ChainStats struct {
	Top1HolderPct    float64
	Top5HolderPct    float64
	TotalHolders     int
	LiquidityUSD     float64
	LiquidityRemoved bool
	PairAgeDays      float64
	TaxRatePct       float64
	DynamicTax       bool
	TxVolume24h      float64
	BuySellRatio     float64
	LargeTransfers   int
	InfiniteSupply   bool
	MintEvents       int
	ExternalListings int
	CommunityReports int
}

// ChainSource looks up on-chain stats for a token. Implementations may fail;
// the extractor degrades to zero values and never propagates the error.
type ChainSource interface {
	Stats(ctx context.Context, tokenAddress string) (ChainStats, error)
}

// NullChainSource reports no data for every token. The resulting zero fields
// mean "unknown", not "safe".
type NullChainSource struct{}

func (NullChainSource) Stats(context.Context, string) (ChainStats, error) {
	return ChainStats{}, nil
}

// ExtractFeatures computes the feature vector for one token. String checks
// come from the record itself; on-chain fields come from src when it has
// them. Never errors.
func ExtractFeatures(ctx context.Context, token model.TokenRecord, src ChainSource) model.FeatureVector {
	fv := model.FeatureVector{
		Verified:       token.Verified,
		NameLength:     len(token.Name),
		SymbolHasWeird: weirdSymbolPattern.MatchString(token.Symbol),
		NameHasURL:     urlPattern.MatchString(token.Name),
	}

	if src == nil {
		src = NullChainSource{}
	}
	stats, err := src.Stats(ctx, token.Address)
	if err != nil {
		// Missing chain data is benign: the vector keeps its zeros.
		return fv
	}

	fv.Top1HolderPct = stats.Top1HolderPct
	fv.Top5HolderPct = stats.Top5HolderPct
	fv.TotalHolders = stats.TotalHolders
	fv.LiquidityUSD = stats.LiquidityUSD
	fv.LiquidityRemoved = stats.LiquidityRemoved
	fv.PairAgeDays = stats.PairAgeDays
	fv.TaxRatePct = stats.TaxRatePct
	fv.DynamicTax = stats.DynamicTax
	fv.TxVolume24h = stats.TxVolume24h
	fv.BuySellRatio = stats.BuySellRatio
	fv.LargeTransfer = stats.LargeTransfers
	fv.InfiniteSupply = stats.InfiniteSupply
	fv.MintEvents = stats.MintEvents
	fv.ExternalListings = stats.ExternalListings
	fv.CommunityReports = stats.CommunityReports
	return fv
}
