package analysis

import (
	"testing"

	"github.com/TokenLens/riskgate/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateRulesScamNameStack(t *testing.T) {
	// Unverified token with a claim-bait name, overly long, no listings
	fv := model.FeatureVector{
		Verified:   false,
		NameHasURL: true,
		NameLength: 41,
	}

	verdict := EvaluateRules(fv)

	// unverified 15 + url 25 + long name 15 + no listings 10
	assert.GreaterOrEqual(t, verdict.Score, 60.0)
	assert.Contains(t, verdict.Reasons, "Contract source is not verified")
	assert.Contains(t, verdict.Reasons, "Token name contains a URL or claim-bait phrase")
	assert.Equal(t, model.SignalNone, verdict.Signal)
}

func TestEvaluateRulesEscalatesOnLiquidityRemoval(t *testing.T) {
	fv := model.FeatureVector{Verified: true, ExternalListings: 1, LiquidityRemoved: true}

	verdict := EvaluateRules(fv)
	assert.Equal(t, 40.0, verdict.Score)
	assert.Equal(t, model.SignalEscalate, verdict.Signal)
}

func TestEvaluateRulesTaxBands(t *testing.T) {
	base := model.FeatureVector{Verified: true, ExternalListings: 1}

	moderate := base
	moderate.TaxRatePct = 25
	v := EvaluateRules(moderate)
	assert.Equal(t, 20.0, v.Score)
	assert.Equal(t, model.SignalNone, v.Signal)

	extreme := base
	extreme.TaxRatePct = 60
	v = EvaluateRules(extreme)
	// Extreme tax fires alone, not together with the >10% band
	assert.Equal(t, 45.0, v.Score)
	assert.Equal(t, model.SignalEscalate, v.Signal)
}

func TestEvaluateRulesHolderConcentration(t *testing.T) {
	fv := model.FeatureVector{Verified: true, ExternalListings: 1, Top1HolderPct: 70}
	v := EvaluateRules(fv)
	assert.Equal(t, 25.0, v.Score)

	fv.Top1HolderPct = 69.9
	v = EvaluateRules(fv)
	assert.Equal(t, 0.0, v.Score)
}

func TestEvaluateRulesCleanTokenOnlyListingsGap(t *testing.T) {
	// Verified, clean strings, but no external listings known
	fv := model.FeatureVector{Verified: true, NameLength: 8}
	v := EvaluateRules(fv)
	assert.Equal(t, 10.0, v.Score)
}

func TestEvaluateRulesScoreIsUnbounded(t *testing.T) {
	fv := model.FeatureVector{
		NameHasURL:       true,
		NameLength:       50,
		SymbolHasWeird:   true,
		LiquidityRemoved: true,
		TaxRatePct:       80,
		InfiniteSupply:   true,
		Top1HolderPct:    95,
	}
	v := EvaluateRules(fv)
	// 15+25+15+20+40+45+30+25+10 = 225; the cap is the aggregator's job
	assert.Equal(t, 225.0, v.Score)
	assert.Equal(t, model.SignalEscalate, v.Signal)
}

func TestEvaluateRulesIsDeterministic(t *testing.T) {
	fv := model.FeatureVector{NameHasURL: true, TaxRatePct: 12}
	first := EvaluateRules(fv)
	second := EvaluateRules(fv)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Reasons, second.Reasons)
}
