package analysis

import (
	"github.com/TokenLens/riskgate/internal/model"
	"github.com/TokenLens/riskgate/internal/pkg/metrics"
)

type rule struct {
	name   string
	points float64
	signal model.Signal
	reason string
	match  func(model.FeatureVector) bool
}

// ruleTable is the deterministic, human-auditable point system. Scores are
// additive and may exceed 100; the aggregator caps the final verdict.
var ruleTable = []rule{
	{
		name:   "unverified",
		points: 15,
		reason: "Contract source is not verified",
		match:  func(fv model.FeatureVector) bool { return !fv.Verified },
	},
	{
		name:   "url_in_name",
		points: 25,
		reason: "Token name contains a URL or claim-bait phrase",
		match:  func(fv model.FeatureVector) bool { return fv.NameHasURL },
	},
	{
		name:   "long_name",
		points: 15,
		reason: "Token name is unusually long",
		match:  func(fv model.FeatureVector) bool { return fv.NameLength > 30 },
	},
	{
		name:   "weird_symbol",
		points: 20,
		reason: "Symbol contains non-alphanumeric characters",
		match:  func(fv model.FeatureVector) bool { return fv.SymbolHasWeird },
	},
	{
		name:   "liquidity_removed",
		points: 40,
		signal: model.SignalEscalate,
		reason: "Liquidity was recently removed",
		match:  func(fv model.FeatureVector) bool { return fv.LiquidityRemoved },
	},
	{
		name:   "extreme_tax",
		points: 45,
		signal: model.SignalEscalate,
		reason: "Transfer tax exceeds 50%",
		match:  func(fv model.FeatureVector) bool { return fv.TaxRatePct > 50 },
	},
	{
		name:   "high_tax",
		points: 20,
		reason: "Transfer tax exceeds 10%",
		match:  func(fv model.FeatureVector) bool { return fv.TaxRatePct > 10 && fv.TaxRatePct <= 50 },
	},
	{
		name:   "infinite_supply",
		points: 30,
		reason: "Token supply is unbounded",
		match:  func(fv model.FeatureVector) bool { return fv.InfiniteSupply },
	},
	{
		name:   "holder_concentration",
		points: 25,
		reason: "Top holder controls 70% or more of supply",
		match:  func(fv model.FeatureVector) bool { return fv.Top1HolderPct >= 70 },
	},
	{
		name:   "no_listings",
		points: 10,
		reason: "Token is not listed on any external tracker",
		match:  func(fv model.FeatureVector) bool { return fv.ExternalListings == 0 },
	},
}

// EvaluateRules runs the rule table over a feature vector. Deterministic,
// never errors.
func EvaluateRules(fv model.FeatureVector) model.RuleVerdict {
	verdict := model.RuleVerdict{
		Reasons: []string{},
		Details: map[string]any{},
	}

	triggered := []string{}
	for _, r := range ruleTable {
		if !r.match(fv) {
			continue
		}
		verdict.Score += r.points
		verdict.Reasons = append(verdict.Reasons, r.reason)
		triggered = append(triggered, r.name)
		metrics.RuleHits.WithLabelValues(r.name).Inc()

		if r.signal == model.SignalEscalate && verdict.Signal != model.SignalImmediate {
			verdict.Signal = model.SignalEscalate
		}
		if r.signal == model.SignalImmediate {
			verdict.Signal = model.SignalImmediate
		}
	}
	verdict.Details["triggered_rules"] = triggered
	return verdict
}
