package analysis

import (
	"math"
	"strings"

	"github.com/TokenLens/riskgate/internal/model"
)

// defaultTrustedSymbols are major-asset tickers exempted from most scam
// scoring.
var defaultTrustedSymbols = []string{
	"USDC", "USDT", "WBTC", "WETH", "DAI", "LINK", "UNI", "AAVE", "COMP",
}

const trustedDamping = 60

// Aggregator combines rule score, probability output and simulation result
// into the final verdict.
type Aggregator struct {
	trusted map[string]struct{}
}

func NewAggregator(trustedSymbols []string) *Aggregator {
	if len(trustedSymbols) == 0 {
		trustedSymbols = defaultTrustedSymbols
	}
	trusted := make(map[string]struct{}, len(trustedSymbols))
	for _, s := range trustedSymbols {
		trusted[strings.ToUpper(s)] = struct{}{}
	}
	return &Aggregator{trusted: trusted}
}

func (a *Aggregator) isTrusted(symbol string) bool {
	_, ok := a.trusted[strings.ToUpper(symbol)]
	return ok
}

// Aggregate builds the terminal RiskVerdict. The risk level is derived from
// the final post-override score, never set independently.
func (a *Aggregator) Aggregate(token model.TokenRecord, fv model.FeatureVector, rules model.RuleVerdict, sim model.SimulationVerdict, prob model.ProbabilityVerdict) model.RiskVerdict {
	score := math.Round(0.6*rules.Score + 0.4*prob.Probability*100)

	// Overrides apply in order: damping first, then the hard floors.
	if a.isTrusted(token.Symbol) {
		score -= trustedDamping
		if score < 0 {
			score = 0
		}
	}
	if sim.Outcome != model.OutcomeSellable {
		score = math.Max(score, 90)
	}
	switch rules.Signal {
	case model.SignalImmediate:
		score = 100
	case model.SignalEscalate:
		score = math.Max(score, 75)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	reasons := rules.Reasons
	if len(reasons) == 0 {
		reasons = []string{"Analyzed"}
	}

	confidence := prob.Confidence
	if confidence < 50 {
		confidence = 50
	}
	if confidence > 95 {
		confidence = 95
	}

	return model.RiskVerdict{
		TokenAddress:  token.Address,
		Symbol:        token.Symbol,
		Level:         model.LevelForScore(score),
		Score:         score,
		ConfidencePct: confidence,
		Reasons:       reasons,
		Evidence: model.Evidence{
			Features:    &fv,
			Rules:       &rules,
			Simulation:  &sim,
			Probability: &prob,
		},
	}
}

// PlaceholderVerdict is the conservative stand-in for a token whose analysis
// failed. The token keeps its place in the result list; the error rides in
// the evidence.
func PlaceholderVerdict(token model.TokenRecord, err error) model.RiskVerdict {
	msg := "analysis failed"
	if err != nil {
		msg = err.Error()
	}
	return model.RiskVerdict{
		TokenAddress:  token.Address,
		Symbol:        token.Symbol,
		Level:         model.RiskHigh,
		Score:         75,
		ConfidencePct: 50,
		Reasons:       []string{"Analysis failed, treated as high risk"},
		Evidence:      model.Evidence{Error: msg},
	}
}
