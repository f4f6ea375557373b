package analysis

import (
	"context"

	"github.com/TokenLens/riskgate/internal/model"
)

// Oracle attempts a synthetic buy/sell round-trip against a token's trading
// venue to detect transfer blocks and estimate price impact. Implementations
// that cannot complete a simulation must report OutcomeUnknown rather than
// defaulting to sellable; the aggregator treats unknown as blocked.
type Oracle interface {
	Simulate(ctx context.Context, token model.TokenRecord) (model.SimulationVerdict, error)
}

// StaticOracle is the seam for a real multi-router simulation. It reports a
// fixed sellable verdict: 5% price impact, 3% slippage.
type StaticOracle struct{}

func (StaticOracle) Simulate(ctx context.Context, token model.TokenRecord) (model.SimulationVerdict, error) {
	return model.SimulationVerdict{
		Outcome:        model.OutcomeSellable,
		CanSell:        true,
		PriceImpactPct: 5,
		SlippagePct:    3,
		GasUsed:        150000,
	}, nil
}

// UnknownSimulation is the verdict an oracle failure collapses to. The
// aggregator scores it as a blocked sell.
func UnknownSimulation(reason string) model.SimulationVerdict {
	return model.SimulationVerdict{
		Outcome:      model.OutcomeUnknown,
		CanSell:      false,
		RevertReason: reason,
	}
}
