package model

// Signal escalates a rule verdict past normal score aggregation.
type Signal string

const (
	// SignalImmediate is reserved for hard-stop conditions (known-scam
	// registry hits). No rule emits it today; the type exists so callers
	// don't change when one does.
	SignalImmediate Signal = "IMMEDIATE"
	SignalEscalate  Signal = "ESCALATE"
	SignalNone      Signal = ""
)

// RuleVerdict is the deterministic rule pass output. Score is additive and
// unbounded above 100; the aggregator caps it.
type RuleVerdict struct {
	Score   float64        `json:"score"`
	Reasons []string       `json:"reasons"`
	Signal  Signal         `json:"signal,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// SimulationOutcome reports what a synthetic sell round-trip established.
type SimulationOutcome string

const (
	OutcomeSellable SimulationOutcome = "sellable"
	OutcomeBlocked  SimulationOutcome = "blocked"
	// OutcomeUnknown means the simulation could not be completed. The
	// aggregator treats it the same as blocked.
	OutcomeUnknown SimulationOutcome = "unknown"
)

type SimulationVerdict struct {
	Outcome        SimulationOutcome `json:"outcome"`
	CanSell        bool              `json:"can_sell"`
	RevertReason   string            `json:"revert_reason,omitempty"`
	PriceImpactPct float64           `json:"price_impact_pct"`
	SlippagePct    float64           `json:"slippage_pct"`
	GasUsed        uint64            `json:"gas_used"`
}

// Contribution is one feature's share in the probability blend, kept for
// explainability in the evidence payload.
type Contribution struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ProbabilityVerdict is the fixed-weight heuristic blend. Not a trained
// model: a reimplementer needs no dataset to reproduce it.
type ProbabilityVerdict struct {
	Probability   float64        `json:"probability"`
	Confidence    float64        `json:"confidence"`
	Contributions []Contribution `json:"contributions"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// LevelForScore derives the risk level from a final score. RiskVerdict.Level
// must never be set independently of Score.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= 75:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Evidence bundles the typed payloads that back a verdict. Consumers check
// the field they care about instead of probing a free-form bag.
type Evidence struct {
	Features    *FeatureVector      `json:"features,omitempty"`
	Rules       *RuleVerdict        `json:"rules,omitempty"`
	Simulation  *SimulationVerdict  `json:"simulation,omitempty"`
	Probability *ProbabilityVerdict `json:"probability,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// RiskVerdict is the terminal artifact of one analysis. Constructed once,
// never mutated, safe to cache by the caller.
type RiskVerdict struct {
	TokenAddress  string    `json:"token_address"`
	Symbol        string    `json:"symbol"`
	Level         RiskLevel `json:"risk_level"`
	Score         float64   `json:"score"`
	ConfidencePct float64   `json:"confidence_pct"`
	Reasons       []string  `json:"reasons"`
	Evidence      Evidence  `json:"evidence"`
}
