package analysis

import "github.com/TokenLens/riskgate/internal/model"

// Fixed blend weights. This is a linear heuristic, not a trained model:
// reproducing it requires no dataset.
const (
	ruleWeight         = 0.6
	urlBoost           = 0.2
	concentrationBoost = 0.15
	taxBoost           = 0.1
	verifiedDiscount   = 0.1
)

// EstimateProbability blends the rule score with independent heuristics into
// a calibrated scam probability and per-feature contributions.
func EstimateProbability(ruleScore float64, fv model.FeatureVector) model.ProbabilityVerdict {
	base := ruleScore / 100
	if base > 1 {
		base = 1
	}

	contributions := []model.Contribution{
		{Feature: "rules", Importance: ruleWeight},
	}

	p := base
	if fv.NameHasURL {
		p += urlBoost
		contributions = append(contributions, model.Contribution{Feature: "url_in_name", Importance: urlBoost})
	}
	if fv.Top1HolderPct >= 70 {
		p += concentrationBoost
		contributions = append(contributions, model.Contribution{Feature: "holder_concentration", Importance: concentrationBoost})
	}
	if fv.TaxRatePct > 10 {
		p += taxBoost
		contributions = append(contributions, model.Contribution{Feature: "high_tax", Importance: taxBoost})
	}
	if fv.Verified {
		p -= verifiedDiscount
		contributions = append(contributions, model.Contribution{Feature: "verified", Importance: -verifiedDiscount})
	}

	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	confidence := 65.0
	if fv.ExternalListings > 0 {
		confidence = 75.0
	}
	if confidence < 50 {
		confidence = 50
	}
	if confidence > 95 {
		confidence = 95
	}

	return model.ProbabilityVerdict{
		Probability:   p,
		Confidence:    confidence,
		Contributions: contributions,
	}
}
