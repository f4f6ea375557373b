package model

import "time"

// ScanRequest represents the incoming JSON body
type ScanRequest struct {
	Tokens       []TokenRecord `json:"tokens" binding:"required"`
	ForceRefresh bool          `json:"force_refresh,omitempty"`
}

// WalletSummary aggregates the per-token verdicts for one wallet.
type WalletSummary struct {
	HighRiskCount   int      `json:"high_risk_count"`
	MediumRiskCount int      `json:"medium_risk_count"`
	LowRiskCount    int      `json:"low_risk_count"`
	Flagged         []string `json:"flagged_tokens"`
}

// ScanResult is one completed wallet scan.
type ScanResult struct {
	ScanID        string        `json:"scan_id"`
	WalletAddress string        `json:"wallet_address"`
	Verdicts      []RiskVerdict `json:"verdicts"`
	Summary       WalletSummary `json:"summary"`
	StartedAt     time.Time     `json:"started_at"`
	DurationMs    int64         `json:"duration_ms"`
}

// Quote is a cached price point for one symbol.
type Quote struct {
	Symbol    string    `json:"symbol"`
	PriceUSD  float64   `json:"price_usd"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}
