package model

// TokenRecord is the raw holding handed in by the balance providers.
// Immutable once passed to the analyzer.
type TokenRecord struct {
	Address  string  `json:"address" binding:"required"`
	Symbol   string  `json:"symbol" binding:"required"`
	Name     string  `json:"name"`
	Decimals int     `json:"decimals"`
	Verified bool    `json:"verified"`
	ValueUSD float64 `json:"value_usd"`
	Balance  float64 `json:"balance"`
}

// FeatureVector is the fixed-shape snapshot of derived signals computed fresh
// per analysis. Zero values on fields fed by on-chain collaborators mean
// "unknown", not "safe": callers must not read absence of data as a clean
// bill of health.
type FeatureVector struct {
	Verified       bool `json:"verified"`
	NameLength     int  `json:"name_length"`
	SymbolHasWeird bool `json:"symbol_has_weird_chars"`
	NameHasURL     bool `json:"name_has_url"`

	// Holder distribution (unknown without a holder source)
	Top1HolderPct float64 `json:"top1_holder_pct"`
	Top5HolderPct float64 `json:"top5_holder_pct"`
	TotalHolders  int     `json:"total_holders"`

	// Liquidity
	LiquidityUSD     float64 `json:"liquidity_usd"`
	LiquidityRemoved bool    `json:"liquidity_removed"`
	PairAgeDays      float64 `json:"pair_age_days"`

	// Tax behavior
	TaxRatePct float64 `json:"tax_rate_pct"`
	DynamicTax bool    `json:"dynamic_tax"`

	// Trading activity
	TxVolume24h   float64 `json:"tx_volume_24h"`
	BuySellRatio  float64 `json:"buy_sell_ratio"`
	LargeTransfer int     `json:"large_transfer_count"`

	// Supply
	InfiniteSupply bool `json:"infinite_supply"`
	MintEvents     int  `json:"mint_events"`

	// External signals
	ExternalListings int `json:"external_listings"`
	CommunityReports int `json:"community_reports"`
}
