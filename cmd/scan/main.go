// One-shot wallet scan from the command line: reads a token list from a JSON
// file and prints each verdict. Uses the same pipeline and coordinator as the
// server, without touching Redis or Postgres.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/TokenLens/riskgate/internal/analysis"
	"github.com/TokenLens/riskgate/internal/model"
	"github.com/TokenLens/riskgate/internal/pkg/logger"
	"github.com/TokenLens/riskgate/internal/resilience"
	"github.com/TokenLens/riskgate/internal/service"
)

func main() {
	wallet := flag.String("wallet", "", "0x-prefixed wallet address")
	tokensPath := flag.String("tokens", "", "path to a JSON file with the token list")
	asJSON := flag.Bool("json", false, "print the full scan result as JSON")
	flag.Parse()

	logger.Init("warn")

	if *wallet == "" || *tokensPath == "" {
		fmt.Fprintln(os.Stderr, "usage: scan -wallet 0x... -tokens holdings.json")
		os.Exit(2)
	}

	raw, err := os.ReadFile(*tokensPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read tokens: %v\n", err)
		os.Exit(1)
	}
	var tokens []model.TokenRecord
	if err := json.Unmarshal(raw, &tokens); err != nil {
		fmt.Fprintf(os.Stderr, "parse tokens: %v\n", err)
		os.Exit(1)
	}

	coordinator := resilience.NewCoordinator(resilience.CoordinatorConfig{})
	defer coordinator.Stop()

	scanner := service.NewScanner(coordinator, analysis.StaticOracle{}, analysis.NullChainSource{},
		analysis.NewAggregator(nil), nil, nil, nil, service.ScannerOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := scanner.ScanWallet(ctx, *wallet, tokens, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Printf("wallet %s: %d tokens (high: %d, medium: %d, low: %d)\n",
		result.WalletAddress, len(result.Verdicts),
		result.Summary.HighRiskCount, result.Summary.MediumRiskCount, result.Summary.LowRiskCount)
	for _, v := range result.Verdicts {
		fmt.Printf("  %-8s %-6s score=%3.0f conf=%2.0f%% %v\n",
			v.Symbol, v.Level, v.Score, v.ConfidencePct, v.Reasons)
	}
}
