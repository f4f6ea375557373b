package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TokenLens/riskgate/internal/analysis"
	"github.com/TokenLens/riskgate/internal/model"
	"github.com/TokenLens/riskgate/internal/pkg/apperrors"
	"github.com/TokenLens/riskgate/internal/repository"
	"github.com/TokenLens/riskgate/internal/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWallet = "0x1234567890AbcdEF1234567890aBcdef12345678"

func newTestCoordinator() *resilience.Coordinator {
	return resilience.NewCoordinator(resilience.CoordinatorConfig{
		RateWindow:       time.Minute,
		RateMaxRequests:  1000,
		BreakerThreshold: 5,
		BreakerReset:     time.Minute,
	})
}

func newTestScanner(co *resilience.Coordinator, oracle analysis.Oracle) *Scanner {
	return NewScanner(co, oracle, nil, nil,
		repository.NewMemoryVerdictStore(), repository.NewMemoryScanRepo(), nil,
		ScannerOptions{VerdictTTL: time.Minute})
}

func TestScanWalletTrustedStablecoin(t *testing.T) {
	s := newTestScanner(newTestCoordinator(), nil)

	result, err := s.ScanWallet(context.Background(), testWallet, []model.TokenRecord{
		{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Name: "USD Coin", Verified: true, ValueUSD: 1500},
	}, false)
	require.NoError(t, err)
	require.Len(t, result.Verdicts, 1)

	v := result.Verdicts[0]
	assert.Equal(t, model.RiskLow, v.Level)
	assert.LessOrEqual(t, v.Score, 5.0)
	assert.Equal(t, 1, result.Summary.LowRiskCount)
	assert.Empty(t, result.Summary.Flagged)
}

func TestScanWalletScamBaitToken(t *testing.T) {
	s := newTestScanner(newTestCoordinator(), nil)

	result, err := s.ScanWallet(context.Background(), testWallet, []model.TokenRecord{
		{Address: "0x000000000000000000000000000000000000dEaD", Symbol: "FREE", Name: "visit website to claim your reward tokens", Verified: false},
	}, false)
	require.NoError(t, err)
	require.Len(t, result.Verdicts, 1)

	v := result.Verdicts[0]
	assert.Contains(t, []model.RiskLevel{model.RiskMedium, model.RiskHigh}, v.Level)
	assert.GreaterOrEqual(t, v.Evidence.Rules.Score, 60.0)
	assert.Contains(t, v.Reasons, "Contract source is not verified")
	assert.Contains(t, v.Reasons, "Token name contains a URL or claim-bait phrase")
}

type blockingOracle struct{}

func (blockingOracle) Simulate(ctx context.Context, token model.TokenRecord) (model.SimulationVerdict, error) {
	return model.SimulationVerdict{Outcome: model.OutcomeBlocked, RevertReason: "TRANSFER_FROM_FAILED"}, nil
}

func TestScanWalletHoneypotOverride(t *testing.T) {
	s := newTestScanner(newTestCoordinator(), blockingOracle{})

	result, err := s.ScanWallet(context.Background(), testWallet, []model.TokenRecord{
		{Address: "0x000000000000000000000000000000000000bEEF", Symbol: "TRAP", Name: "Honeypot", Verified: true},
	}, false)
	require.NoError(t, err)

	v := result.Verdicts[0]
	assert.Equal(t, model.RiskHigh, v.Level)
	assert.GreaterOrEqual(t, v.Score, 90.0)
	assert.Equal(t, []string{v.TokenAddress}, result.Summary.Flagged)
}

type countingOracle struct{ calls int32 }

func (o *countingOracle) Simulate(ctx context.Context, token model.TokenRecord) (model.SimulationVerdict, error) {
	atomic.AddInt32(&o.calls, 1)
	return analysis.StaticOracle{}.Simulate(ctx, token)
}

func TestScanWalletSecondScanServedFromCache(t *testing.T) {
	oracle := &countingOracle{}
	s := newTestScanner(newTestCoordinator(), oracle)

	tokens := []model.TokenRecord{
		{Address: "0x0000000000000000000000000000000000000001", Symbol: "AAA", Name: "Token A"},
		{Address: "0x0000000000000000000000000000000000000002", Symbol: "BBB", Name: "Token B"},
	}

	_, err := s.ScanWallet(context.Background(), testWallet, tokens, false)
	require.NoError(t, err)
	_, err = s.ScanWallet(context.Background(), testWallet, tokens, false)
	require.NoError(t, err)

	// Each token was analyzed exactly once; the rescan hit the cache
	assert.Equal(t, int32(2), atomic.LoadInt32(&oracle.calls))
}

func TestScanWalletForceRefreshReanalyzes(t *testing.T) {
	oracle := &countingOracle{}
	s := newTestScanner(newTestCoordinator(), oracle)

	tokens := []model.TokenRecord{
		{Address: "0x0000000000000000000000000000000000000001", Symbol: "AAA", Name: "Token A"},
	}

	_, err := s.ScanWallet(context.Background(), testWallet, tokens, false)
	require.NoError(t, err)
	_, err = s.ScanWallet(context.Background(), testWallet, tokens, true)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&oracle.calls))
}

func TestInvalidateTokenForcesReanalysis(t *testing.T) {
	oracle := &countingOracle{}
	s := newTestScanner(newTestCoordinator(), oracle)

	tokens := []model.TokenRecord{
		{Address: "0x0000000000000000000000000000000000000001", Symbol: "AAA", Name: "Token A"},
	}

	_, err := s.ScanWallet(context.Background(), testWallet, tokens, false)
	require.NoError(t, err)
	_, err = s.ScanWallet(context.Background(), testWallet, tokens, false)
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&oracle.calls))

	require.NoError(t, s.InvalidateToken(tokens[0].Address))

	_, err = s.ScanWallet(context.Background(), testWallet, tokens, false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&oracle.calls))
}

func TestInvalidateTokenRejectsBadAddress(t *testing.T) {
	s := newTestScanner(newTestCoordinator(), nil)

	err := s.InvalidateToken("nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidRequest, apperrors.Wrap(err).Type)
}

func TestScanWalletRefusedAnalysisKeepsTokenVisible(t *testing.T) {
	// Exhaust the second token's window up front: its analysis is refused
	// and must come back as a conservative placeholder, not vanish.
	co := resilience.NewCoordinator(resilience.CoordinatorConfig{
		RateWindow:      time.Minute,
		RateMaxRequests: 1,
	})
	co.CanExecute("analysis:0x0000000000000000000000000000000000000002")
	s := newTestScanner(co, nil)

	result, err := s.ScanWallet(context.Background(), testWallet, []model.TokenRecord{
		{Address: "0x0000000000000000000000000000000000000001", Symbol: "AAA", Name: "Token A"},
		{Address: "0x0000000000000000000000000000000000000002", Symbol: "BBB", Name: "Token B"},
	}, false)
	require.NoError(t, err)
	require.Len(t, result.Verdicts, 2)

	placeholders := 0
	for _, v := range result.Verdicts {
		if v.Evidence.Error != "" {
			placeholders++
			assert.Equal(t, model.RiskHigh, v.Level)
		}
	}
	assert.Equal(t, 1, placeholders)
}

func TestScanWalletRejectsInvalidAddress(t *testing.T) {
	s := newTestScanner(newTestCoordinator(), nil)

	_, err := s.ScanWallet(context.Background(), "not-an-address", []model.TokenRecord{
		{Address: "0x0000000000000000000000000000000000000001", Symbol: "AAA"},
	}, false)
	require.Error(t, err)

	appErr := apperrors.Wrap(err)
	assert.Equal(t, apperrors.ErrInvalidRequest, appErr.Type)
}

func TestScanWalletPersistsHistoryAndVerdicts(t *testing.T) {
	store := repository.NewMemoryVerdictStore()
	history := repository.NewMemoryScanRepo()
	s := NewScanner(newTestCoordinator(), nil, nil, nil, store, history, nil,
		ScannerOptions{VerdictTTL: time.Minute})

	tokenAddr := "0x0000000000000000000000000000000000000001"
	_, err := s.ScanWallet(context.Background(), testWallet, []model.TokenRecord{
		{Address: tokenAddr, Symbol: "AAA", Name: "Token A"},
	}, false)
	require.NoError(t, err)

	verdict, err := s.TokenRisk(context.Background(), tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, tokenAddr, verdict.TokenAddress)

	scans, err := s.History(context.Background(), testWallet, 10)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Len(t, scans[0].Verdicts, 1)
}

func TestTokenRiskUnknownToken(t *testing.T) {
	s := newTestScanner(newTestCoordinator(), nil)

	_, err := s.TokenRisk(context.Background(), "0x0000000000000000000000000000000000000009")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Wrap(err).Type)
}
