package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/TokenLens/riskgate/internal/analysis"
	"github.com/TokenLens/riskgate/internal/market"
	"github.com/TokenLens/riskgate/internal/model"
	"github.com/TokenLens/riskgate/internal/pkg/apperrors"
	"github.com/TokenLens/riskgate/internal/pkg/logger"
	"github.com/TokenLens/riskgate/internal/pkg/metrics"
	"github.com/TokenLens/riskgate/internal/repository"
	"github.com/TokenLens/riskgate/internal/resilience"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// VerdictStore caches per-token verdicts across processes.
type VerdictStore interface {
	SaveVerdict(ctx context.Context, verdict model.RiskVerdict, ttl time.Duration) error
	GetVerdict(ctx context.Context, tokenAddress string) (*model.RiskVerdict, error)
}

// ScanRepo persists completed wallet scans.
type ScanRepo interface {
	Insert(ctx context.Context, scan *model.ScanResult) error
	ListByWallet(ctx context.Context, wallet string, limit int) ([]*model.ScanResult, error)
}

var (
	_ VerdictStore = (*repository.RedisClient)(nil)
	_ VerdictStore = (*repository.MemoryVerdictStore)(nil)
	_ ScanRepo     = (*repository.PostgresScanRepo)(nil)
	_ ScanRepo     = (*repository.MemoryScanRepo)(nil)
)

// ScannerOptions tunes batching and verdict caching.
type ScannerOptions struct {
	BatchSize  int
	BatchDelay time.Duration
	VerdictTTL time.Duration
}

// Scanner runs the per-token risk pipeline for whole wallets. Every token
// analysis goes through the resilience coordinator so repeated scans within
// the verdict TTL are served from cache.
type Scanner struct {
	co      *resilience.Coordinator
	oracle  analysis.Oracle
	chain   analysis.ChainSource
	agg     *analysis.Aggregator
	store   VerdictStore
	history ScanRepo
	stream  *market.QuoteStream
	opts    ScannerOptions
	log     *slog.Logger
}

func NewScanner(co *resilience.Coordinator, oracle analysis.Oracle, chain analysis.ChainSource, agg *analysis.Aggregator, store VerdictStore, history ScanRepo, stream *market.QuoteStream, opts ScannerOptions) *Scanner {
	if oracle == nil {
		oracle = analysis.StaticOracle{}
	}
	if chain == nil {
		chain = analysis.NullChainSource{}
	}
	if agg == nil {
		agg = analysis.NewAggregator(nil)
	}
	if opts.VerdictTTL <= 0 {
		opts.VerdictTTL = 15 * time.Minute
	}
	return &Scanner{
		co:      co,
		oracle:  oracle,
		chain:   chain,
		agg:     agg,
		store:   store,
		history: history,
		stream:  stream,
		opts:    opts,
		log:     logger.Component("scanner"),
	}
}

func analysisKey(tokenAddress string) string {
	return "analysis:" + strings.ToLower(tokenAddress)
}

// analyzeToken is the full pipeline for one token: features, rules,
// simulation, probability, aggregation. Extraction and rules cannot fail; a
// failed simulation degrades to an unknown outcome the aggregator scores
// conservatively.
func (s *Scanner) analyzeToken(ctx context.Context, token model.TokenRecord) (model.RiskVerdict, error) {
	fv := analysis.ExtractFeatures(ctx, token, s.chain)
	rules := analysis.EvaluateRules(fv)

	sim, err := s.oracle.Simulate(ctx, token)
	if err != nil {
		s.log.Warn("simulation failed", "token", token.Address, "error", err)
		sim = analysis.UnknownSimulation(err.Error())
	}

	prob := analysis.EstimateProbability(rules.Score, fv)
	verdict := s.agg.Aggregate(token, fv, rules, sim, prob)
	metrics.ScansTotal.WithLabelValues(string(verdict.Level)).Inc()
	return verdict, nil
}

// ScanWallet analyzes every token of one wallet. Tokens whose analysis was
// refused or failed keep their place in the result as conservative high-risk
// placeholders; they never silently vanish.
func (s *Scanner) ScanWallet(ctx context.Context, walletAddress string, tokens []model.TokenRecord, forceRefresh bool) (*model.ScanResult, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, apperrors.NewInvalidRequest("invalid wallet address: " + walletAddress)
	}
	wallet := common.HexToAddress(walletAddress).Hex()

	start := time.Now()

	verdicts, err := resilience.ExecuteBatch(ctx, s.co, tokens,
		func(t model.TokenRecord) string { return analysisKey(t.Address) },
		resilience.BatchOptions{
			BatchSize:    s.opts.BatchSize,
			Delay:        s.opts.BatchDelay,
			TTL:          s.opts.VerdictTTL,
			ForceRefresh: forceRefresh,
		},
		s.analyzeToken,
	)
	if err != nil {
		return nil, err
	}

	// Batch results drop failed items and lose input order; reconcile
	// against the token list so every holding has a verdict.
	byAddress := make(map[string]model.RiskVerdict, len(verdicts))
	for _, v := range verdicts {
		byAddress[strings.ToLower(v.TokenAddress)] = v
	}

	result := &model.ScanResult{
		ScanID:        uuid.NewString(),
		WalletAddress: wallet,
		Verdicts:      make([]model.RiskVerdict, 0, len(tokens)),
		StartedAt:     start,
	}
	for _, token := range tokens {
		v, ok := byAddress[strings.ToLower(token.Address)]
		if !ok {
			v = analysis.PlaceholderVerdict(token, apperrors.NewExhausted(analysisKey(token.Address)))
			metrics.ScansTotal.WithLabelValues(string(v.Level)).Inc()
		}
		result.Verdicts = append(result.Verdicts, v)

		switch v.Level {
		case model.RiskHigh:
			result.Summary.HighRiskCount++
			result.Summary.Flagged = append(result.Summary.Flagged, v.TokenAddress)
		case model.RiskMedium:
			result.Summary.MediumRiskCount++
		default:
			result.Summary.LowRiskCount++
		}
	}
	result.DurationMs = time.Since(start).Milliseconds()

	s.persist(ctx, result, tokens)
	return result, nil
}

// persist is best-effort: a dead store never fails a finished scan.
func (s *Scanner) persist(ctx context.Context, result *model.ScanResult, tokens []model.TokenRecord) {
	if s.store != nil {
		for _, v := range result.Verdicts {
			if err := s.store.SaveVerdict(ctx, v, s.opts.VerdictTTL); err != nil {
				s.log.Warn("verdict store write failed", "token", v.TokenAddress, "error", err)
				break
			}
		}
	}
	if s.history != nil {
		if err := s.history.Insert(ctx, result); err != nil {
			s.log.Warn("scan history write failed", "scan_id", result.ScanID, "error", err)
		}
	}
	if s.stream != nil {
		symbols := make([]string, 0, len(tokens))
		for _, t := range tokens {
			symbols = append(symbols, t.Symbol)
		}
		s.stream.Subscribe(symbols)
	}
}

// History lists past scans for one wallet, newest first.
func (s *Scanner) History(ctx context.Context, walletAddress string, limit int) ([]*model.ScanResult, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, apperrors.NewInvalidRequest("invalid wallet address: " + walletAddress)
	}
	if s.history == nil {
		return nil, nil
	}
	return s.history.ListByWallet(ctx, common.HexToAddress(walletAddress).Hex(), limit)
}

// TokenRisk returns the cached verdict for one token, if any.
func (s *Scanner) TokenRisk(ctx context.Context, tokenAddress string) (*model.RiskVerdict, error) {
	if !common.IsHexAddress(tokenAddress) {
		return nil, apperrors.NewInvalidRequest("invalid token address: " + tokenAddress)
	}
	if s.store == nil {
		return nil, apperrors.New(apperrors.ErrNotFound, "no verdict store configured", nil)
	}
	verdict, err := s.store.GetVerdict(ctx, tokenAddress)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if verdict == nil {
		return nil, apperrors.New(apperrors.ErrNotFound, "no verdict for token "+tokenAddress, nil)
	}
	return verdict, nil
}

// InvalidateToken drops the coordinator's cached analysis for one token so
// the next scan re-runs the full pipeline.
func (s *Scanner) InvalidateToken(tokenAddress string) error {
	if !common.IsHexAddress(tokenAddress) {
		return apperrors.NewInvalidRequest("invalid token address: " + tokenAddress)
	}
	s.co.Invalidate(analysisKey(tokenAddress))
	return nil
}

// Stats exposes coordinator internals for operational visibility.
func (s *Scanner) Stats() resilience.Stats {
	return s.co.Stats()
}
