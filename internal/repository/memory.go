package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/TokenLens/riskgate/internal/model"
)

// MemoryVerdictStore is the fallback verdict cache when Redis is not
// configured. Same contract, process-local only.
type MemoryVerdictStore struct {
	mu       sync.RWMutex
	verdicts map[string]memoryVerdict
}

type memoryVerdict struct {
	verdict   model.RiskVerdict
	expiresAt time.Time
}

func NewMemoryVerdictStore() *MemoryVerdictStore {
	return &MemoryVerdictStore{verdicts: make(map[string]memoryVerdict)}
}

func (s *MemoryVerdictStore) SaveVerdict(ctx context.Context, verdict model.RiskVerdict, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdicts[strings.ToLower(verdict.TokenAddress)] = memoryVerdict{
		verdict:   verdict,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryVerdictStore) GetVerdict(ctx context.Context, tokenAddress string) (*model.RiskVerdict, error) {
	s.mu.RLock()
	entry, ok := s.verdicts[strings.ToLower(tokenAddress)]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.verdicts, strings.ToLower(tokenAddress))
		s.mu.Unlock()
		return nil, nil
	}
	verdict := entry.verdict
	return &verdict, nil
}

// MemoryScanRepo keeps scan history in memory when Postgres is not
// configured.
type MemoryScanRepo struct {
	mu    sync.RWMutex
	scans []*model.ScanResult
}

func NewMemoryScanRepo() *MemoryScanRepo {
	return &MemoryScanRepo{}
}

func (r *MemoryScanRepo) Insert(ctx context.Context, scan *model.ScanResult) error {
	if scan == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans = append(r.scans, scan)
	return nil
}

// Cleanup drops scans older than the retention window.
func (r *MemoryScanRepo) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.scans[:0]
	var removed int64
	for _, scan := range r.scans {
		if scan.StartedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, scan)
	}
	r.scans = kept
	return removed, nil
}

func (r *MemoryScanRepo) ListByWallet(ctx context.Context, wallet string, limit int) ([]*model.ScanResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.ScanResult
	for _, scan := range r.scans {
		if strings.EqualFold(scan.WalletAddress, wallet) {
			out = append(out, scan)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
