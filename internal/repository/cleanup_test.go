package repository

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TokenLens/riskgate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCleaner struct{ calls int32 }

func (c *countingCleaner) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	atomic.AddInt32(&c.calls, 1)
	return 1, nil
}

func TestCleanupWorkerRunsPeriodically(t *testing.T) {
	c := &countingCleaner{}
	w := StartCleanup(c, 10*time.Millisecond, time.Hour)

	time.Sleep(60 * time.Millisecond)
	w.Stop()

	// Let any in-flight pass settle before sampling the count
	time.Sleep(20 * time.Millisecond)
	ran := atomic.LoadInt32(&c.calls)
	if ran < 2 {
		t.Fatalf("expected at least 2 cleanup passes, got %d", ran)
	}

	// No more passes after Stop
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, ran, atomic.LoadInt32(&c.calls))
}

func TestCleanupWorkerStopIsIdempotent(t *testing.T) {
	w := StartCleanup(&countingCleaner{}, time.Hour, time.Hour)
	w.Stop()
	w.Stop()
}

func TestMemoryScanRepoCleanupDropsOldScans(t *testing.T) {
	r := NewMemoryScanRepo()
	ctx := context.Background()
	wallet := "0x1234567890AbcdEF1234567890aBcdef12345678"

	require.NoError(t, r.Insert(ctx, &model.ScanResult{
		ScanID: "old", WalletAddress: wallet, StartedAt: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, r.Insert(ctx, &model.ScanResult{
		ScanID: "fresh", WalletAddress: wallet, StartedAt: time.Now(),
	}))

	removed, err := r.Cleanup(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	scans, err := r.ListByWallet(ctx, wallet, 10)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, "fresh", scans[0].ScanID)
}
