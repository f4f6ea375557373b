package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/TokenLens/riskgate/internal/model"
	"github.com/jmoiron/sqlx"
)

type PostgresScanRepo struct {
	db *sqlx.DB
}

func NewPostgresScanRepo(db *sqlx.DB) *PostgresScanRepo {
	repo := &PostgresScanRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresScanRepo) Insert(ctx context.Context, scan *model.ScanResult) error {
	if scan == nil {
		return nil
	}
	verdictsJSON, _ := json.Marshal(scan.Verdicts)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallet_scans (
			id, wallet_address, high_risk, medium_risk, low_risk,
			verdicts, started_at, duration_ms
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO NOTHING
	`, scan.ScanID, scan.WalletAddress,
		scan.Summary.HighRiskCount, scan.Summary.MediumRiskCount, scan.Summary.LowRiskCount,
		verdictsJSON, scan.StartedAt, scan.DurationMs)
	return err
}

func (r *PostgresScanRepo) ListByWallet(ctx context.Context, wallet string, limit int) ([]*model.ScanResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.QueryxContext(ctx, `
		SELECT id, wallet_address, high_risk, medium_risk, low_risk,
		       verdicts, started_at, duration_ms
		FROM wallet_scans
		WHERE wallet_address = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, wallet, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []*model.ScanResult
	for rows.Next() {
		var (
			scan         model.ScanResult
			verdictsJSON []byte
		)
		if err := rows.Scan(&scan.ScanID, &scan.WalletAddress,
			&scan.Summary.HighRiskCount, &scan.Summary.MediumRiskCount, &scan.Summary.LowRiskCount,
			&verdictsJSON, &scan.StartedAt, &scan.DurationMs); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(verdictsJSON, &scan.Verdicts)
		for _, v := range scan.Verdicts {
			if v.Level == model.RiskHigh {
				scan.Summary.Flagged = append(scan.Summary.Flagged, v.TokenAddress)
			}
		}
		scans = append(scans, &scan)
	}
	return scans, rows.Err()
}

// Cleanup drops scans older than the retention window.
func (r *PostgresScanRepo) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wallet_scans WHERE started_at < $1`,
		time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresScanRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS wallet_scans (
			id TEXT PRIMARY KEY,
			wallet_address TEXT NOT NULL,
			high_risk INTEGER NOT NULL DEFAULT 0,
			medium_risk INTEGER NOT NULL DEFAULT 0,
			low_risk INTEGER NOT NULL DEFAULT 0,
			verdicts JSONB NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			duration_ms BIGINT NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_wallet_scans_wallet
			ON wallet_scans (wallet_address, started_at DESC)
	`)
	return err
}
