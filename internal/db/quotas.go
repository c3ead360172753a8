package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/recipe-share/internal/quota"
)

// QuotaStore implements quota.Ledger on Postgres. The daily rollover is
// folded into each statement so check and reset happen in one round trip;
// increments are single additive UPDATEs, atomic on the server.
type QuotaStore struct {
	db  *DB
	now func() time.Time
}

// NewQuotaStore creates a QuotaStore. A nil clock defaults to time.Now.
func NewQuotaStore(db *DB, now func() time.Time) *QuotaStore {
	if now == nil {
		now = time.Now
	}
	return &QuotaStore{db: db, now: now}
}

var _ quota.Ledger = (*QuotaStore)(nil)

// CheckAndReserve reports whether another import from the domain is allowed.
// An absent record counts as zero usage; an empty domain is always allowed.
func (s *QuotaStore) CheckAndReserve(ctx context.Context, domain string) (bool, error) {
	if domain == "" {
		return true, nil
	}

	now := s.now()
	var daily, rolling int
	err := s.db.pool.QueryRow(ctx,
		`SELECT CASE WHEN $2 - daily_reset_at >= INTERVAL '24 hours' THEN 0 ELSE daily_count END,
		        rolling_count_90d
		 FROM domain_quotas WHERE domain = $1`,
		domain, now,
	).Scan(&daily, &rolling)
	if err != nil {
		if err == pgx.ErrNoRows {
			return true, nil
		}
		return false, fmt.Errorf("failed to check domain quota: %w", err)
	}

	return daily < quota.MaxDaily && rolling < quota.Max90Days, nil
}

// Increment records one successful compliant import from the domain. The
// lazy daily reset and the additive bump happen in one UPDATE.
func (s *QuotaStore) Increment(ctx context.Context, domain string) error {
	if domain == "" {
		return nil
	}

	now := s.now()
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO domain_quotas (domain, daily_count, daily_reset_at, rolling_count_90d, last_import_at)
		 VALUES ($1, 1, $2, 1, $2)
		 ON CONFLICT (domain) DO UPDATE SET
		   daily_count = CASE WHEN $2 - domain_quotas.daily_reset_at >= INTERVAL '24 hours'
		                      THEN 1 ELSE domain_quotas.daily_count + 1 END,
		   daily_reset_at = CASE WHEN $2 - domain_quotas.daily_reset_at >= INTERVAL '24 hours'
		                         THEN $2 ELSE domain_quotas.daily_reset_at END,
		   rolling_count_90d = domain_quotas.rolling_count_90d + 1,
		   last_import_at = $2`,
		domain, now,
	)
	if err != nil {
		return fmt.Errorf("failed to increment domain quota: %w", err)
	}
	return nil
}
