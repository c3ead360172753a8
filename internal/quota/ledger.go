// Package quota rate-limits how much content from any one source domain is
// processed: a daily cap and a rolling 90-day cap per domain. Rollover is
// lazy, evaluated on access, with no background sweeper.
package quota

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/recipe-share/internal/types"
)

// Policy constants. A lost increment only weakens the rate limit, so the
// counters are correctness-desirable, not safety-critical.
const (
	// MaxDaily is the per-domain daily import cap.
	MaxDaily = 10
	// Max90Days is the per-domain rolling 90-day cap. The counter is
	// monotonic: old increments never decay. Accepted simplification
	// carried over from the source system, not a defect to fix silently.
	Max90Days = 100
)

// Ledger tracks per-domain usage. CheckAndReserve is called before a recipe
// is processed; Increment only after it was made compliant and persisted.
type Ledger interface {
	CheckAndReserve(ctx context.Context, domain string) (bool, error)
	Increment(ctx context.Context, domain string) error
}

// MemoryLedger is an in-process Ledger. Suitable for single-node
// deployments and tests; the db package provides the durable variant.
type MemoryLedger struct {
	mu      sync.Mutex
	records map[string]*types.DomainQuota
	now     func() time.Time
}

// NewMemoryLedger creates a MemoryLedger. A nil clock defaults to time.Now.
func NewMemoryLedger(now func() time.Time) *MemoryLedger {
	if now == nil {
		now = time.Now
	}
	return &MemoryLedger{
		records: make(map[string]*types.DomainQuota),
		now:     now,
	}
}

// CheckAndReserve reports whether another import from the domain is allowed.
// An absent record counts as zero usage; an empty domain is always allowed
// since there is no source to attribute.
func (l *MemoryLedger) CheckAndReserve(_ context.Context, domain string) (bool, error) {
	if domain == "" {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[domain]
	if !ok {
		return true, nil
	}

	l.rollover(rec)
	if rec.DailyCount >= MaxDaily || rec.RollingCount90d >= Max90Days {
		return false, nil
	}
	return true, nil
}

// Increment records one successful compliant import from the domain.
func (l *MemoryLedger) Increment(_ context.Context, domain string) error {
	if domain == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[domain]
	if !ok {
		rec = &types.DomainQuota{Domain: domain, DailyResetAt: now}
		l.records[domain] = rec
	}

	l.rollover(rec)
	rec.DailyCount++
	rec.RollingCount90d++
	rec.LastImportAt = now
	return nil
}

// Snapshot returns a copy of the record for a domain, or nil if the domain
// has never been seen. Exposed for operational inspection.
func (l *MemoryLedger) Snapshot(domain string) *types.DomainQuota {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[domain]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// rollover resets the daily counter once 24h have passed since the last
// reset. Caller holds the mutex.
func (l *MemoryLedger) rollover(rec *types.DomainQuota) {
	now := l.now()
	if now.Sub(rec.DailyResetAt) >= 24*time.Hour {
		rec.DailyCount = 0
		rec.DailyResetAt = now
	}
}
