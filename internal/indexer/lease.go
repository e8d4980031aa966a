package indexer

import (
	"context"
	"fmt"
	"time"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/metrics"
)

const leaseReleaseTimeout = 5 * time.Second

func (i *Indexer) acquireLease(ctx context.Context) error {
	if err := i.store.AcquireLease(ctx, i.holder, i.cfg.LeaseTTL, time.Now()); err != nil {
		return fmt.Errorf("failed to acquire indexer lease: %w", err)
	}

	metrics.LeaseHeldSet(true)
	i.log.Infow("indexer lease acquired", "holder", i.holder, "ttl", i.cfg.LeaseTTL)
	return nil
}

// renewLease extends the lease every third of its TTL. A failed renewal stops indexing.
func (i *Indexer) renewLease(ctx context.Context) error {
	ticker := time.NewTicker(i.cfg.LeaseTTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := i.store.AcquireLease(ctx, i.holder, i.cfg.LeaseTTL, time.Now()); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				metrics.LeaseHeldSet(false)
				metrics.ErrorsInc(intcommon.ComponentLease, "critical")
				return fmt.Errorf("failed to renew indexer lease: %w", err)
			}
		}
	}
}

func (i *Indexer) releaseLease() {
	ctx, cancel := context.WithTimeout(context.Background(), leaseReleaseTimeout)
	defer cancel()

	if err := i.store.ReleaseLease(ctx, i.holder); err != nil {
		i.log.Warnw("failed to release indexer lease", "holder", i.holder, "error", err)
	}
	metrics.LeaseHeldSet(false)
}
