package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrLeaseHeld is returned when another indexer instance holds a valid lease.
var ErrLeaseHeld = errors.New("indexer lease is held by another instance")

// AcquireLease takes or renews the single-writer lease for holder until now+ttl.
// It fails with ErrLeaseHeld while a different holder's lease has not expired.
func (s *Store) AcquireLease(ctx context.Context, holder string, ttl time.Duration, now time.Time) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		var current string
		var expiresAt int64
		err := tx.q.QueryRow(`SELECT holder, expires_at FROM indexer_lease WHERE id = 1`).Scan(&current, &expiresAt)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to read indexer lease: %w", err)
		case current != holder && expiresAt > now.Unix():
			return fmt.Errorf("%w: holder %s until %s", ErrLeaseHeld, current, time.Unix(expiresAt, 0).UTC())
		}

		if _, err := tx.q.Exec(`INSERT INTO indexer_lease (id, holder, expires_at, renewed_at) VALUES (1, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET holder = excluded.holder, expires_at = excluded.expires_at,
			renewed_at = excluded.renewed_at`,
			holder, now.Add(ttl).Unix(), now.Unix()); err != nil {
			return fmt.Errorf("failed to write indexer lease: %w", err)
		}
		return nil
	})
}

// ReleaseLease gives up the lease if holder still owns it.
func (s *Store) ReleaseLease(ctx context.Context, holder string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM indexer_lease WHERE id = 1 AND holder = ?`, holder); err != nil {
		return fmt.Errorf("failed to release indexer lease: %w", err)
	}
	return nil
}
