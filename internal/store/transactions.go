package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"

	intcommon "github.com/goran-ethernal/GnosisPayIndexor/internal/common"
)

// TransactionExists reports whether the transaction with the given hash was already processed.
func (q queries) TransactionExists(id common.Hash) (bool, error) {
	ok, err := q.exists(`SELECT 1 FROM transactions WHERE id = ?`, id.Hex())
	if err != nil {
		return false, fmt.Errorf("failed to check transaction %s: %w", id.Hex(), err)
	}
	return ok, nil
}

// InsertTransaction stores t. A second insert of the same hash returns ErrAlreadyExists.
func (q queries) InsertTransaction(t *Transaction) error {
	if err := meddler.Insert(q.q, "transactions", t); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction %s: %w", t.ID.Hex(), ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", t.ID.Hex(), err)
	}
	return nil
}

// GetTransaction returns the transaction with the given hash.
func (q queries) GetTransaction(id common.Hash) (*Transaction, error) {
	var t Transaction
	if err := meddler.QueryRow(q.q, &t, `SELECT * FROM transactions WHERE id = ?`, id.Hex()); err != nil {
		return nil, notFound(err, "transaction %s", id.Hex())
	}
	return &t, nil
}

// ListTransactionsBySafe returns the transactions of a Safe, newest first. A zero limit returns all of them.
func (q queries) ListTransactionsBySafe(addr common.Address, limit int) ([]*Transaction, error) {
	query := `SELECT * FROM transactions WHERE safe_address = ? ORDER BY block_number DESC, log_index DESC`
	args := []any{intcommon.NormalizeAddress(addr)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var txs []*Transaction
	if err := meddler.QueryAll(q.q, &txs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions of safe %s: %w", addr.Hex(), err)
	}
	return txs, nil
}

// ListTransactionsBySafeWeek returns the transactions of a Safe within a week, in log order.
func (q queries) ListTransactionsBySafeWeek(addr common.Address, week intcommon.WeekID) ([]*Transaction, error) {
	var txs []*Transaction
	if err := meddler.QueryAll(q.q, &txs,
		`SELECT * FROM transactions WHERE safe_address = ? AND week_id = ? ORDER BY block_number, log_index`,
		intcommon.NormalizeAddress(addr), string(week)); err != nil {
		return nil, fmt.Errorf("failed to list transactions of safe %s in week %s: %w", addr.Hex(), week, err)
	}
	return txs, nil
}

// ListTransactionsByWeek returns all transactions of a week, in log order.
func (q queries) ListTransactionsByWeek(week intcommon.WeekID) ([]*Transaction, error) {
	var txs []*Transaction
	if err := meddler.QueryAll(q.q, &txs,
		`SELECT * FROM transactions WHERE week_id = ? ORDER BY block_number, log_index`, string(week)); err != nil {
		return nil, fmt.Errorf("failed to list transactions of week %s: %w", week, err)
	}
	return txs, nil
}

// HighWaterMark returns the block of the most recently persisted transaction.
// The boolean is false when no transaction has been stored yet.
func (q queries) HighWaterMark() (uint64, bool, error) {
	var block sql.NullInt64
	err := q.q.QueryRow(`SELECT MAX(block_number) FROM transactions`).Scan(&block)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to get high-water mark: %w", err)
	}
	if !block.Valid {
		return 0, false, nil
	}
	return uint64(block.Int64), true, nil //nolint:gosec
}

// InsertSnapshot stores a GNO balance snapshot. It reports false when a snapshot for the same
// (block, safe) already exists, which is expected for several transfers in one block.
func (q queries) InsertSnapshot(s *GnoBalanceSnapshot) (bool, error) {
	res, err := q.q.Exec(`INSERT OR IGNORE INTO gno_balance_snapshots
		(id, safe_address, week_id, balance_raw, balance, block_number, block_timestamp, log_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, intcommon.NormalizeAddress(s.SafeAddress), string(s.WeekID), s.BalanceRaw.String(),
		s.Balance.String(), s.BlockNumber, s.BlockTimestamp, s.LogIndex)
	if err != nil {
		return false, fmt.Errorf("failed to insert snapshot %s: %w", s.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert snapshot %s: %w", s.ID, err)
	}
	return n > 0, nil
}

// AdvanceSnapshot records that the transfer at logIndex was applied to an existing snapshot.
// It reports false when that log (or a later one of the same block) was already applied.
func (q queries) AdvanceSnapshot(id string, logIndex uint) (bool, error) {
	res, err := q.q.Exec(`UPDATE gno_balance_snapshots SET log_index = ? WHERE id = ? AND log_index < ?`,
		logIndex, id, logIndex)
	if err != nil {
		return false, fmt.Errorf("failed to advance snapshot %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to advance snapshot %s: %w", id, err)
	}
	return n > 0, nil
}

// ListSnapshotsBySafeWeek returns the balance snapshots of a Safe within a week, oldest first.
func (q queries) ListSnapshotsBySafeWeek(addr common.Address, week intcommon.WeekID) ([]*GnoBalanceSnapshot, error) {
	var snaps []*GnoBalanceSnapshot
	if err := meddler.QueryAll(q.q, &snaps,
		`SELECT * FROM gno_balance_snapshots WHERE safe_address = ? AND week_id = ? ORDER BY block_number`,
		intcommon.NormalizeAddress(addr), string(week)); err != nil {
		return nil, fmt.Errorf("failed to list snapshots of safe %s in week %s: %w", addr.Hex(), week, err)
	}
	return snaps, nil
}

// ListSnapshotsByWeek returns all balance snapshots of a week, oldest first.
func (q queries) ListSnapshotsByWeek(week intcommon.WeekID) ([]*GnoBalanceSnapshot, error) {
	var snaps []*GnoBalanceSnapshot
	if err := meddler.QueryAll(q.q, &snaps,
		`SELECT * FROM gno_balance_snapshots WHERE week_id = ? ORDER BY block_number, safe_address`,
		string(week)); err != nil {
		return nil, fmt.Errorf("failed to list snapshots of week %s: %w", week, err)
	}
	return snaps, nil
}
