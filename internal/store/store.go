package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goran-ethernal/GnosisPayIndexor/internal/db"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a write-once record is inserted twice.
	ErrAlreadyExists = errors.New("already exists")
)

// aggregateTables lists the tables cleared on a restart, children first.
var aggregateTables = []string{
	"reward_distributions",
	"week_metrics_snapshots",
	"week_cashback_rewards",
	"gno_balance_snapshots",
	"transactions",
	"safe_owners",
	"safes",
	"tokens",
	"blocks",
}

// Store is the aggregate store. Reads on Store see committed data only;
// multi-record writes go through WithTx.
type Store struct {
	queries

	db  *sql.DB
	log *logger.Logger
}

// Tx exposes the store queries inside a single database transaction.
type Tx struct {
	queries
}

type queries struct {
	q meddler.DB
}

// New creates a new aggregate store on an already migrated database.
func New(database *sql.DB, log *logger.Logger) (*Store, error) {
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Store{
		queries: queries{q: database},
		db:      database,
		log:     log,
	}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn inside one database transaction.
// The transaction is committed when fn returns nil and rolled back otherwise,
// so no partial aggregate update is ever visible.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	start := time.Now()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := sqlTx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.log.Errorf("failed to rollback transaction: %v", err)
		}
	}()

	if err := fn(&Tx{queries: queries{q: sqlTx}}); err != nil {
		db.TxRolledBackInc()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		db.TxRolledBackInc()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	db.TxCommittedInc()
	db.TxDurationLog(time.Since(start))

	return nil
}

// Wipe deletes every aggregate record in one transaction.
func (s *Store) Wipe(ctx context.Context) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		for _, table := range aggregateTables {
			if _, err := tx.q.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to wipe %s: %w", table, err)
			}
		}
		return nil
	})
}

// isUniqueViolation reports whether err is a primary key or unique constraint violation.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", fmt.Sprintf(format, args...), err)
}

func (q queries) exists(query string, args ...any) (bool, error) {
	var one int
	err := q.q.QueryRow(query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
