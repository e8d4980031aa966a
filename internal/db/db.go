package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
	_ "github.com/mattn/go-sqlite3"
)

// Open opens the aggregate store database. Every setting is part of the DSN, so each pooled
// connection gets it: write transactions take the lock up front (_txlock=immediate) and
// foreign keys are enforced, since transaction and snapshot rows reference their Safe.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	cfg.ApplyDefaults()

	database, err := sql.Open("sqlite3", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Path, err)
	}

	database.SetMaxOpenConns(cfg.MaxOpenConnections)
	database.SetMaxIdleConns(cfg.MaxIdleConnections)

	var foreignKeys int
	if err := database.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Path, err)
	}
	if foreignKeys != 1 {
		database.Close()
		return nil, fmt.Errorf("database %s: foreign keys are not enforced", cfg.Path)
	}

	return database, nil
}

// OpenFile opens the database at path with the default settings.
func OpenFile(path string) (*sql.DB, error) {
	return Open(config.DatabaseConfig{Path: path})
}

// DSN builds the go-sqlite3 connection string for cfg.
func DSN(cfg config.DatabaseConfig) string {
	params := url.Values{}
	params.Set("_txlock", "immediate")
	params.Set("_foreign_keys", "on")
	params.Set("_journal_mode", cfg.JournalMode)
	params.Set("_synchronous", cfg.Synchronous)
	params.Set("_busy_timeout", strconv.Itoa(cfg.BusyTimeout))
	params.Set("_cache_size", strconv.Itoa(cfg.CacheSize))

	return "file:" + cfg.Path + "?" + params.Encode()
}
