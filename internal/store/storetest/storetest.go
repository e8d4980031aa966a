// Package storetest provides a migrated temporary aggregate store for tests.
package storetest

import (
	"path/filepath"
	"testing"

	"github.com/goran-ethernal/GnosisPayIndexor/internal/db"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/migrations"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/store"
	"github.com/stretchr/testify/require"
)

// New returns a store backed by a fresh SQLite file in t.TempDir().
func New(t testing.TB) *store.Store {
	t.Helper()

	database, err := db.OpenFile(filepath.Join(t.TempDir(), "aggregates.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	log := logger.NewNopLogger()
	require.NoError(t, migrations.RunMigrationsDB(log, database))

	s, err := store.New(database, log)
	require.NoError(t, err)

	return s
}
