package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/goran-ethernal/GnosisPayIndexor/internal/db"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
)

//go:embed 001_aggregates.sql
var mig001 string

//go:embed 002_indexer_lease.sql
var mig002 string

// All returns the aggregate store migrations in order.
func All() []db.Migration {
	return []db.Migration{
		{
			ID:  "001_aggregates.sql",
			SQL: mig001,
		},
		{
			ID:  "002_indexer_lease.sql",
			SQL: mig002,
		},
	}
}

// RunMigrationsDB applies the aggregate store migrations to an open database.
func RunMigrationsDB(log *logger.Logger, database *sql.DB) error {
	return db.RunMigrationsDB(log, database, All())
}
