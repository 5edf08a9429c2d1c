package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,

	// Append-only audit of decode attempts. The decode path itself
	// never reads this table; it serves the admin listing and export.
	`CREATE TABLE IF NOT EXISTS decode_lookups (
		id          UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		kind        TEXT NOT NULL,
		query       TEXT NOT NULL,
		normalized  TEXT NOT NULL,
		region      TEXT,
		status      TEXT NOT NULL,
		error       TEXT,
		year        TEXT,
		make        TEXT,
		model       TEXT,
		raw_result  JSONB,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_decode_lookups_normalized ON decode_lookups(normalized);`,
	`CREATE INDEX IF NOT EXISTS idx_decode_lookups_kind ON decode_lookups(kind);`,
	`CREATE INDEX IF NOT EXISTS idx_decode_lookups_created_at ON decode_lookups(created_at);`,

	// Covering index for the "history of one identifier" listing.
	`CREATE INDEX IF NOT EXISTS idx_decode_lookups_normalized_time ON decode_lookups(normalized, created_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
