package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS plate_detections (
		id               UUID PRIMARY KEY,
		plate            TEXT NOT NULL,
		normalized_plate TEXT NOT NULL,
		pattern_used     TEXT NOT NULL,
		filter_enabled   BOOLEAN NOT NULL,
		filter_settings  JSONB,
		accepted_at      TIMESTAMPTZ NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_plate_detections_normalized ON plate_detections(normalized_plate);`,
	`CREATE INDEX IF NOT EXISTS idx_plate_detections_accepted_at ON plate_detections(accepted_at);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
