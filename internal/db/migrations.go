package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: menu pages always load one restaurant's items.
	`CREATE INDEX IF NOT EXISTS idx_menu_items_restaurant
	     ON menu_items(restaurant_id, created_at)`,
	// Migration 2: expired image cleanup scans by age.
	`CREATE INDEX IF NOT EXISTS idx_images_created_at ON images(created_at)`,
}

// Migrate ensures the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
