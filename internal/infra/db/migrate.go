package db

import (
	"database/sql"
	"fmt"
)

// MigrateUp creates the settings schema for the given driver.
func MigrateUp(db *sql.DB, driver string) error {
	timestampType := "TIMESTAMP"
	if driver == DriverPostgres {
		timestampType = "TIMESTAMPTZ"
	}

	if _, err := db.Exec(fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at %s NOT NULL
)`, timestampType)); err != nil {
		return err
	}

	return nil
}

// MigrateDown drops the settings schema.
// Use with caution: this will delete all persisted settings.
func MigrateDown(db *sql.DB) error {
	_, err := db.Exec(`DROP TABLE IF EXISTS settings`)
	return err
}
