package database

import (
	"log"

	"gorm.io/gorm"
)

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateAlertStatusField(db); err != nil {
		return err
	}
	return nil
}

// migrateAlertStatusField migrates the legacy is_active/triggered_at
// columns to the status enum. Safe to run multiple times: it only
// touches rows where status is NULL or empty.
func migrateAlertStatusField(db *gorm.DB) error {
	if !db.Migrator().HasTable("alerts") {
		return nil
	}

	if db.Migrator().HasColumn("alerts", "is_active") {
		log.Println("Migrating alerts: is_active/triggered_at -> status")

		result := db.Exec(`
			UPDATE alerts
			SET status = CASE
				WHEN triggered_at IS NOT NULL THEN 'triggered'
				WHEN is_active = 0 THEN 'cancelled'
				ELSE 'active'
			END
			WHERE status IS NULL OR status = ''
		`)
		if result.Error != nil {
			log.Printf("Warning: failed to migrate alerts is_active column: %v", result.Error)
		} else {
			log.Printf("Migrated %d alert rows", result.RowsAffected)
		}
	}

	// Ensure every alert carries a status value
	db.Exec(`UPDATE alerts SET status = 'active' WHERE status IS NULL OR status = ''`)

	// Enforce the triggered_at <-> status invariant on legacy rows
	db.Exec(`UPDATE alerts SET status = 'triggered' WHERE triggered_at IS NOT NULL AND status = 'active'`)

	return nil
}
