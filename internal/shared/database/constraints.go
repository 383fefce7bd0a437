package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds indexes the hot paths depend on beyond what
// AutoMigrate derives from struct tags.
func MigrateConstraints(db *gorm.DB) error {
	// The janitor and the hold predicate both scan for lapsed holds; a
	// partial index keeps that scan bounded by the number of live holds.
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seats_held_until
		ON seats (held_until)
		WHERE status = 'HELD';
	`).Error
	if err != nil {
		return err
	}

	// Seat-code resolution on the hold path.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seats_session_seat_code
		ON seats (session_id, seat_code);
	`).Error
	if err != nil {
		return err
	}

	// The seat-map projection merges issued tickets per session.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_session_seat
		ON tickets (session_id, seat_id);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
