package database

import (
	"cineseat/internal/checkout"
	"cineseat/internal/inventory"
	"cineseat/internal/sessions"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	if err := db.AutoMigrate(
		&sessions.Session{},
		&inventory.Seat{},
		&checkout.Cart{},
		&checkout.CartItem{},
		&checkout.PaymentIntent{},
		&checkout.Ticket{},
		&checkout.Order{},
	); err != nil {
		return err
	}

	return MigrateConstraints(db)
}
