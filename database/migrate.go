package database

import (
	"realty_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate applies the schema. uuid_generate_v4 needs the uuid-ossp
// extension; creating it is idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Listing{},
		&models.SavedListing{},
		&models.Review{},
		&models.Conversation{},
		&models.Message{},
		&models.ListingSubscription{},
		&models.PaymentTransaction{},
		&models.Upload{},
	)
}
