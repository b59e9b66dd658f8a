package repository

import (
	"fmt"
	"os"

	"github.com/Omballaa/eni-sortir/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB() (*gorm.DB, error) {
	// Build connection string
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
	)

	// Connect to database
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.User{},
		&models.Outing{},
		&models.Registration{},
		&models.Group{},
		&models.Membership{},
		&models.Message{},
		&models.ReadStatus{},
	); err != nil {
		return nil, err
	}

	// A message belongs to a group XOR a direct recipient. The constructors
	// guarantee this in application code; the constraint closes the gap for
	// anything that writes the table directly.
	if err := db.Exec(`
		ALTER TABLE messages DROP CONSTRAINT IF EXISTS chk_messages_group_xor_recipient;
		ALTER TABLE messages ADD CONSTRAINT chk_messages_group_xor_recipient
			CHECK ((group_id IS NULL) != (recipient_id IS NULL))
	`).Error; err != nil {
		return nil, err
	}

	return db, nil
}
