package initializers

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shivang-26/techCommunity-website/internals/config"
	"github.com/shivang-26/techCommunity-website/internals/models"
)

// ConnectToDb opens the database named by DB_URL and migrates the schema.
func ConnectToDb() (*gorm.DB, error) {
	dsn := config.GetEnv("DB_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if err := SyncDatabase(db); err != nil {
		return nil, err
	}
	return db, nil
}

// SyncDatabase migrates every persisted model. The scs session table is
// created by its own store, not here.
func SyncDatabase(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.ForumPost{},
		&models.Answer{},
		&models.PostVote{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
