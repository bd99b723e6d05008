package database

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studiocast/rundown/config"
	"github.com/studiocast/rundown/models"
)

var DB *gorm.DB

func Connect() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	// Retry mechanism: the database container may still be starting
	var err error
	for i := 0; i < 30; i++ {
		DB, err = gorm.Open(postgres.Open(dbURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			config.Log.Info("Connected to database")
			break
		}
		config.Log.WithError(err).Warn("Failed to connect to database, retrying in 1 second")
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return err
	}

	return Migrate(DB)
}

// Migrate creates or updates the schema for every model this service owns,
// plus the read-only catalog table the upstream curation pipeline fills.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Rundown{},
		&models.Segment{},
		&models.Talent{},
		&models.StoryLink{},
		&models.CatalogStory{},
	)
}
