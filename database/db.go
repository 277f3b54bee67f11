package database

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lab-booking/database/seeders"
	"lab-booking/logger"
	bookingModel "lab-booking/models/booking"
	catalogModel "lab-booking/models/catalog"
	logModel "lab-booking/models/log"
	reportModel "lab-booking/models/report"
	userModel "lab-booking/models/user"
)

// InitDB opens the Postgres connection, migrates the schema and seeds
// reference data on first run.
func InitDB() (*gorm.DB, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(db); err != nil {
		logger.Error("Failed to migrate database schema", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	seeders.SeedTestCatalog(db)
	seeders.SeedPrivilegedAccounts(db)

	return db, nil
}

// autoMigrate runs auto migration for all models, parents before children.
func autoMigrate(db *gorm.DB) error {
	// Stage 1: models without foreign keys
	stage1Models := []interface{}{
		&userModel.User{},
		&catalogModel.TestCategory{},
		&logModel.Log{},
	}

	for _, model := range stage1Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: models referencing stage 1
	stage2Models := []interface{}{
		&catalogModel.Test{},
		&bookingModel.Booking{},
	}

	for _, model := range stage2Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: models referencing bookings
	stage3Models := []interface{}{
		&bookingModel.BookingStatusEvent{},
		&reportModel.Report{},
	}

	for _, model := range stage3Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}
