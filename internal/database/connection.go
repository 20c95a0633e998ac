// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vatsal2312/TinyAstro/internal/config"
	"github.com/vatsal2312/TinyAstro/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.Asset{},
		&models.EmissionRate{},
		&models.RentalDuration{},
		&models.StakedAsset{},
		&models.StakerRecord{},
		&models.PassRecipient{},
		&models.Lease{},
		&models.LeaseHolder{},
		&models.PlatformState{},
		&models.CurrencyAccount{},
		&models.RewardAccount{},
		&models.Transaction{},
		&models.LedgerEvent{},
		&models.Operator{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedInitialData installs the collection mirror, default emission rates,
// rental durations, and the platform state row if they are missing.
func SeedInitialData(db *gorm.DB, cfg *config.Config) error {
	log.Println("Seeding initial data...")

	var assetCount int64
	db.Model(&models.Asset{}).Count(&assetCount)
	if assetCount == 0 {
		for id := int64(1); id <= cfg.Staking.CollectionSize; id++ {
			if err := db.Create(&models.Asset{TokenID: id}).Error; err != nil {
				return fmt.Errorf("failed to seed asset %d: %w", id, err)
			}
		}
		log.Printf("Seeded %d collection assets", cfg.Staking.CollectionSize)
	}

	for _, days := range cfg.Staking.DefaultDurations {
		var count int64
		db.Model(&models.RentalDuration{}).Where("days = ?", days).Count(&count)
		if count == 0 {
			if err := db.Create(&models.RentalDuration{Days: days}).Error; err != nil {
				return fmt.Errorf("failed to seed rental duration %d: %w", days, err)
			}
		}
	}

	var stateCount int64
	db.Model(&models.PlatformState{}).Count(&stateCount)
	if stateCount == 0 {
		state := &models.PlatformState{
			ID:                   1,
			EarningFractionBps:   cfg.Leasing.EarningFractionBps,
			MaxLeaseDurationDays: cfg.Leasing.MaxLeaseDurationDays,
			FeePool:              models.NewBigInt(0),
		}
		if err := db.Create(state).Error; err != nil {
			return fmt.Errorf("failed to seed platform state: %w", err)
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
