package database

import (
	"fmt"

	"github.com/mx-space/portfolio/internal/config"
	"github.com/mx-space/portfolio/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a MySQL connection and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	db, err := openDB(cfg, resolveLogLevel(cfg))
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return db, nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	return sqlDB.Close()
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if cfg.IsDev() {
		return logger.Info
	}
	return logger.Warn
}

func openDB(cfg *config.AppConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.Database.DSNValue(),
		DefaultStringSize: 191,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

// migrate runs GORM auto-migration for all stored models.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserModel{},
		&models.CategoryModel{},
		&models.ProjectModel{},
		&models.BlogPostModel{},
		&models.MessageModel{},
	)
}
