package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/quckapp/moderation-service/internal/models"
)

// Connect opens a MySQL connection via GORM and verifies it with a ping.
func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("db: underlying handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	return gdb, nil
}

// AutoMigrate creates or updates the moderation tables.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.ModerationRule{},
		&models.ModerationEvent{},
	)
}
