package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

var setupSQL = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	`CREATE EXTENSION IF NOT EXISTS vector;`,
}

// Migrate enables the extensions AutoMigrate cannot create and then migrates models.
func Migrate(ctx context.Context, db *gorm.DB, models ...interface{}) error {
	for _, stmt := range setupSQL {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("setup %q: %w", stmt, err)
		}
	}
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
