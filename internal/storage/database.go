package storage

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camuig/bot-dashboard/internal/config"
)

// Open connects to the bot's store. Postgres URLs go through the pgx-backed
// driver; anything else is treated as a SQLite path for local development.
// The dashboard never migrates or writes — the bot owns the schema.
func Open(store config.StoreConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if store.IsPostgres() {
		dialector = postgres.Open(store.DSN())
	} else {
		dialector = sqlite.Open(store.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return db, nil
}
