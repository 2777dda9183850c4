package database

import (
	"context"
	"errors"
	"time"

	"github.com/thereayou/matcha/internal/models"
	"github.com/thereayou/matcha/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens postgres, migrates the schema this core reads and writes,
// and returns a ready Database.
func Connect(dsn string, timeout time.Duration) (*Database, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Message{},
		&models.Notification{},
		&models.Block{},
		&models.Like{},
	)
	if err != nil {
		return nil, err
	}

	logger.Info(context.Background(), "postgres connected", logger.Duration("storage_timeout", timeout))
	return NewDatabase(db, timeout), nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
