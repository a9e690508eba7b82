package db

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"photosync/logger"
	"photosync/model"

	"go.uber.org/zap"
)

var DB *gorm.DB

func Init(dbPath string) error {
	gdb, err := Open(dbPath)
	if err != nil {
		return err
	}

	DB = gdb
	return nil
}

// Open opens or creates the database at dbPath and migrates the schema.
// A corrupt database is not fatal: it is removed and recreated, which
// costs a full rehash on the next scan but never an incorrect sync.
func Open(dbPath string) (*gorm.DB, error) {
	gdb, err := open(dbPath)
	if err == nil {
		return gdb, nil
	}

	if dbPath == ":memory:" {
		return nil, err
	}

	logger.Log.Warn("cache database unusable, discarding it",
		zap.String("path", dbPath),
		zap.Error(err))

	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove corrupt db: %w", err)
	}

	return open(dbPath)
}

func open(dbPath string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := gdb.AutoMigrate(&model.CacheEntry{}, &model.Run{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return gdb, nil
}
