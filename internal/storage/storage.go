// Package storage implements the durable per-session stores and the document
// and job-catalog persistence on sqlite via gorm. Stores are constructed at
// process start and passed by handle; no package-level state.
package storage

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens (or creates) the sqlite database and migrates the schema.
// Use ":memory:" for tests.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&turnRow{}, &preferenceRow{}, &documentRow{}, &chunkRow{}, &jobRow{}); err != nil {
		return nil, err
	}
	return db, nil
}
