package model

import (
	"time"

	"gorm.io/gorm"
)

// CacheEntry is the persisted fingerprint-to-digest mapping for one path.
// It is only trusted while the file's size and mtime still match.
type CacheEntry struct {
	Path    string `gorm:"primaryKey"`
	Size    int64  `gorm:"not null"`
	ModTime int64  `gorm:"not null"` // unix seconds
	Digest  string `gorm:"not null"`
}

// Run is the stored summary of one completed sync run.
type Run struct {
	gorm.Model
	Source      string    `gorm:"not null"`
	Destination string    `gorm:"not null"`
	Scanned     int       `gorm:"not null"`
	Copied      int       `gorm:"not null"`
	Duplicates  int       `gorm:"not null"`
	BytesCopied int64     `gorm:"not null"`
	Warnings    int       `gorm:"not null"`
	Failures    int       `gorm:"not null"`
	StartedAt   time.Time `gorm:"not null"`
	DurationMS  int64     `gorm:"not null"`
}
