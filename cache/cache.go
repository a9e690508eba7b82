package cache

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"photosync/digest"
	"photosync/model"
)

// Cache maps a file's filesystem fingerprint (path, size, mtime) to its
// content digest so unchanged files are never rehashed. The full table is
// loaded up front; scans mutate it in memory and Persist writes every
// change back in one transaction. A crash before Persist only loses the
// entries added this run, which costs a rehash, never a wrong digest.
type Cache struct {
	mu      sync.Mutex
	gdb     *gorm.DB
	entries map[string]model.CacheEntry
	dirty   map[string]model.CacheEntry
}

func Load(gdb *gorm.DB) (*Cache, error) {
	var rows []model.CacheEntry
	if err := gdb.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load cache entries: %w", err)
	}

	entries := make(map[string]model.CacheEntry, len(rows))
	for _, row := range rows {
		entries[row.Path] = row
	}

	return &Cache{
		gdb:     gdb,
		entries: entries,
		dirty:   make(map[string]model.CacheEntry),
	}, nil
}

// Lookup returns the cached digest for path, but only if the stored
// fingerprint matches size and modTime exactly. Anything else is a miss.
func (c *Cache) Lookup(path string, size int64, modTime time.Time) (digest.Digest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok || entry.Size != size || entry.ModTime != modTime.Unix() {
		return digest.Digest{}, false
	}

	d, err := digest.Parse(entry.Digest)
	if err != nil {
		// unparseable row, treat as miss and let Store overwrite it
		return digest.Digest{}, false
	}

	return d, true
}

// Store inserts or overwrites the entry for path.
func (c *Cache) Store(path string, size int64, modTime time.Time, d digest.Digest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := model.CacheEntry{
		Path:    path,
		Size:    size,
		ModTime: modTime.Unix(),
		Digest:  d.String(),
	}

	c.entries[path] = entry
	c.dirty[path] = entry
}

// Persist flushes all entries changed since Load in a single upsert
// transaction. Call it once after a clean pass.
func (c *Cache) Persist() error {
	c.mu.Lock()
	batch := make([]model.CacheEntry, 0, len(c.dirty))
	for _, entry := range c.dirty {
		batch = append(batch, entry)
	}
	c.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	err := c.gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		UpdateAll: true,
	}).CreateInBatches(batch, 500).Error
	if err != nil {
		return fmt.Errorf("failed to persist cache: %w", err)
	}

	c.mu.Lock()
	c.dirty = make(map[string]model.CacheEntry)
	c.mu.Unlock()

	return nil
}

// Prune drops entries whose path no longer exists on disk. Stale entries
// are only a space problem, so this is an explicit maintenance operation.
func (c *Cache) Prune() (int, error) {
	c.mu.Lock()
	var stale []string
	for path := range c.entries {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			stale = append(stale, path)
		}
	}

	for _, path := range stale {
		delete(c.entries, path)
		delete(c.dirty, path)
	}
	c.mu.Unlock()

	if len(stale) == 0 {
		return 0, nil
	}

	if err := c.gdb.Delete(&model.CacheEntry{}, "path IN ?", stale).Error; err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}

	return len(stale), nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
