package model

import (
	"sync"
	"time"

	"photosync/digest"
)

// FileRecord is one regular file observed during a scan. The path is where
// the file happened to live at scan time; identity is the digest.
type FileRecord struct {
	Path    string
	Size    int64
	ModTime time.Time
	Digest  digest.Digest
}

// Index maps content digests to one canonical path each. When several
// paths carry the same bytes, the lexicographically smallest path wins so
// the choice is stable across runs. Safe for concurrent use.
type Index struct {
	mu      sync.Mutex
	entries map[digest.Digest]FileRecord
	names   map[string]struct{}
}

func NewIndex() *Index {
	return &Index{
		entries: make(map[digest.Digest]FileRecord),
		names:   make(map[string]struct{}),
	}
}

// Add records rec under its digest. Returns false if another path already
// represents the same digest and keeps its place as canonical.
func (ix *Index) Add(rec FileRecord) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	prev, ok := ix.entries[rec.Digest]
	if !ok {
		ix.entries[rec.Digest] = rec
		return true
	}

	if rec.Path < prev.Path {
		ix.entries[rec.Digest] = rec
	}

	return false
}

// AddName records a filename as taken, independent of content. Used on the
// destination side to detect name collisions with different bytes.
func (ix *Index) AddName(name string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.names[name] = struct{}{}
}

func (ix *Index) Has(d digest.Digest) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	_, ok := ix.entries[d]
	return ok
}

func (ix *Index) Get(d digest.Digest) (FileRecord, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	rec, ok := ix.entries[d]
	return rec, ok
}

func (ix *Index) HasName(name string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	_, ok := ix.names[name]
	return ok
}

func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.entries)
}

// Records returns the canonical records in unspecified order.
func (ix *Index) Records() []FileRecord {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	records := make([]FileRecord, 0, len(ix.entries))
	for _, rec := range ix.entries {
		records = append(records, rec)
	}

	return records
}

// CopyAction is one planned transfer: read SrcPath, land it in the
// destination root under DstName.
type CopyAction struct {
	Digest  digest.Digest
	SrcPath string
	DstName string
	Size    int64
}
