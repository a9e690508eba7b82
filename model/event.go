package model

import "time"

type EventType string

const (
	EventCreate EventType = "CREATE"
	EventWrite  EventType = "WRITE"
	EventRemove EventType = "REMOVE"
	EventRename EventType = "RENAME"
)

// FileEvent is a filesystem change noticed in watch mode. Events only
// trigger a new sync run; the run itself re-scans from scratch.
type FileEvent struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}
