package daemon

import (
	"sync"
	"time"

	"photosync/model"
)

type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusSyncing Status = "SYNCING"
)

// State tracks what the watch daemon is doing, for the status endpoint.
type State struct {
	mu         sync.RWMutex
	src        string
	dst        string
	status     Status
	runs       int
	lastReport *model.Report
	startedAt  time.Time
}

func NewState(src, dst string) *State {
	return &State{
		src:       src,
		dst:       dst,
		status:    StatusIdle,
		startedAt: time.Now(),
	}
}

func (s *State) SetSyncing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusSyncing
}

func (s *State) RecordRun(report *model.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusIdle
	s.runs++
	s.lastReport = report
}

type Snapshot struct {
	Src       string       `json:"src"`
	Dst       string       `json:"dst"`
	Status    Status       `json:"status"`
	Runs      int          `json:"runs"`
	StartedAt time.Time    `json:"started_at"`
	LastRun   *RunSnapshot `json:"last_run,omitempty"`
}

type RunSnapshot struct {
	SourceFiles int    `json:"source_files"`
	Copied      int    `json:"copied"`
	Duplicates  int    `json:"duplicates"`
	BytesCopied int64  `json:"bytes_copied"`
	Warnings    int    `json:"warnings"`
	Failures    int    `json:"failures"`
	Duration    string `json:"duration"`
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Src:       s.src,
		Dst:       s.dst,
		Status:    s.status,
		Runs:      s.runs,
		StartedAt: s.startedAt,
	}

	if s.lastReport != nil {
		snap.LastRun = &RunSnapshot{
			SourceFiles: s.lastReport.SourceFiles,
			Copied:      s.lastReport.Copied,
			Duplicates:  s.lastReport.Duplicates,
			BytesCopied: s.lastReport.BytesCopied,
			Warnings:    len(s.lastReport.Warnings),
			Failures:    len(s.lastReport.CopyErrors),
			Duration:    s.lastReport.Duration.Round(time.Millisecond).String(),
		}
	}

	return snap
}
