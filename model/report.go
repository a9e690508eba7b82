package model

import "time"

// Warning records a file skipped during scanning.
type Warning struct {
	Path string
	Err  error
}

// CopyError records one planned copy that failed. Remaining actions still
// run; the run as a whole reports failure through Report.Failed.
type CopyError struct {
	Action CopyAction
	Err    error
}

// Report summarizes a completed sync run.
type Report struct {
	Source      string
	Destination string

	SourceFiles int
	DestFiles   int
	Copied      int
	Duplicates  int
	BytesCopied int64

	Warnings   []Warning
	CopyErrors []CopyError

	StartedAt time.Time
	Duration  time.Duration
}

// Failed reports whether any planned copy failed. Scan warnings alone do
// not fail a run.
func (r *Report) Failed() bool {
	return len(r.CopyErrors) > 0
}
