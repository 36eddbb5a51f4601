package tasks

import (
	"context"
	"time"

	"github.com/doorman-ac/doorman/internal/logging"
)

// TaskFunc is the unit of background work, e.g. one control definition sync.
// Output written through the logger is retained per run and served over the
// admin API.
type TaskFunc func(ctx context.Context, logger logging.InternalLogger) error

type TaskStatus struct {
	Name           string    `json:"name,omitempty"`
	Running        bool      `json:"running,omitempty"`
	Interval       string    `json:"interval,omitempty"`
	LastRun        time.Time `json:"last_run"`
	LastResult     string    `json:"last_result,omitempty"`
	LastDurationMs float64   `json:"last_duration_ms,omitempty"`
	NextRun        time.Time `json:"next_run"`
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
}
