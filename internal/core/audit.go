package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "access.evaluate", "access.explain")
	Action string `json:"action"`

	// Resource that was targeted
	ResourceType string `json:"resource_type,omitempty"`
	ResourceID   string `json:"resource_id,omitempty"`

	// ActorID identifies who requested access
	ActorID string `json:"actor_id,omitempty"`

	// Decision details
	Allowed     bool        `json:"allowed"`
	AccessLevel AccessLevel `json:"access_level,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	Error       string      `json:"error,omitempty"`

	// Trace is the engine's evaluation trace, kept for debugging denials.
	Trace []string `json:"trace,omitempty"`

	// DurationMs is the engine execution time reported by the result.
	DurationMs float64 `json:"duration_ms,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}

// AuditReader is implemented by auditors that can be queried back, used by the
// admin audit endpoints.
type AuditReader interface {
	GetRecent(limit int) ([]AuditEntry, error)
	Find(filter func(entry AuditEntry) bool, limit int) ([]AuditEntry, error)
}
