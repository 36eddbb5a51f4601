package service

import "github.com/doorman-ac/doorman/internal/core"

// NowOverride pins the evaluation clock to a simulated instant.
type NowOverride struct {
	Date string `json:"date"`
	Time string `json:"time"`

	// Day is optional and overrides the weekday derived from Date.
	Day string `json:"day,omitempty"`
}

type EvaluateRequest struct {
	ResourceType string `json:"resourceType"`
	ResourceID   string `json:"resourceId"`

	User    core.Actor       `json:"user"`
	Request core.RequestMeta `json:"request,omitempty"`

	// Now is optional. If nil, the server clock is used.
	Now *NowOverride `json:"now,omitempty"`
}

type ExplainRequest struct {
	EvaluateRequest

	// ReplayID is optional. If set, the stored decision with this
	// correlation ID is returned instead of evaluating live.
	ReplayID string `json:"replayId,omitempty"`
}

// ExplainResponse is the decision plus its full trace. Replayed decisions
// come straight from the audit log and carry no group results.
type ExplainResponse struct {
	Allowed     bool             `json:"allowed"`
	AccessLevel core.AccessLevel `json:"accessLevel,omitempty"`
	Reason      string           `json:"reason"`
	Trace       []string         `json:"evaluationTrace"`
	Replayed    bool             `json:"replayed,omitempty"`

	// Result is the live evaluation result; nil when replaying.
	Result *core.EvaluationResult `json:"result,omitempty"`
}
