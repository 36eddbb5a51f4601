package core

// ConditionResult records the evaluation of a single condition.
type ConditionResult struct {
	ConditionID   string   `json:"conditionId,omitempty"`
	FieldPath     string   `json:"fieldPath"`
	Operator      Operator `json:"operator"`
	ExpectedValue any      `json:"expectedValue,omitempty"`
	ActualValue   any      `json:"actualValue,omitempty"`
	IsNegated     bool     `json:"isNegated,omitempty"`
	Result        bool     `json:"result"`
	Reason        string   `json:"reason,omitempty"`
}

// RuleResult records why a rule evaluated true or false. ConditionResults
// retains every condition that was actually computed; conditions skipped by
// short-circuit do not appear.
type RuleResult struct {
	RuleID           string            `json:"ruleId,omitempty"`
	RuleName         string            `json:"ruleName"`
	Result           bool              `json:"result"`
	Operator         LogicOperator     `json:"operator"`
	AccessLevel      AccessLevel       `json:"accessLevel"`
	Reason           string            `json:"reason,omitempty"`
	ConditionResults []ConditionResult `json:"conditionResults,omitempty"`
}

// GroupResult records a group's combination of its rules.
type GroupResult struct {
	GroupID     string        `json:"groupId,omitempty"`
	GroupName   string        `json:"groupName"`
	Result      bool          `json:"result"`
	Operator    LogicOperator `json:"operator"`
	Reason      string        `json:"reason,omitempty"`
	RuleResults []RuleResult  `json:"ruleResults,omitempty"`
}

// EvaluationResult is the structured outcome of one control evaluation.
// The engine always returns a result; every failure mode is a boolean plus a
// reason string, never an error.
type EvaluationResult struct {
	Allowed bool `json:"allowed"`

	// AccessLevel is the level of the first true rule in evaluation order.
	// Empty when access is denied.
	AccessLevel AccessLevel `json:"accessLevel,omitempty"`

	Reason             string             `json:"reason"`
	EvaluationStrategy EvaluationStrategy `json:"evaluationStrategy"`
	MainOperator       LogicOperator      `json:"mainOperator"`

	// ExecutionTimeMs measures the wall-clock cost of the evaluation itself.
	ExecutionTimeMs float64 `json:"executionTimeMs"`

	GroupResults    []GroupResult `json:"groupResults"`
	EvaluationTrace []string      `json:"evaluationTrace"`
}
