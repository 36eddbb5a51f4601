package core

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr/vm"
)

// LogicOperator combines the boolean outcomes of child nodes.
// AND and OR are the only composition operators at every tier.
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

func (op LogicOperator) IsValid() bool {
	return op == LogicAnd || op == LogicOr
}

// EvaluationStrategy selects how a control is evaluated.
// COMPLEX additionally permits expression rules (see Rule.Expr).
type EvaluationStrategy string

const (
	StrategySimple  EvaluationStrategy = "SIMPLE"
	StrategyComplex EvaluationStrategy = "COMPLEX"
)

func (s EvaluationStrategy) IsValid() bool {
	return s == StrategySimple || s == StrategyComplex
}

// AccessLevel is the ordered enumeration of access levels a rule can grant.
type AccessLevel string

const (
	LevelRead      AccessLevel = "READ"
	LevelCreate    AccessLevel = "CREATE"
	LevelUpdate    AccessLevel = "UPDATE"
	LevelDelete    AccessLevel = "DELETE"
	LevelWrite     AccessLevel = "WRITE"
	LevelManage    AccessLevel = "MANAGE"
	LevelConfigure AccessLevel = "CONFIGURE"
	LevelFull      AccessLevel = "FULL"
)

var accessLevelRank = map[AccessLevel]int{
	LevelRead:      0,
	LevelCreate:    1,
	LevelUpdate:    2,
	LevelDelete:    3,
	LevelWrite:     4,
	LevelManage:    5,
	LevelConfigure: 6,
	LevelFull:      7,
}

func (l AccessLevel) IsValid() bool {
	_, ok := accessLevelRank[l]
	return ok
}

// Compare orders access levels by privilege (READ lowest, FULL highest).
// The engine's tie-break is first-true-wins and does NOT use this ordering;
// it exists so callers can reason about relative privilege.
func (l AccessLevel) Compare(other AccessLevel) int {
	return accessLevelRank[l] - accessLevelRank[other]
}

// TimeWindow constrains when a control or rule is active.
// Every bound is optional; an empty window is always open.
type TimeWindow struct {
	// StartDate and EndDate bound the active date range ("2006-01-02").
	StartDate string `yaml:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate   string `yaml:"end_date,omitempty" json:"endDate,omitempty"`

	// StartTime and EndTime bound the active time of day ("15:04", inclusive).
	// If EndTime < StartTime the window spans midnight.
	StartTime string `yaml:"start_time,omitempty" json:"startTime,omitempty"`
	EndTime   string `yaml:"end_time,omitempty" json:"endTime,omitempty"`

	// Weekdays restricts the active days (lowercase English names).
	// An empty set allows every day.
	Weekdays []string `yaml:"weekdays,omitempty" json:"weekdays,omitempty"`
}

// IsZero reports whether no bound is set at all.
func (w *TimeWindow) IsZero() bool {
	return w == nil || (w.StartDate == "" && w.EndDate == "" &&
		w.StartTime == "" && w.EndTime == "" && len(w.Weekdays) == 0)
}

// Condition is a single comparison between a resolved context value and an
// expected value. Conditions belong to exactly one Rule.
type Condition struct {
	ID        string   `yaml:"id,omitempty" json:"conditionId,omitempty"`
	FieldPath string   `yaml:"field" json:"fieldPath"`
	Operator  Operator `yaml:"operator" json:"operator"`

	// Value is a scalar, an array, or a two-element range depending on the operator.
	Value any `yaml:"value,omitempty" json:"value,omitempty"`

	// IsNegated inverts the raw operator result last, after evaluation.
	IsNegated bool `yaml:"negated,omitempty" json:"isNegated,omitempty"`

	IsEnabled bool `yaml:"enabled" json:"isEnabled"`
	Priority  int  `yaml:"priority,omitempty" json:"priority,omitempty"`
}

func (c *Condition) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]any
	if err := unmarshal(&raw); err != nil {
		return err
	}

	// isExplicit marks whether the condition is spelled out:
	//   { field: user.role, operator: EQUALS, value: admin }
	// as opposed to the operator-key shorthand:
	//   { field: user.role, equals: admin }
	isExplicit := true
	for k := range raw {
		if _, ok := shorthandOperators[k]; ok {
			isExplicit = false
			break
		}
	}

	type plain Condition // prevent recursion
	p := plain{IsEnabled: true}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*c = Condition(p)

	if isExplicit {
		return nil
	}

	found := ""
	for k, v := range raw {
		op, ok := shorthandOperators[k]
		if !ok {
			continue
		}
		if found != "" {
			return fmt.Errorf("condition for field '%s' uses multiple operator shorthands ('%s' and '%s')",
				c.FieldPath, found, k)
		}
		found = k
		c.Operator = op
		c.Value = v
	}
	return nil
}

// shorthandOperators maps the YAML shorthand keys to operators, so authors can
// write { field: user.role, equals: admin } instead of the explicit form.
var shorthandOperators = map[string]Operator{
	"equals":       OpEquals,
	"not_equals":   OpNotEquals,
	"contains":     OpContains,
	"not_contains": OpNotContains,
	"starts_with":  OpStartsWith,
	"ends_with":    OpEndsWith,
	"in":           OpIn,
	"not_in":       OpNotIn,
	"greater_than": OpGreaterThan,
	"less_than":    OpLessThan,
	"between":      OpBetween,
	"within_last":  OpWithinLast,
}

// Rule is a named collection of Conditions combined by one logic operator,
// carrying the access level granted when the rule is true.
type Rule struct {
	ID            string        `yaml:"id,omitempty" json:"ruleId,omitempty"`
	Name          string        `yaml:"name" json:"ruleName"`
	LogicOperator LogicOperator `yaml:"operator" json:"operator"`
	AccessLevel   AccessLevel   `yaml:"access_level" json:"accessLevel"`
	IsEnabled     bool          `yaml:"enabled" json:"isEnabled"`
	Priority      int           `yaml:"priority,omitempty" json:"priority,omitempty"`

	// Window is the rule's individual time window. A rule outside its window
	// is false regardless of its conditions.
	Window *TimeWindow `yaml:"time_window,omitempty" json:"timeWindow,omitempty"`

	Conditions []Condition `yaml:"conditions,omitempty" json:"conditions,omitempty"`

	// Expr is an optional boolean expression evaluated in place of the
	// condition list. Only permitted on COMPLEX controls.
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`

	// CompiledExpr holds the pre-compiled form of Expr.
	CompiledExpr *vm.Program `yaml:"-" json:"-"`
}

func (r *Rule) UnmarshalYAML(unmarshal func(any) error) error {
	type plain Rule
	p := plain{IsEnabled: true, LogicOperator: LogicAnd}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*r = Rule(p)
	return nil
}

// RuleGroup is a named, independently toggleable collection of Rules combined
// by one logic operator. Groups belong to exactly one AccessControl.
type RuleGroup struct {
	ID            string        `yaml:"id,omitempty" json:"groupId,omitempty"`
	Name          string        `yaml:"name" json:"groupName"`
	LogicOperator LogicOperator `yaml:"operator" json:"operator"`
	IsEnabled     bool          `yaml:"enabled" json:"isEnabled"`
	Priority      int           `yaml:"priority,omitempty" json:"priority,omitempty"`
	Rules         []Rule        `yaml:"rules,omitempty" json:"rules,omitempty"`
}

func (g *RuleGroup) UnmarshalYAML(unmarshal func(any) error) error {
	type plain RuleGroup
	p := plain{IsEnabled: true, LogicOperator: LogicAnd}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*g = RuleGroup(p)
	return nil
}

// ResourceKey uniquely identifies the resource an AccessControl protects.
type ResourceKey struct {
	Type string `json:"resourceType"`
	ID   string `json:"resourceId"`
}

func (k ResourceKey) String() string {
	return k.Type + "/" + k.ID
}

// AccessControl is the top-level access-control definition for one resource.
// It is created and edited by administrators through the configuration
// surface and is read-only to the engine: one evaluation always works on an
// immutable snapshot of the full control graph.
type AccessControl struct {
	ResourceType string `yaml:"resource_type" json:"resourceType"`
	ResourceID   string `yaml:"resource_id" json:"resourceId"`

	// Name is an optional human-readable label used by the admin surface.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	IsEnabled    bool               `yaml:"enabled" json:"isEnabled"`
	Strategy     EvaluationStrategy `yaml:"strategy" json:"evaluationStrategy"`
	MainOperator LogicOperator      `yaml:"main_operator" json:"mainLogicOperator"`

	// Window is the control's global time window.
	Window *TimeWindow `yaml:"time_window,omitempty" json:"timeWindow,omitempty"`

	Groups []RuleGroup `yaml:"groups,omitempty" json:"groups,omitempty"`

	// UpdatedAt versions the definition; administrator edits bump it.
	UpdatedAt time.Time `yaml:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

func (c *AccessControl) UnmarshalYAML(unmarshal func(any) error) error {
	type plain AccessControl
	p := plain{IsEnabled: true, Strategy: StrategySimple, MainOperator: LogicAnd}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*c = AccessControl(p)
	return nil
}

func (c *AccessControl) Key() ResourceKey {
	return ResourceKey{Type: c.ResourceType, ID: c.ResourceID}
}
