package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/expr-lang/expr"

	"github.com/doorman-ac/doorman/internal/core"
)

// ValidateControls validates a full set of control definitions at load time.
// Unknown operators, illegal operator/field-kind combinations and malformed
// windows are rejected here rather than surfacing as fail-closed conditions
// at evaluation time. Expressions on COMPLEX controls are compiled in place.
func ValidateControls(controls []*core.AccessControl) ([]*core.AccessControl, error) {
	seenKeys := make(map[core.ResourceKey]struct{})
	var valid []*core.AccessControl

	for i, control := range controls {
		if control.ResourceType == "" || control.ResourceID == "" {
			return nil, fmt.Errorf("control #%d missing resource_type or resource_id", i)
		}
		key := control.Key()
		if _, exists := seenKeys[key]; exists {
			return nil, fmt.Errorf("duplicate control for resource %s", key)
		}
		seenKeys[key] = struct{}{}

		if !control.Strategy.IsValid() {
			return nil, fmt.Errorf("control %s: invalid strategy '%s'", key, control.Strategy)
		}
		if !control.MainOperator.IsValid() {
			return nil, fmt.Errorf("control %s: invalid main operator '%s'", key, control.MainOperator)
		}
		if err := validateWindow(control.Window); err != nil {
			return nil, fmt.Errorf("control %s: global time window: %w", key, err)
		}

		seenGroups := make(map[string]struct{})
		for gi := range control.Groups {
			group := &control.Groups[gi]
			if group.Name == "" {
				return nil, fmt.Errorf("control %s: group #%d missing name", key, gi)
			}
			if _, exists := seenGroups[group.Name]; exists {
				return nil, fmt.Errorf("control %s: group name '%s' is not unique", key, group.Name)
			}
			seenGroups[group.Name] = struct{}{}

			if !group.LogicOperator.IsValid() {
				return nil, fmt.Errorf("control %s: group '%s': invalid operator '%s'",
					key, group.Name, group.LogicOperator)
			}

			for ri := range group.Rules {
				if err := validateRule(&group.Rules[ri], control.Strategy); err != nil {
					return nil, fmt.Errorf("control %s: group '%s': %w", key, group.Name, err)
				}
			}
		}

		valid = append(valid, control)
	}

	return valid, nil
}

func validateRule(rule *core.Rule, strategy core.EvaluationStrategy) error {
	if rule.Name == "" {
		return fmt.Errorf("rule missing name")
	}
	if !rule.LogicOperator.IsValid() {
		return fmt.Errorf("rule '%s': invalid operator '%s'", rule.Name, rule.LogicOperator)
	}
	if !rule.AccessLevel.IsValid() {
		return fmt.Errorf("rule '%s': invalid access level '%s'", rule.Name, rule.AccessLevel)
	}
	if err := validateWindow(rule.Window); err != nil {
		return fmt.Errorf("rule '%s': time window: %w", rule.Name, err)
	}

	if rule.Expr != "" {
		if strategy != core.StrategyComplex {
			return fmt.Errorf("rule '%s' uses expr but the control strategy is %s", rule.Name, strategy)
		}
		if len(rule.Conditions) > 0 {
			return fmt.Errorf("rule '%s' has both conditions and expr set", rule.Name)
		}
		program, err := expr.Compile(rule.Expr, expr.AsBool())
		if err != nil {
			return fmt.Errorf("rule '%s': compiling expr: %w", rule.Name, err)
		}
		rule.CompiledExpr = program
	}

	for ci := range rule.Conditions {
		if err := validateCondition(&rule.Conditions[ci]); err != nil {
			return fmt.Errorf("rule '%s': %w", rule.Name, err)
		}
	}
	return nil
}

func validateCondition(cond *core.Condition) error {
	if cond.FieldPath == "" {
		return fmt.Errorf("condition missing field path")
	}
	if !cond.Operator.IsValid() {
		return fmt.Errorf("condition on '%s': unknown operator '%s'", cond.FieldPath, cond.Operator)
	}

	kind := core.KindOf(cond.FieldPath)
	if !cond.Operator.AllowedFor(kind) {
		return fmt.Errorf("condition on '%s': operator %s is not applicable to %s fields",
			cond.FieldPath, cond.Operator, kind)
	}

	switch cond.Operator {
	case core.OpIn, core.OpNotIn:
		if _, ok := asList(cond.Value); !ok {
			return fmt.Errorf("condition on '%s': %s expects an array value", cond.FieldPath, cond.Operator)
		}
	case core.OpBetween:
		list, ok := asList(cond.Value)
		if !ok || len(list) != 2 {
			return fmt.Errorf("condition on '%s': BETWEEN expects a [low, high] pair", cond.FieldPath)
		}
	case core.OpWithinLast:
		token, _ := cond.Value.(string)
		if !validDurationToken(token) {
			return fmt.Errorf("condition on '%s': WITHIN_LAST expects a '<N>_<days|months|years>' token, got '%v'",
				cond.FieldPath, cond.Value)
		}
	}
	return nil
}

func validateWindow(w *core.TimeWindow) error {
	if w.IsZero() {
		return nil
	}
	for _, date := range []string{w.StartDate, w.EndDate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse(core.DateLayout, date); err != nil {
			return fmt.Errorf("invalid date '%s'", date)
		}
	}
	for _, clock := range []string{w.StartTime, w.EndTime} {
		if clock == "" {
			continue
		}
		if _, err := time.Parse(core.ClockLayout, clock); err != nil {
			return fmt.Errorf("invalid time '%s'", clock)
		}
	}
	for _, day := range w.Weekdays {
		switch strings.ToLower(day) {
		case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		default:
			return fmt.Errorf("invalid weekday '%s'", day)
		}
	}
	return nil
}

func validDurationToken(token string) bool {
	parts := strings.SplitN(token, "_", 2)
	if len(parts) != 2 {
		return false
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 0 {
		return false
	}
	switch strings.ToLower(parts[1]) {
	case "days", "day", "months", "month", "years", "year":
		return true
	}
	return false
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
