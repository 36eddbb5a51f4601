package engine

import (
	"testing"

	"github.com/expr-lang/expr"

	"github.com/doorman-ac/doorman/internal/core"
)

// compileControlExprs compiles expression rules in place, the way config
// validation does before controls reach the engine.
func compileControlExprs(t *testing.T, control *core.AccessControl) error {
	t.Helper()
	for gi := range control.Groups {
		for ri := range control.Groups[gi].Rules {
			rule := &control.Groups[gi].Rules[ri]
			if rule.Expr == "" {
				continue
			}
			prog, err := expr.Compile(rule.Expr, expr.AsBool())
			if err != nil {
				return err
			}
			rule.CompiledExpr = prog
		}
	}
	return nil
}

func testContext(t *testing.T, mutate func(*core.EvaluationContext)) *core.EvaluationContext {
	t.Helper()

	now, err := core.NewSnapshot("2026-03-16", "14:30", "")
	if err != nil {
		t.Fatalf("building snapshot: %v", err)
	}
	ectx := &core.EvaluationContext{
		ResourceType: "course",
		ResourceID:   "algebra-2",
		User: core.Actor{
			ID:     "user-1",
			Email:  "student@example.com",
			Role:   "student",
			Groups: []string{"training_2025"},
			Status: "active",
		},
		Request: core.RequestMeta{
			IP:  "203.0.113.7",
			Geo: core.Geo{Country: "DE"},
		},
		Now: now,
	}
	if mutate != nil {
		mutate(ectx)
	}
	return ectx
}

func singleConditionControl(cond core.Condition) *core.AccessControl {
	return &core.AccessControl{
		ResourceType: "course",
		ResourceID:   "algebra-2",
		IsEnabled:    true,
		Strategy:     core.StrategySimple,
		MainOperator: core.LogicOr,
		Groups: []core.RuleGroup{{
			Name:          "members",
			LogicOperator: core.LogicAnd,
			IsEnabled:     true,
			Rules: []core.Rule{{
				Name:          "member access",
				LogicOperator: core.LogicAnd,
				AccessLevel:   core.LevelRead,
				IsEnabled:     true,
				Conditions:    []core.Condition{cond},
			}},
		}},
	}
}

func TestEvaluateGroupMembership(t *testing.T) {
	control := singleConditionControl(core.Condition{
		FieldPath: "user.groups",
		Operator:  core.OpContains,
		Value:     "training_2025",
		IsEnabled: true,
	})

	res := Evaluate(control, testContext(t, nil))
	if !res.Allowed {
		t.Fatalf("expected allowed, got denied: %s", res.Reason)
	}
	if res.AccessLevel != core.LevelRead {
		t.Errorf("expected access level READ, got %q", res.AccessLevel)
	}

	// same rule, user without the group
	res = Evaluate(control, testContext(t, func(e *core.EvaluationContext) {
		e.User.Groups = nil
	}))
	if res.Allowed {
		t.Fatal("expected denied for user without the group")
	}
	if len(res.GroupResults) != 1 || len(res.GroupResults[0].RuleResults) != 1 {
		t.Fatalf("expected one group with one rule result, got %+v", res.GroupResults)
	}
	cr := res.GroupResults[0].RuleResults[0].ConditionResults
	if len(cr) != 1 || cr[0].Result {
		t.Errorf("expected a recorded false condition result, got %+v", cr)
	}
}

func TestEvaluateDisabledControl(t *testing.T) {
	control := singleConditionControl(core.Condition{
		FieldPath: "user.groups",
		Operator:  core.OpContains,
		Value:     "training_2025",
		IsEnabled: true,
	})
	control.IsEnabled = false

	res := Evaluate(control, testContext(t, nil))
	if res.Allowed {
		t.Fatal("disabled control must deny")
	}
	if res.Reason != "control disabled" {
		t.Errorf("expected reason 'control disabled', got %q", res.Reason)
	}
	if res.AccessLevel != "" {
		t.Errorf("denied result must not carry an access level, got %q", res.AccessLevel)
	}
}

func TestEvaluateGlobalWindow(t *testing.T) {
	control := singleConditionControl(core.Condition{
		FieldPath: "user.groups",
		Operator:  core.OpContains,
		Value:     "training_2025",
		IsEnabled: true,
	})
	control.Window = &core.TimeWindow{
		StartDate: "2026-04-01",
		EndDate:   "2026-04-30",
	}

	res := Evaluate(control, testContext(t, nil))
	if res.Allowed {
		t.Fatal("control outside its global window must deny")
	}
	if res.Reason != "outside global time window" {
		t.Errorf("unexpected reason %q", res.Reason)
	}
}

func TestEvaluateRuleWindowPrecedence(t *testing.T) {
	control := singleConditionControl(core.Condition{
		FieldPath: "user.groups",
		Operator:  core.OpContains,
		Value:     "training_2025",
		IsEnabled: true,
	})
	// condition would be true, but the rule window ended in January
	control.Groups[0].Rules[0].Window = &core.TimeWindow{
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
	}

	res := Evaluate(control, testContext(t, nil))
	if res.Allowed {
		t.Fatal("rule outside its window must be false regardless of conditions")
	}
	rr := res.GroupResults[0].RuleResults[0]
	if rr.Reason != "outside rule time window" {
		t.Errorf("expected reason 'outside rule time window', got %q", rr.Reason)
	}
	if len(rr.ConditionResults) != 0 {
		t.Errorf("window-gated rule must not evaluate conditions, got %+v", rr.ConditionResults)
	}
}

func TestEvaluateVacuousTruth(t *testing.T) {
	control := singleConditionControl(core.Condition{
		FieldPath: "user.groups",
		Operator:  core.OpContains,
		Value:     "training_2025",
		IsEnabled: false, // all conditions disabled
	})

	// AND over zero enabled conditions is vacuously true
	res := Evaluate(control, testContext(t, nil))
	if !res.Allowed {
		t.Fatalf("AND rule with no enabled conditions must be vacuously true: %s", res.Reason)
	}

	// OR over zero enabled conditions is false
	control.Groups[0].Rules[0].LogicOperator = core.LogicOr
	control.Groups[0].LogicOperator = core.LogicOr
	res = Evaluate(control, testContext(t, nil))
	if res.Allowed {
		t.Fatal("OR rule with no enabled conditions must be false")
	}
}

func TestEvaluateFirstTrueWins(t *testing.T) {
	rule := func(name string, priority int, level core.AccessLevel, matches bool) core.Rule {
		op := core.OpEquals
		value := "student"
		if !matches {
			value = "teacher"
		}
		return core.Rule{
			Name:          name,
			LogicOperator: core.LogicAnd,
			AccessLevel:   level,
			IsEnabled:     true,
			Priority:      priority,
			Conditions: []core.Condition{{
				FieldPath: "user.role",
				Operator:  op,
				Value:     value,
				IsEnabled: true,
			}},
		}
	}

	control := &core.AccessControl{
		ResourceType: "course",
		ResourceID:   "algebra-2",
		IsEnabled:    true,
		Strategy:     core.StrategySimple,
		MainOperator: core.LogicOr,
		Groups: []core.RuleGroup{
			{
				Name:          "second",
				LogicOperator: core.LogicOr,
				IsEnabled:     true,
				Priority:      2,
				Rules:         []core.Rule{rule("full", 1, core.LevelFull, true)},
			},
			{
				Name:          "first",
				LogicOperator: core.LogicOr,
				IsEnabled:     true,
				Priority:      1,
				Rules: []core.Rule{
					rule("miss", 1, core.LevelFull, false),
					rule("read", 2, core.LevelRead, true),
				},
			},
		},
	}

	res := Evaluate(control, testContext(t, nil))
	if !res.Allowed {
		t.Fatalf("expected allowed: %s", res.Reason)
	}
	// group "first" (priority 1) runs before "second", and within it the
	// READ rule is the first true one. FULL never wins here even though it
	// is the higher privilege.
	if res.AccessLevel != core.LevelRead {
		t.Errorf("expected first-true access level READ, got %q", res.AccessLevel)
	}
}

func TestEvaluateMainOperatorAnd(t *testing.T) {
	match := core.Condition{
		FieldPath: "user.status",
		Operator:  core.OpEquals,
		Value:     "active",
		IsEnabled: true,
	}
	miss := core.Condition{
		FieldPath: "user.status",
		Operator:  core.OpEquals,
		Value:     "inactive",
		IsEnabled: true,
	}

	group := func(name string, cond core.Condition) core.RuleGroup {
		return core.RuleGroup{
			Name:          name,
			LogicOperator: core.LogicAnd,
			IsEnabled:     true,
			Rules: []core.Rule{{
				Name:          name + " rule",
				LogicOperator: core.LogicAnd,
				AccessLevel:   core.LevelRead,
				IsEnabled:     true,
				Conditions:    []core.Condition{cond},
			}},
		}
	}

	control := &core.AccessControl{
		ResourceType: "course",
		ResourceID:   "algebra-2",
		IsEnabled:    true,
		Strategy:     core.StrategySimple,
		MainOperator: core.LogicAnd,
		Groups:       []core.RuleGroup{group("a", match), group("b", miss)},
	}

	res := Evaluate(control, testContext(t, nil))
	if res.Allowed {
		t.Fatal("AND of a true and a false group must deny")
	}

	control.Groups[1] = group("b", match)
	res = Evaluate(control, testContext(t, nil))
	if !res.Allowed {
		t.Fatalf("AND of two true groups must allow: %s", res.Reason)
	}
}

func TestEvaluateTraceNeverNil(t *testing.T) {
	control := singleConditionControl(core.Condition{
		FieldPath: "user.groups",
		Operator:  core.OpContains,
		Value:     "training_2025",
		IsEnabled: true,
	})
	control.IsEnabled = false

	res := Evaluate(control, testContext(t, nil))
	if res.EvaluationTrace == nil {
		t.Fatal("trace must never be nil")
	}
	if res.GroupResults == nil {
		t.Fatal("group results must never be nil")
	}
	if res.ExecutionTimeMs < 0 {
		t.Errorf("execution time must be non-negative, got %f", res.ExecutionTimeMs)
	}
}

func TestEvaluateExpressionRule(t *testing.T) {
	control := &core.AccessControl{
		ResourceType: "course",
		ResourceID:   "algebra-2",
		IsEnabled:    true,
		Strategy:     core.StrategyComplex,
		MainOperator: core.LogicOr,
		Groups: []core.RuleGroup{{
			Name:          "expr",
			LogicOperator: core.LogicOr,
			IsEnabled:     true,
			Rules: []core.Rule{{
				Name:          "role check",
				LogicOperator: core.LogicAnd,
				AccessLevel:   core.LevelWrite,
				IsEnabled:     true,
				Expr:          `user.Role == "student" && "training_2025" in user.Groups`,
			}},
		}},
	}
	if err := compileControlExprs(t, control); err != nil {
		t.Fatalf("compiling expressions: %v", err)
	}

	res := Evaluate(control, testContext(t, nil))
	if !res.Allowed {
		t.Fatalf("expected expression rule to match: %s", res.Reason)
	}
	if res.AccessLevel != core.LevelWrite {
		t.Errorf("expected access level WRITE, got %q", res.AccessLevel)
	}

	res = Evaluate(control, testContext(t, func(e *core.EvaluationContext) {
		e.User.Role = "teacher"
	}))
	if res.Allowed {
		t.Fatal("expected expression rule to miss for teacher")
	}
}
