package core

import (
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestAccessControlUnmarshalDefaults(t *testing.T) {
	raw := `
resource_type: course
resource_id: algebra-2
groups:
  - name: members
    rules:
      - name: member access
        access_level: READ
        conditions:
          - field: user.groups
            operator: CONTAINS
            value: training_2025
`
	var control AccessControl
	if err := yaml.Unmarshal([]byte(raw), &control); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !control.IsEnabled {
		t.Error("control must default to enabled")
	}
	if control.Strategy != StrategySimple {
		t.Errorf("strategy must default to SIMPLE, got %q", control.Strategy)
	}
	if control.MainOperator != LogicAnd {
		t.Errorf("main operator must default to AND, got %q", control.MainOperator)
	}

	group := control.Groups[0]
	if !group.IsEnabled || group.LogicOperator != LogicAnd {
		t.Errorf("group defaults wrong: %+v", group)
	}
	rule := group.Rules[0]
	if !rule.IsEnabled || rule.LogicOperator != LogicAnd {
		t.Errorf("rule defaults wrong: %+v", rule)
	}
	cond := rule.Conditions[0]
	if !cond.IsEnabled {
		t.Error("condition must default to enabled")
	}
	if cond.Operator != OpContains || cond.Value != "training_2025" {
		t.Errorf("explicit condition parsed wrong: %+v", cond)
	}
}

func TestConditionUnmarshalShorthand(t *testing.T) {
	tests := []struct {
		raw      string
		operator Operator
		value    any
	}{
		{`{field: user.role, equals: admin}`, OpEquals, "admin"},
		{`{field: user.role, not_equals: guest}`, OpNotEquals, "guest"},
		{`{field: user.groups, contains: staff}`, OpContains, "staff"},
		{`{field: user.email, ends_with: .com}`, OpEndsWith, ".com"},
		{`{field: user.deactivation_date, within_last: 30_days}`, OpWithinLast, "30_days"},
	}
	for _, tt := range tests {
		var cond Condition
		if err := yaml.Unmarshal([]byte(tt.raw), &cond); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if cond.Operator != tt.operator {
			t.Errorf("%s: operator = %q, want %q", tt.raw, cond.Operator, tt.operator)
		}
		if cond.Value != tt.value {
			t.Errorf("%s: value = %v, want %v", tt.raw, cond.Value, tt.value)
		}
	}
}

func TestConditionUnmarshalShorthandConflict(t *testing.T) {
	raw := `{field: user.role, equals: admin, not_equals: guest}`
	var cond Condition
	err := yaml.Unmarshal([]byte(raw), &cond)
	if err == nil {
		t.Fatal("expected error for multiple operator shorthands")
	}
	if !strings.Contains(err.Error(), "multiple operator shorthands") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConditionUnmarshalDisabled(t *testing.T) {
	raw := `{field: user.role, equals: admin, enabled: false}`
	var cond Condition
	if err := yaml.Unmarshal([]byte(raw), &cond); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cond.IsEnabled {
		t.Error("explicit enabled: false must stick")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		want FieldKind
	}{
		{"user.groups", KindArray},
		{"user.tags", KindArray},
		{"user.services", KindArray},
		{"user.deactivation_date", KindDate},
		{"user.subscription_end_date", KindDate},
		{"current_date", KindDate},
		{"current_time", KindDate},
		{"user.role", KindString},
		{"user.last_login", KindString},
		{"request.geo.country", KindString},
	}
	for _, tt := range tests {
		if got := KindOf(tt.path); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestOperatorAllowedFor(t *testing.T) {
	if OpStartsWith.AllowedFor(KindArray) {
		t.Error("STARTS_WITH must not be legal on array fields")
	}
	if OpWithinLast.AllowedFor(KindString) {
		t.Error("WITHIN_LAST must not be legal on string fields")
	}
	if !OpWithinLast.AllowedFor(KindDate) {
		t.Error("WITHIN_LAST must be legal on date fields")
	}
	if !OpContains.AllowedFor(KindArray) {
		t.Error("CONTAINS must be legal on array fields")
	}
}

func TestAccessLevelCompare(t *testing.T) {
	if LevelRead.Compare(LevelFull) >= 0 {
		t.Error("READ must rank below FULL")
	}
	if LevelFull.Compare(LevelRead) <= 0 {
		t.Error("FULL must rank above READ")
	}
	if LevelWrite.Compare(LevelWrite) != 0 {
		t.Error("equal levels must compare to zero")
	}
}

func TestSnapshotDayOverride(t *testing.T) {
	s, err := NewSnapshot("2026-03-16", "14:30", "saturday")
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	if s.Day != "saturday" {
		t.Errorf("day override lost: %q", s.Day)
	}

	if _, err := NewSnapshot("2026-03-16", "14:30", "caturday"); err == nil {
		t.Error("expected error for unknown weekday")
	}
	if _, err := NewSnapshot("16.03.2026", "14:30", ""); err == nil {
		t.Error("expected error for malformed date")
	}
}
