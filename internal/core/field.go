package core

import "strings"

// Operator defines how a resolved context value is compared against a
// condition's expected value.
type Operator string

const (
	OpEquals      Operator = "EQUALS"
	OpNotEquals   Operator = "NOT_EQUALS"
	OpContains    Operator = "CONTAINS"
	OpNotContains Operator = "NOT_CONTAINS"
	OpStartsWith  Operator = "STARTS_WITH"
	OpEndsWith    Operator = "ENDS_WITH"
	OpIn          Operator = "IN"
	OpNotIn       Operator = "NOT_IN"
	OpGreaterThan Operator = "GREATER_THAN"
	OpLessThan    Operator = "LESS_THAN"
	// OpBetween is the inclusive two-sided range [low, high].
	OpBetween Operator = "BETWEEN"
	// OpWithinLast takes a duration token "<N>_<days|months|years>" and is true
	// iff the actual date falls within [now - duration, now].
	OpWithinLast Operator = "WITHIN_LAST"
)

func (op Operator) IsValid() bool {
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith,
		OpEndsWith, OpIn, OpNotIn, OpGreaterThan, OpLessThan, OpBetween, OpWithinLast:
		return true
	default:
		return false
	}
}

// FieldKind classifies a field path and selects the legal operator set.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindArray  FieldKind = "array"
	KindDate   FieldKind = "date"
)

// KindOf infers the kind of a field path: a path whose last segment is one of
// groups/tags/services is an array field; a path containing "date"/"time" or
// equal to current_date is a date field; everything else is a string field.
func KindOf(fieldPath string) FieldKind {
	segments := strings.Split(fieldPath, ".")
	switch segments[len(segments)-1] {
	case "groups", "tags", "services":
		return KindArray
	}
	if fieldPath == "current_date" ||
		strings.Contains(fieldPath, "date") || strings.Contains(fieldPath, "time") {
		return KindDate
	}
	return KindString
}

var operatorsByKind = map[FieldKind]map[Operator]struct{}{
	KindArray: {
		OpContains: {}, OpNotContains: {}, OpIn: {}, OpNotIn: {},
	},
	KindDate: {
		OpEquals: {}, OpGreaterThan: {}, OpLessThan: {}, OpBetween: {}, OpWithinLast: {},
	},
	KindString: {
		OpEquals: {}, OpNotEquals: {}, OpContains: {}, OpNotContains: {},
		OpStartsWith: {}, OpEndsWith: {}, OpIn: {}, OpNotIn: {},
		OpGreaterThan: {}, OpLessThan: {}, OpBetween: {},
	},
}

// AllowedFor reports whether the operator is legal for fields of the given kind.
// An operator applied outside its legal set evaluates to false at runtime and
// is rejected at load time by validation.
func (op Operator) AllowedFor(kind FieldKind) bool {
	set, ok := operatorsByKind[kind]
	if !ok {
		return false
	}
	_, ok = set[op]
	return ok
}
