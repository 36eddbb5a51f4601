package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doorman-ac/doorman/internal/core"
)

// evaluateCondition evaluates one leaf condition against the context.
// Every failure mode (unknown field, illegal operator, malformed expected
// value) degrades to a false result with a reason; nothing here errors.
// Negation is applied last, so negating a fail-closed false yields true.
func evaluateCondition(cond core.Condition, ectx *core.EvaluationContext) core.ConditionResult {
	res := core.ConditionResult{
		ConditionID:   cond.ID,
		FieldPath:     cond.FieldPath,
		Operator:      cond.Operator,
		ExpectedValue: cond.Value,
		IsNegated:     cond.IsNegated,
	}

	var raw bool
	var reason string

	actual, found := Resolve(ectx, cond.FieldPath)
	if !found {
		reason = "field not found: " + cond.FieldPath
	} else {
		res.ActualValue = actual
		kind := core.KindOf(cond.FieldPath)
		if !cond.Operator.AllowedFor(kind) {
			reason = fmt.Sprintf("operator %s is not applicable to %s field '%s'",
				cond.Operator, kind, cond.FieldPath)
		} else {
			switch kind {
			case core.KindArray:
				raw, reason = evalArrayCondition(cond, actual)
			case core.KindDate:
				raw, reason = evalDateCondition(cond, actual, ectx.Now)
			default:
				raw, reason = evalStringCondition(cond, actual)
			}
		}
	}

	res.Result = raw
	if cond.IsNegated {
		res.Result = !raw
	}
	res.Reason = reason
	return res
}

func evalStringCondition(cond core.Condition, actual any) (bool, string) {
	val := toString(actual)

	switch cond.Operator {
	case core.OpEquals:
		expected := toString(cond.Value)
		if val != expected {
			return false, fmt.Sprintf("expected '%s' to equal '%s'", val, expected)
		}
		return true, ""

	case core.OpNotEquals:
		expected := toString(cond.Value)
		if val == expected {
			return false, fmt.Sprintf("expected '%s' to not equal '%s'", val, expected)
		}
		return true, ""

	case core.OpContains:
		sub := toString(cond.Value)
		if !strings.Contains(val, sub) {
			return false, fmt.Sprintf("value '%s' does not contain '%s'", val, sub)
		}
		return true, ""

	case core.OpNotContains:
		sub := toString(cond.Value)
		if strings.Contains(val, sub) {
			return false, fmt.Sprintf("value '%s' contains '%s'", val, sub)
		}
		return true, ""

	case core.OpStartsWith:
		prefix := toString(cond.Value)
		if !strings.HasPrefix(val, prefix) {
			return false, fmt.Sprintf("value '%s' does not start with '%s'", val, prefix)
		}
		return true, ""

	case core.OpEndsWith:
		suffix := toString(cond.Value)
		if !strings.HasSuffix(val, suffix) {
			return false, fmt.Sprintf("value '%s' does not end with '%s'", val, suffix)
		}
		return true, ""

	case core.OpIn:
		list, ok := toList(cond.Value)
		if !ok {
			return false, "malformed value: IN expects an array"
		}
		if !listContains(list, val) {
			return false, fmt.Sprintf("value '%s' not in list %v", val, list)
		}
		return true, ""

	case core.OpNotIn:
		list, ok := toList(cond.Value)
		if !ok {
			return false, "malformed value: NOT_IN expects an array"
		}
		if listContains(list, val) {
			return false, fmt.Sprintf("value '%s' found in list %v", val, list)
		}
		return true, ""

	case core.OpGreaterThan, core.OpLessThan:
		actualNum, ok1 := toFloat(actual)
		expectedNum, ok2 := toFloat(cond.Value)
		if !ok1 || !ok2 {
			return false, "malformed value: numeric comparison on non-numeric value"
		}
		if cond.Operator == core.OpGreaterThan {
			if actualNum <= expectedNum {
				return false, fmt.Sprintf("%v is not greater than %v", actualNum, expectedNum)
			}
		} else if actualNum >= expectedNum {
			return false, fmt.Sprintf("%v is not less than %v", actualNum, expectedNum)
		}
		return true, ""

	case core.OpBetween:
		low, high, ok := rangeBounds(cond.Value)
		if !ok {
			return false, "malformed value: BETWEEN expects [low, high]"
		}
		actualNum, ok1 := toFloat(actual)
		lowNum, ok2 := toFloat(low)
		highNum, ok3 := toFloat(high)
		if !ok1 || !ok2 || !ok3 {
			return false, "malformed value: BETWEEN bound is not numeric"
		}
		if actualNum < lowNum || actualNum > highNum {
			return false, fmt.Sprintf("%v is not within [%v, %v]", actualNum, lowNum, highNum)
		}
		return true, ""
	}

	return false, fmt.Sprintf("unknown operator '%s'", cond.Operator)
}

func evalArrayCondition(cond core.Condition, actual any) (bool, string) {
	items, ok := toList(actual)
	if !ok {
		return false, "malformed value: array field did not resolve to a list"
	}

	switch cond.Operator {
	case core.OpContains:
		item := toString(cond.Value)
		if !listContains(items, item) {
			return false, fmt.Sprintf("list %v does not contain '%s'", items, item)
		}
		return true, ""

	case core.OpNotContains:
		item := toString(cond.Value)
		if listContains(items, item) {
			return false, fmt.Sprintf("list %v contains '%s'", items, item)
		}
		return true, ""

	case core.OpIn:
		expected, ok := toList(cond.Value)
		if !ok {
			return false, "malformed value: IN expects an array"
		}
		// membership of the actual list in the expected list, i.e. any overlap
		for _, item := range items {
			if listContains(expected, toString(item)) {
				return true, ""
			}
		}
		return false, fmt.Sprintf("no element of %v is in list %v", items, expected)

	case core.OpNotIn:
		expected, ok := toList(cond.Value)
		if !ok {
			return false, "malformed value: NOT_IN expects an array"
		}
		for _, item := range items {
			if listContains(expected, toString(item)) {
				return false, fmt.Sprintf("element '%s' found in list %v", toString(item), expected)
			}
		}
		return true, ""
	}

	return false, fmt.Sprintf("unknown operator '%s'", cond.Operator)
}

func evalDateCondition(cond core.Condition, actual any, now core.Snapshot) (bool, string) {
	at, ok := parseTemporal(toString(actual))
	if !ok {
		return false, fmt.Sprintf("malformed value: cannot parse '%s' as date or time", toString(actual))
	}

	switch cond.Operator {
	case core.OpEquals:
		expected, ok := parseTemporal(toString(cond.Value))
		if !ok {
			return false, fmt.Sprintf("malformed value: cannot parse '%s' as date or time", toString(cond.Value))
		}
		if !at.Equal(expected) {
			return false, fmt.Sprintf("'%s' does not equal '%s'", toString(actual), toString(cond.Value))
		}
		return true, ""

	case core.OpGreaterThan, core.OpLessThan:
		expected, ok := parseTemporal(toString(cond.Value))
		if !ok {
			return false, fmt.Sprintf("malformed value: cannot parse '%s' as date or time", toString(cond.Value))
		}
		if cond.Operator == core.OpGreaterThan {
			if !at.After(expected) {
				return false, fmt.Sprintf("'%s' is not after '%s'", toString(actual), toString(cond.Value))
			}
		} else if !at.Before(expected) {
			return false, fmt.Sprintf("'%s' is not before '%s'", toString(actual), toString(cond.Value))
		}
		return true, ""

	case core.OpBetween:
		low, high, ok := rangeBounds(cond.Value)
		if !ok {
			return false, "malformed value: BETWEEN expects [low, high]"
		}
		lowAt, ok1 := parseTemporal(toString(low))
		highAt, ok2 := parseTemporal(toString(high))
		if !ok1 || !ok2 {
			return false, "malformed value: BETWEEN bound is not a date or time"
		}
		if at.Before(lowAt) || at.After(highAt) {
			return false, fmt.Sprintf("'%s' is not within ['%s', '%s']", toString(actual), toString(low), toString(high))
		}
		return true, ""

	case core.OpWithinLast:
		start, ok := subtractDurationToken(now.At, toString(cond.Value))
		if !ok {
			return false, fmt.Sprintf("malformed value: '%s' is not a '<N>_<days|months|years>' token", toString(cond.Value))
		}
		if at.Before(start) || at.After(now.At) {
			return false, fmt.Sprintf("'%s' is not within the last %s", toString(actual), toString(cond.Value))
		}
		return true, ""
	}

	return false, fmt.Sprintf("unknown operator '%s'", cond.Operator)
}

// parseTemporal accepts the formats context values appear in: a date, a
// date+time, an RFC 3339 timestamp, or a bare time of day (anchored to the
// zero date so HH:MM values order among themselves).
func parseTemporal(s string) (time.Time, bool) {
	for _, layout := range []string{
		core.DateLayout + " " + core.ClockLayout,
		core.DateLayout,
		time.RFC3339,
		core.ClockLayout,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// subtractDurationToken resolves "<N>_<days|months|years>" relative to now.
func subtractDurationToken(now time.Time, token string) (time.Time, bool) {
	parts := strings.SplitN(token, "_", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 0 {
		return time.Time{}, false
	}
	switch strings.ToLower(parts[1]) {
	case "days", "day":
		return now.AddDate(0, 0, -n), true
	case "months", "month":
		return now.AddDate(0, -n, 0), true
	case "years", "year":
		return now.AddDate(-n, 0, 0), true
	}
	return time.Time{}, false
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toList(v any) ([]any, bool) {
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

func rangeBounds(v any) (any, any, bool) {
	list, ok := toList(v)
	if !ok || len(list) != 2 {
		return nil, nil, false
	}
	return list[0], list[1], true
}

func listContains(list []any, item string) bool {
	for _, candidate := range list {
		if toString(candidate) == item {
			return true
		}
	}
	return false
}
