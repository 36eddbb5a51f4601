// Package engine implements the hierarchical rule evaluation that decides,
// for a given actor and resource, whether access is granted and at which
// level. Evaluation is a pure, synchronous function of the control definition
// and the evaluation context: no I/O, no shared mutable state, safe to call
// concurrently from any number of goroutines.
package engine

import (
	"sort"
	"time"

	"github.com/doorman-ac/doorman/internal/core"
)

// Evaluate runs the top-level control evaluation:
//
//  1. a disabled control denies with reason "control disabled"
//  2. a control outside its global time window denies
//  3. enabled groups evaluate in ascending priority, combined by the main
//     logic operator with short-circuit
//  4. on a true combination, the granted access level is that of the first
//     true rule in evaluation order (never the highest level)
//
// It always returns a structured result; failure modes are reasons in the
// trace, never errors.
func Evaluate(control *core.AccessControl, ectx *core.EvaluationContext) *core.EvaluationResult {
	start := time.Now()
	trace := &traceBuilder{}

	res := &core.EvaluationResult{
		EvaluationStrategy: control.Strategy,
		MainOperator:       control.MainOperator,
		GroupResults:       []core.GroupResult{},
	}
	defer func() {
		res.ExecutionTimeMs = float64(time.Since(start).Nanoseconds()) / 1e6
		res.EvaluationTrace = trace.Lines()
	}()

	if !control.IsEnabled {
		res.Reason = "control disabled"
		trace.addf("control %s: disabled", control.Key())
		return res
	}

	if control.Window != nil && !withinWindow(control.Window, ectx.Now) {
		res.Reason = "outside global time window"
		trace.addf("control %s: outside global time window", control.Key())
		return res
	}

	groups := enabledGroups(control.Groups)
	combined := control.MainOperator == core.LogicAnd
	if len(groups) == 0 {
		trace.addf("control %s: no enabled groups -> %t (%s)",
			control.Key(), combined, control.MainOperator)
	}
	for _, group := range groups {
		gr := evaluateGroup(group, ectx, trace)
		res.GroupResults = append(res.GroupResults, gr)

		if control.MainOperator == core.LogicOr {
			if gr.Result {
				combined = true
				break
			}
		} else if !gr.Result {
			combined = false
			break
		}
	}

	res.Allowed = combined
	if combined {
		res.AccessLevel = firstTrueAccessLevel(res.GroupResults)
		res.Reason = "access granted"
		trace.addf("control %s: allowed with level %s", control.Key(), res.AccessLevel)
	} else {
		res.Reason = "access denied"
		trace.addf("control %s: denied", control.Key())
	}

	return res
}

// firstTrueAccessLevel scans the recorded results in evaluation order, which
// is ascending (group.priority, rule.priority), and returns the access level
// of the first rule that evaluated true. This is the deterministic tie-break:
// first-true-wins, independent of any map iteration order.
func firstTrueAccessLevel(groups []core.GroupResult) core.AccessLevel {
	for _, gr := range groups {
		for _, rr := range gr.RuleResults {
			if rr.Result {
				return rr.AccessLevel
			}
		}
	}
	return ""
}

// enabledGroups returns pointers to the enabled groups in ascending priority
// order, stable for equal priorities.
func enabledGroups(groups []core.RuleGroup) []*core.RuleGroup {
	out := make([]*core.RuleGroup, 0, len(groups))
	for i := range groups {
		if groups[i].IsEnabled {
			out = append(out, &groups[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}
