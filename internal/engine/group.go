package engine

import (
	"fmt"
	"sort"

	"github.com/doorman-ac/doorman/internal/core"
)

// evaluateGroup combines a group's enabled rules with the group's logic
// operator. Rules run in ascending priority order with the same short-circuit
// behavior as conditions; every computed rule result is retained so the trace
// stays complete even after an early exit.
func evaluateGroup(group *core.RuleGroup, ectx *core.EvaluationContext, trace *traceBuilder) core.GroupResult {
	res := core.GroupResult{
		GroupID:   group.ID,
		GroupName: group.Name,
		Operator:  group.LogicOperator,
	}

	rules := enabledRules(group.Rules)
	if len(rules) == 0 {
		res.Result = group.LogicOperator == core.LogicAnd
		res.Reason = "no enabled rules"
		trace.addf("group '%s': no enabled rules -> %t (%s)", group.Name, res.Result, group.LogicOperator)
		return res
	}

	res.Result = group.LogicOperator == core.LogicAnd
	for _, rule := range rules {
		rr := evaluateRule(rule, ectx, trace)
		res.RuleResults = append(res.RuleResults, rr)

		if group.LogicOperator == core.LogicOr {
			if rr.Result {
				res.Result = true
				break
			}
		} else if !rr.Result {
			res.Result = false
			res.Reason = fmt.Sprintf("rule '%s' failed", rule.Name)
			break
		}
	}
	if !res.Result && res.Reason == "" {
		res.Reason = "no rule matched"
	}

	trace.addf("group '%s': %t (%s)", group.Name, res.Result, group.LogicOperator)
	return res
}

// enabledRules returns pointers to the enabled rules in ascending priority
// order, stable for equal priorities.
func enabledRules(rules []core.Rule) []*core.Rule {
	out := make([]*core.Rule, 0, len(rules))
	for i := range rules {
		if rules[i].IsEnabled {
			out = append(out, &rules[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}
