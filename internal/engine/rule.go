package engine

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"

	"github.com/doorman-ac/doorman/internal/core"
)

// evaluateRule combines a rule's enabled conditions with the rule's logic
// operator, gated by the rule's own time window. Conditions run in ascending
// priority order; AND short-circuits on the first false, OR on the first true.
// Computed condition results are always retained for the trace.
func evaluateRule(rule *core.Rule, ectx *core.EvaluationContext, trace *traceBuilder) core.RuleResult {
	res := core.RuleResult{
		RuleID:      rule.ID,
		RuleName:    rule.Name,
		Operator:    rule.LogicOperator,
		AccessLevel: rule.AccessLevel,
	}

	if rule.Window != nil && !withinWindow(rule.Window, ectx.Now) {
		res.Reason = "outside rule time window"
		trace.addf("rule '%s': outside rule time window", rule.Name)
		return res
	}

	if rule.CompiledExpr != nil {
		res.Result, res.Reason = runRuleExpr(rule, ectx)
		trace.addf("rule '%s' (expr): %t%s", rule.Name, res.Result, reasonSuffix(res.Reason))
		return res
	}

	conds := enabledConditions(rule.Conditions)
	if len(conds) == 0 {
		// vacuous truth: AND over zero conditions is true, OR is false
		res.Result = rule.LogicOperator == core.LogicAnd
		res.Reason = "no enabled conditions"
		trace.addf("rule '%s': no enabled conditions -> %t (%s)", rule.Name, res.Result, rule.LogicOperator)
		return res
	}

	res.Result = rule.LogicOperator == core.LogicAnd
	for _, cond := range conds {
		cr := evaluateCondition(*cond, ectx)
		res.ConditionResults = append(res.ConditionResults, cr)
		trace.addf("condition %s %s %v: %t%s",
			cond.FieldPath, cond.Operator, cond.Value, cr.Result, reasonSuffix(cr.Reason))

		if rule.LogicOperator == core.LogicOr {
			if cr.Result {
				res.Result = true
				break
			}
		} else if !cr.Result {
			res.Result = false
			res.Reason = fmt.Sprintf("condition '%s' failed", cond.FieldPath)
			break
		}
	}
	if !res.Result && res.Reason == "" {
		res.Reason = "no condition matched"
	}

	trace.addf("rule '%s': %t (%s)", rule.Name, res.Result, rule.LogicOperator)
	return res
}

// runRuleExpr evaluates a COMPLEX rule's compiled expression. Expression
// failures fold into a false result with a reason, like any other condition
// failure.
func runRuleExpr(rule *core.Rule, ectx *core.EvaluationContext) (bool, string) {
	out, err := expr.Run(rule.CompiledExpr, map[string]any{
		"user":    ectx.User,
		"request": ectx.Request,
		"now":     ectx.Now,
	})
	if err != nil {
		return false, fmt.Sprintf("expression error: %v", err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, "expression did not evaluate to a boolean"
	}
	if !b {
		return false, "expression evaluated to false"
	}
	return true, ""
}

// enabledConditions returns pointers to the enabled conditions in ascending
// priority order, stable for equal priorities.
func enabledConditions(conds []core.Condition) []*core.Condition {
	out := make([]*core.Condition, 0, len(conds))
	for i := range conds {
		if conds[i].IsEnabled {
			out = append(out, &conds[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

func reasonSuffix(reason string) string {
	if reason == "" {
		return ""
	}
	return " (" + reason + ")"
}
