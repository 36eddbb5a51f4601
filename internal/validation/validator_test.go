package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorman-ac/doorman/internal/core"
)

func validControl() *core.AccessControl {
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
				Conditions: []core.Condition{{
					FieldPath: "user.groups",
					Operator:  core.OpContains,
					Value:     "training_2025",
					IsEnabled: true,
				}},
			}},
		}},
	}
}

func TestValidateControlsAccepts(t *testing.T) {
	controls, err := ValidateControls([]*core.AccessControl{validControl()})
	require.NoError(t, err)
	require.Len(t, controls, 1)
}

func TestValidateControlsDuplicateKey(t *testing.T) {
	_, err := ValidateControls([]*core.AccessControl{validControl(), validControl()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate control")
}

func TestValidateControlsMissingResource(t *testing.T) {
	control := validControl()
	control.ResourceID = ""
	_, err := ValidateControls([]*core.AccessControl{control})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing resource_type or resource_id")
}

func TestValidateControlsDuplicateGroupName(t *testing.T) {
	control := validControl()
	control.Groups = append(control.Groups, control.Groups[0])
	_, err := ValidateControls([]*core.AccessControl{control})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not unique")
}

func TestValidateControlsOperatorKindMismatch(t *testing.T) {
	control := validControl()
	control.Groups[0].Rules[0].Conditions[0].Operator = core.OpStartsWith
	_, err := ValidateControls([]*core.AccessControl{control})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not applicable")
}

func TestValidateControlsUnknownOperator(t *testing.T) {
	control := validControl()
	control.Groups[0].Rules[0].Conditions[0].Operator = "SOUNDS_LIKE"
	_, err := ValidateControls([]*core.AccessControl{control})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operator")
}

func TestValidateControlsValueShapes(t *testing.T) {
	t.Run("IN needs array", func(t *testing.T) {
		control := validControl()
		control.Groups[0].Rules[0].Conditions[0] = core.Condition{
			FieldPath: "user.role", Operator: core.OpIn, Value: "student", IsEnabled: true,
		}
		_, err := ValidateControls([]*core.AccessControl{control})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expects an array")
	})

	t.Run("BETWEEN needs pair", func(t *testing.T) {
		control := validControl()
		control.Groups[0].Rules[0].Conditions[0] = core.Condition{
			FieldPath: "user.role", Operator: core.OpBetween, Value: []any{1, 2, 3}, IsEnabled: true,
		}
		_, err := ValidateControls([]*core.AccessControl{control})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "[low, high]")
	})

	t.Run("WITHIN_LAST needs token", func(t *testing.T) {
		control := validControl()
		control.Groups[0].Rules[0].Conditions[0] = core.Condition{
			FieldPath: "user.deactivation_date", Operator: core.OpWithinLast, Value: "lots_of_time", IsEnabled: true,
		}
		_, err := ValidateControls([]*core.AccessControl{control})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WITHIN_LAST expects")
	})
}

func TestValidateControlsWindows(t *testing.T) {
	control := validControl()
	control.Window = &core.TimeWindow{StartDate: "March 1st"}
	_, err := ValidateControls([]*core.AccessControl{control})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")

	control = validControl()
	control.Groups[0].Rules[0].Window = &core.TimeWindow{Weekdays: []string{"caturday"}}
	_, err = ValidateControls([]*core.AccessControl{control})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid weekday")
}

func TestValidateControlsExpr(t *testing.T) {
	t.Run("compiled under COMPLEX", func(t *testing.T) {
		control := validControl()
		control.Strategy = core.StrategyComplex
		control.Groups[0].Rules[0].Conditions = nil
		control.Groups[0].Rules[0].Expr = `user.Role == "student"`

		controls, err := ValidateControls([]*core.AccessControl{control})
		require.NoError(t, err)
		require.NotNil(t, controls[0].Groups[0].Rules[0].CompiledExpr)
	})

	t.Run("rejected under SIMPLE", func(t *testing.T) {
		control := validControl()
		control.Groups[0].Rules[0].Conditions = nil
		control.Groups[0].Rules[0].Expr = `user.Role == "student"`

		_, err := ValidateControls([]*core.AccessControl{control})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "strategy is SIMPLE")
	})

	t.Run("rejected alongside conditions", func(t *testing.T) {
		control := validControl()
		control.Strategy = core.StrategyComplex
		control.Groups[0].Rules[0].Expr = `user.Role == "student"`

		_, err := ValidateControls([]*core.AccessControl{control})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "both conditions and expr")
	})

	t.Run("syntax error rejected", func(t *testing.T) {
		control := validControl()
		control.Strategy = core.StrategyComplex
		control.Groups[0].Rules[0].Conditions = nil
		control.Groups[0].Rules[0].Expr = `user.Role ==`

		_, err := ValidateControls([]*core.AccessControl{control})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compiling expr")
	})
}
