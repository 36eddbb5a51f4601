package engine

import "fmt"

// traceBuilder accumulates the human-readable evaluation trace. Every tier
// appends lines as it evaluates; the control evaluator attaches the final
// slice to the result.
type traceBuilder struct {
	lines []string
}

func (t *traceBuilder) addf(format string, args ...any) {
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

func (t *traceBuilder) Lines() []string {
	if t.lines == nil {
		return []string{}
	}
	return t.lines
}
