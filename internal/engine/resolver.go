package engine

import (
	"sort"

	"github.com/doorman-ac/doorman/internal/core"
)

// accessor extracts one typed value from the evaluation context.
// The second return is false when the value is absent (e.g. an unset optional
// date), which callers must treat as a fail-closed condition.
type accessor func(ectx *core.EvaluationContext) (any, bool)

// accessors is the registry of known dotted field paths. Unknown paths resolve
// to "not found" instead of attempting reflection over the context.
var accessors = map[string]accessor{
	"user.id":    stringField(func(e *core.EvaluationContext) string { return e.User.ID }),
	"user.email": stringField(func(e *core.EvaluationContext) string { return e.User.Email }),
	"user.role":  stringField(func(e *core.EvaluationContext) string { return e.User.Role }),
	"user.groups": func(e *core.EvaluationContext) (any, bool) {
		return e.User.Groups, true
	},
	"user.tags": func(e *core.EvaluationContext) (any, bool) {
		return e.User.Tags, true
	},
	"user.services": func(e *core.EvaluationContext) (any, bool) {
		return e.User.Services, true
	},
	"user.status":                stringField(func(e *core.EvaluationContext) string { return e.User.Status }),
	"user.deactivation_date":     stringField(func(e *core.EvaluationContext) string { return e.User.DeactivationDate }),
	"user.subscription_end_date": stringField(func(e *core.EvaluationContext) string { return e.User.SubscriptionEndDate }),
	"user.last_login":            stringField(func(e *core.EvaluationContext) string { return e.User.LastLogin }),

	"request.ip":          stringField(func(e *core.EvaluationContext) string { return e.Request.IP }),
	"request.geo.country": stringField(func(e *core.EvaluationContext) string { return e.Request.Geo.Country }),
	"request.geo.region":  stringField(func(e *core.EvaluationContext) string { return e.Request.Geo.Region }),
	"request.geo.city":    stringField(func(e *core.EvaluationContext) string { return e.Request.Geo.City }),

	"current_date": stringField(func(e *core.EvaluationContext) string { return e.Now.Date }),
	"current_time": stringField(func(e *core.EvaluationContext) string { return e.Now.Time }),
	"current_day":  stringField(func(e *core.EvaluationContext) string { return e.Now.Day }),
}

// stringField treats the empty string as absent, so optional attributes like
// user.deactivation_date fail closed instead of comparing against "".
func stringField(get func(e *core.EvaluationContext) string) accessor {
	return func(e *core.EvaluationContext) (any, bool) {
		v := get(e)
		if v == "" {
			return nil, false
		}
		return v, true
	}
}

// KnownFields returns every resolvable field path in sorted order.
func KnownFields() []string {
	fields := make([]string, 0, len(accessors))
	for path := range accessors {
		fields = append(fields, path)
	}
	sort.Strings(fields)
	return fields
}

// Resolve looks up a dotted field path in the context. It never panics;
// unknown paths and unset values both return found=false.
func Resolve(ectx *core.EvaluationContext, fieldPath string) (any, bool) {
	acc, ok := accessors[fieldPath]
	if !ok {
		return nil, false
	}
	return acc(ectx)
}
