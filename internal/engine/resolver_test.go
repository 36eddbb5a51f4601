package engine

import (
	"reflect"
	"testing"

	"github.com/doorman-ac/doorman/internal/core"
)

func TestResolveKnownPaths(t *testing.T) {
	ectx := testContext(t, func(e *core.EvaluationContext) {
		e.User.Tags = []string{"beta"}
		e.Request.Geo.Region = "BY"
	})

	tests := []struct {
		path string
		want any
	}{
		{"user.id", "user-1"},
		{"user.role", "student"},
		{"user.groups", []string{"training_2025"}},
		{"user.tags", []string{"beta"}},
		{"request.ip", "203.0.113.7"},
		{"request.geo.country", "DE"},
		{"request.geo.region", "BY"},
		{"current_date", "2026-03-16"},
		{"current_time", "14:30"},
		{"current_day", "monday"},
	}
	for _, tt := range tests {
		got, found := Resolve(ectx, tt.path)
		if !found {
			t.Errorf("Resolve(%q): not found", tt.path)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Resolve(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestResolveAbsentValues(t *testing.T) {
	ectx := testContext(t, func(e *core.EvaluationContext) {
		e.User.Email = ""
	})

	// unknown path
	if _, found := Resolve(ectx, "user.unknown"); found {
		t.Error("unknown path must not resolve")
	}
	// empty optional string counts as absent
	if _, found := Resolve(ectx, "user.email"); found {
		t.Error("empty string attribute must not resolve")
	}
	if _, found := Resolve(ectx, "user.deactivation_date"); found {
		t.Error("unset date attribute must not resolve")
	}
	// array fields resolve even when empty
	ectx.User.Services = nil
	if _, found := Resolve(ectx, "user.services"); !found {
		t.Error("array field must resolve even when empty")
	}
}

func TestKnownFieldsSorted(t *testing.T) {
	fields := KnownFields()
	if len(fields) == 0 {
		t.Fatal("expected known fields")
	}
	for i := 1; i < len(fields); i++ {
		if fields[i-1] >= fields[i] {
			t.Fatalf("fields not sorted: %q before %q", fields[i-1], fields[i])
		}
	}
	for _, required := range []string{"user.id", "user.groups", "current_date", "request.geo.country"} {
		found := false
		for _, f := range fields {
			if f == required {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %q in known fields", required)
		}
	}
}
