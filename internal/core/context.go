package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire format for dates in contexts and windows.
	DateLayout = "2006-01-02"
	// ClockLayout is the wire format for times of day.
	ClockLayout = "15:04"
)

// Actor carries the attributes of the subject requesting access.
// All values arrive pre-authenticated; the engine never verifies identity.
type Actor struct {
	ID       string   `yaml:"id" json:"id"`
	Email    string   `yaml:"email,omitempty" json:"email,omitempty"`
	Role     string   `yaml:"role,omitempty" json:"role,omitempty"`
	Groups   []string `yaml:"groups,omitempty" json:"groups,omitempty"`
	Tags     []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Services []string `yaml:"services,omitempty" json:"services,omitempty"`
	Status   string   `yaml:"status,omitempty" json:"status,omitempty"`

	// Optional date attributes ("2006-01-02"); empty means unset.
	DeactivationDate    string `yaml:"deactivation_date,omitempty" json:"deactivation_date,omitempty"`
	SubscriptionEndDate string `yaml:"subscription_end_date,omitempty" json:"subscription_end_date,omitempty"`
	LastLogin           string `yaml:"last_login,omitempty" json:"last_login,omitempty"`
}

// Geo is the coarse request origin.
type Geo struct {
	Country string `yaml:"country,omitempty" json:"country,omitempty"`
	Region  string `yaml:"region,omitempty" json:"region,omitempty"`
	City    string `yaml:"city,omitempty" json:"city,omitempty"`
}

// RequestMeta carries the attributes of the access request itself.
type RequestMeta struct {
	IP  string `yaml:"ip,omitempty" json:"ip,omitempty"`
	Geo Geo    `yaml:"geo,omitempty" json:"geo,omitempty"`
}

// Snapshot is the single authoritative "now" for one evaluation. Every time
// comparison within a call uses the same snapshot, so an evaluation stays
// internally consistent even if real time advances mid-call.
type Snapshot struct {
	Date string `yaml:"date" json:"date"` // "2006-01-02"
	Time string `yaml:"time" json:"time"` // "15:04"
	Day  string `yaml:"day,omitempty" json:"day,omitempty"`

	// At is the combined instant, derived once when the snapshot is built.
	At time.Time `yaml:"-" json:"-"`
	// Weekday is derived from Date unless Day overrides it.
	Weekday time.Weekday `yaml:"-" json:"-"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NewSnapshot parses a real-or-simulated "now". The day name is optional and
// defaults to the date's weekday; when given it wins, so simulations can probe
// weekday gating independently of the date.
func NewSnapshot(date, clock, day string) (Snapshot, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parsing date '%s': %w", date, err)
	}
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parsing time '%s': %w", clock, err)
	}

	weekday := d.Weekday()
	if day != "" {
		wd, ok := weekdayNames[strings.ToLower(day)]
		if !ok {
			return Snapshot{}, fmt.Errorf("unknown weekday '%s'", day)
		}
		weekday = wd
	}

	return Snapshot{
		Date:    date,
		Time:    clock,
		Day:     strings.ToLower(weekday.String()),
		At:      time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC),
		Weekday: weekday,
	}, nil
}

// SnapshotAt builds a snapshot from a wall-clock instant.
func SnapshotAt(t time.Time) Snapshot {
	return Snapshot{
		Date:    t.Format(DateLayout),
		Time:    t.Format(ClockLayout),
		Day:     strings.ToLower(t.Weekday().String()),
		At:      time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC),
		Weekday: t.Weekday(),
	}
}

// EvaluationContext is the ephemeral input to one evaluation: the actor, the
// request, and the now snapshot. It is never persisted and treated as
// immutable for the duration of the call.
type EvaluationContext struct {
	ResourceType string      `json:"resourceType"`
	ResourceID   string      `json:"resourceId"`
	User         Actor       `json:"user"`
	Request      RequestMeta `json:"request"`
	Now          Snapshot    `json:"now"`
}
