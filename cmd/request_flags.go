package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/pflag"

	"github.com/doorman-ac/doorman/internal/core"
	"github.com/doorman-ac/doorman/internal/service"
)

// requestFlags collects the simulated request context shared by the why,
// simulate and debug commands.
type requestFlags struct {
	resourceType string
	resourceID   string

	contextFile string

	userID   string
	role     string
	status   string
	groups   []string
	tags     []string
	services []string

	ip      string
	country string

	date  string
	clock string
	day   string
}

func (rf *requestFlags) bind(flags *pflag.FlagSet) {
	flags.StringVar(&rf.resourceType, "resource-type", "", "Resource type of the target (e.g. course)")
	flags.StringVar(&rf.resourceID, "resource-id", "", "Resource ID of the target")

	flags.StringVarP(&rf.contextFile, "context", "c", "", "YAML file with the simulated user/request context")

	flags.StringVarP(&rf.userID, "user", "u", "", "Actor ID")
	flags.StringVar(&rf.role, "role", "", "Actor role")
	flags.StringVar(&rf.status, "status", "", "Actor status")
	flags.StringSliceVar(&rf.groups, "group", nil, "Actor group membership (repeatable)")
	flags.StringSliceVar(&rf.tags, "tag", nil, "Actor tag (repeatable)")
	flags.StringSliceVar(&rf.services, "service", nil, "Actor service (repeatable)")

	flags.StringVar(&rf.ip, "ip", "", "Request IP")
	flags.StringVar(&rf.country, "country", "", "Request origin country")

	flags.StringVar(&rf.date, "date", "", "Simulated date (2006-01-02, default: today)")
	flags.StringVar(&rf.clock, "time", "", "Simulated time of day (15:04, default: now)")
	flags.StringVar(&rf.day, "day", "", "Simulated weekday name (default: derived from date)")
}

// simulatedContext is the shape of the --context file.
type simulatedContext struct {
	User    core.Actor       `yaml:"user"`
	Request core.RequestMeta `yaml:"request"`
}

func (rf *requestFlags) buildRequest() (service.EvaluateRequest, error) {
	req := service.EvaluateRequest{
		ResourceType: rf.resourceType,
		ResourceID:   rf.resourceID,
	}

	if rf.contextFile != "" {
		raw, err := os.ReadFile(rf.contextFile)
		if err != nil {
			return req, fmt.Errorf("reading context file: %w", err)
		}
		var sim simulatedContext
		if err := yaml.Unmarshal(raw, &sim); err != nil {
			return req, fmt.Errorf("parsing context file '%s': %w", rf.contextFile, err)
		}
		req.User = sim.User
		req.Request = sim.Request
	}

	// flags override the context file
	if rf.userID != "" {
		req.User.ID = rf.userID
	}
	if rf.role != "" {
		req.User.Role = rf.role
	}
	if rf.status != "" {
		req.User.Status = rf.status
	}
	if len(rf.groups) > 0 {
		req.User.Groups = rf.groups
	}
	if len(rf.tags) > 0 {
		req.User.Tags = rf.tags
	}
	if len(rf.services) > 0 {
		req.User.Services = rf.services
	}
	if rf.ip != "" {
		req.Request.IP = rf.ip
	}
	if rf.country != "" {
		req.Request.Geo.Country = rf.country
	}

	if rf.date != "" || rf.clock != "" || rf.day != "" {
		now := time.Now()
		date := rf.date
		if date == "" {
			date = now.Format(core.DateLayout)
		}
		clock := rf.clock
		if clock == "" {
			clock = now.Format(core.ClockLayout)
		}
		req.Now = &service.NowOverride{Date: date, Time: clock, Day: rf.day}
	}

	return req, nil
}
