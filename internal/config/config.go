package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/doorman-ac/doorman/internal/core"
	"github.com/doorman-ac/doorman/internal/validation"
)

type Config struct {
	Server        ServerConfig          `yaml:"server"`
	Audit         AuditConfig           `yaml:"audit"`
	Controls      []*core.AccessControl `yaml:"controls"`
	ControlSource *ControlSource        `yaml:"control_source"`
}

type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// AdminSigningKey is the HMAC key used to verify admin session tokens.
	AdminSigningKey string `yaml:"admin_signing_key"`
}

// AuditConfig selects and configures the decision auditor.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Type    string `yaml:"type"` // e.g., "file", "memory"

	// Config captures the remaining type-specific fields.
	Config map[string]any `yaml:",inline"`
}

type ControlSourceSync struct {
	Interval time.Duration `yaml:"interval"`
}

// GitHubSourceConfig configures GitHub as a control definition source.
type GitHubSourceConfig struct {
	// ServerURL is the GitHub Enterprise server URL.
	// For GitHub.com, this can be left empty.
	ServerURL string `yaml:"server"`

	// Token is a personal access token with read access to the repository.
	Token string `yaml:"token"`

	// Owner of the GitHub repository.
	Owner string `yaml:"owner"`

	// Repo is the name of the GitHub repository.
	Repo string `yaml:"repo"`

	// Path is the directory path within the repository to load control
	// definitions from. For example, "controls/".
	Path string `yaml:"path"`

	// Ref is the git reference to use (e.g. a branch).
	// For example, "main".
	Ref string `yaml:"ref"`
}

func (c *GitHubSourceConfig) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("token is required")
	}
	if c.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if c.Repo == "" {
		return fmt.Errorf("repo is required")
	}
	if c.Ref == "" {
		return fmt.Errorf("ref is required")
	}
	return nil
}

// ControlSource holds configuration for where to sync control definitions from.
type ControlSource struct {
	// GitHub holds configuration for GitHub as a control source.
	GitHub *GitHubSourceConfig `yaml:"github,omitempty"`

	Sync ControlSourceSync `yaml:"sync"`
}

func (s *ControlSource) Validate() error {
	switch {
	case s.GitHub != nil:
		if err := s.GitHub.Validate(); err != nil {
			return fmt.Errorf("validating GitHub control source: %w", err)
		}
	default:
		return fmt.Errorf("no valid control source configured")
	}
	return nil
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}

	validControls, err := validation.ValidateControls(c.Controls)
	if err != nil {
		return fmt.Errorf("validating controls: %w", err)
	}
	c.Controls = validControls

	if c.ControlSource != nil {
		if err := c.ControlSource.Validate(); err != nil {
			return fmt.Errorf("validating control source: %w", err)
		}
	}

	return nil
}
