package audit

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/doorman-ac/doorman/internal/config"
	"github.com/doorman-ac/doorman/internal/core"
)

type fileConfig struct {
	Path string `mapstructure:"path"`
}

type memoryConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// Build constructs the auditor selected by the config. Type-specific fields
// live inline in the YAML and are decoded per type.
func Build(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}

	switch cfg.Type {
	case "file":
		var fc fileConfig
		if err := mapstructure.Decode(cfg.Config, &fc); err != nil {
			return nil, fmt.Errorf("decoding file auditor config: %w", err)
		}
		if fc.Path == "" {
			return nil, fmt.Errorf("file auditor requires a path")
		}
		return NewFileAuditor(fc.Path)

	case "memory", "":
		var mc memoryConfig
		if err := mapstructure.Decode(cfg.Config, &mc); err != nil {
			return nil, fmt.Errorf("decoding memory auditor config: %w", err)
		}
		return NewInMemoryAuditor(mc.MaxEntries), nil

	default:
		return nil, fmt.Errorf("unknown auditor type %q", cfg.Type)
	}
}
