package hostlink

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the registration surface: it declares which bound native
// functions form which overloaded sets.
type Config struct {
	// Groups lists the overloaded sets to build. Order inside a group's
	// function list matters: it is the registration order, which is part
	// of resolution semantics.
	Groups []GroupConfig `yaml:"groups"`
}

// GroupConfig declares one overloaded set.
type GroupConfig struct {
	// Name is the set's name, used in error messages and as the key in
	// the built registry.
	Name string `yaml:"name"`

	// Functions lists registered function names whose alternatives join
	// this set. A name may be listed in several groups.
	Functions []string `yaml:"functions"`
}

// ParseConfig parses and validates a YAML registration config. path is
// used in error messages only.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(cfg.Groups) == 0 {
		return nil, fmt.Errorf("%s: no groups declared", path)
	}

	seen := make(map[string]bool)
	for i, group := range cfg.Groups {
		if group.Name == "" {
			return nil, fmt.Errorf("%s: group %d has no name", path, i)
		}
		if seen[group.Name] {
			return nil, fmt.Errorf("%s: duplicate group %q", path, group.Name)
		}
		seen[group.Name] = true
		if len(group.Functions) == 0 {
			return nil, fmt.Errorf("%s: group %q lists no functions", path, group.Name)
		}
		for j, fn := range group.Functions {
			if fn == "" {
				return nil, fmt.Errorf("%s: group %q: function %d has no name", path, group.Name, j)
			}
		}
	}
	return &cfg, nil
}
