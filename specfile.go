package chatmux

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:default} patterns in a string.
func expandEnvVars(s string, env Environ) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		if val, ok := env.LookupEnv(submatch[1]); ok {
			return val
		}
		if len(submatch) >= 3 {
			return submatch[2]
		}
		return ""
	})
}

type specFile struct {
	Providers []ProviderSpec `yaml:"providers"`
}

// LoadSpecs reads additional registry records from a YAML file, expanding
// ${VAR} and ${VAR:default} references against the process environment.
// Loaded records are returned for the caller to merge; the built-in table is
// not mutated.
func LoadSpecs(path string) ([]ProviderSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file %s: %w", path, err)
	}
	return ParseSpecs(data, osEnviron{})
}

// ParseSpecs decodes registry records from YAML data, expanding environment
// references through env.
func ParseSpecs(data []byte, env Environ) ([]ProviderSpec, error) {
	expanded := expandEnvVars(string(data), env)
	var f specFile
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return nil, fmt.Errorf("parse registry data: %w", err)
	}
	for i := range f.Providers {
		if f.Providers[i].Name == "" {
			return nil, fmt.Errorf("registry record %d: missing name", i)
		}
	}
	return f.Providers, nil
}
