package config

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyInfo is one row of `docent config show`.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
}

// ShowAll lists the effective non-secret settings. Secrets are omitted
// entirely rather than masked.
func ShowAll(cfg Config) []KeyInfo {
	var rows []KeyInfo
	for _, s := range specs {
		if s.secret {
			continue
		}
		rows = append(rows, KeyInfo{
			Key:    s.key,
			EnvVar: s.env,
			Value:  fmt.Sprintf("%v", s.extract(cfg)),
		})
	}
	return rows
}

// SetKey persists one setting in the platform backend.
func SetKey(key, value string) error {
	s, ok := findSpec(key)
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	if s.secret {
		return fmt.Errorf("cannot set secret %q via config; use environment variable %s", key, s.env)
	}

	b := newPlatformBackend()
	switch s.typ {
	case kInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %w", key, err)
		}
		return b.SetInt(key, i)
	default:
		return b.SetString(key, value)
	}
}

// ValidKeys returns the settable key names, in specs order.
func ValidKeys() []string {
	keys := make([]string, 0, len(specs))
	for _, s := range specs {
		if !s.secret {
			keys = append(keys, s.key)
		}
	}
	return keys
}

func findSpec(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key {
			return s, true
		}
	}
	return keySpec{}, false
}
