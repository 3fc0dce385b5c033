package loader

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "WINCTL_")
	mapping map[string]string // Env var -> config path
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "WINCTL_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		lookup:  os.LookupEnv,
	}
}

// defaultEnvMapping returns the default environment variable mappings.
func defaultEnvMapping(prefix string) map[string]string {
	paths := []string{
		"window.lastView",
		"jumplist.capacity",
		"symbols.match",
		"symbols.maxFiltered",
		"log.level",
		"log.format",
		"script.timeout",
		"script.init",
	}
	m := make(map[string]string, len(paths))
	for _, p := range paths {
		m[PathToEnv(prefix, p)] = p
	}
	return m
}

// WithLookup replaces the environment lookup function.
func (l *EnvLoader) WithLookup(fn func(string) (string, bool)) *EnvLoader {
	l.lookup = fn
	return l
}

// Load reads the mapped environment variables and returns a configuration
// map. Empty values are treated as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for env, path := range l.mapping {
		if val, ok := l.lookup(env); ok {
			setByPath(config, path, parseValue(val))
		}
	}
	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// Mapping returns a copy of the env var to config path mapping.
func (l *EnvLoader) Mapping() map[string]string {
	out := make(map[string]string, len(l.mapping))
	for k, v := range l.mapping {
		out[k] = v
	}
	return out
}

// PathToEnv converts window.lastView to WINCTL_WINDOW_LAST_VIEW.
func PathToEnv(prefix, path string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for i, r := range path {
		switch {
		case r == '.':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z' && i > 0:
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteString(strings.ToUpper(string(r)))
		}
	}
	return b.String()
}

// parseValue attempts to parse the string value into an appropriate type.
// Numbers stay numbers, so "1" is an int and not a bool.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Only values with a decimal point are floats.
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d.String()
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}

	current[parts[len(parts)-1]] = value
}
