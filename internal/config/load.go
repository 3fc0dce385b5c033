package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dshills/winctl/internal/config/loader"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WINCTL_"

// Source describes where configuration is read from, in precedence order:
// built-in defaults, then Files in order, then the environment.
type Source struct {
	Files []string

	// FS reads the files. Defaults to the OS file system.
	FS loader.FileSystem

	// Env reads overrides. Defaults to WINCTL_* variables.
	Env *loader.EnvLoader

	// NoEnv skips environment overrides.
	NoEnv bool
}

// Load reads defaults, the optional file at path and the environment.
func Load(path string) (*Config, error) {
	src := Source{}
	if path != "" {
		src.Files = []string{path}
	}
	return src.Load()
}

// Load merges every layer of the source and returns the validated result.
func (s Source) Load() (*Config, error) {
	merged, err := s.Merged()
	if err != nil {
		return nil, err
	}
	cfg, err := decode(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merged returns the merged settings tree before decoding.
func (s Source) Merged() (map[string]any, error) {
	fsys := s.FS
	if fsys == nil {
		fsys = loader.DefaultFS()
	}

	merged, err := Default().Map()
	if err != nil {
		return nil, err
	}
	for _, path := range s.Files {
		l, err := loader.ForFile(fsys, path)
		if err != nil {
			return nil, err
		}
		m, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = DeepMerge(merged, m)
	}

	if !s.NoEnv {
		env := s.Env
		if env == nil {
			env = loader.NewEnvLoader(EnvPrefix)
		}
		m, err := env.Load()
		if err != nil {
			return nil, err
		}
		merged = DeepMerge(merged, m)
	}
	return merged, nil
}

// Map converts the configuration to a settings tree.
func (c *Config) Map() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}

// decode converts a settings tree into a Config. Unknown keys are rejected.
func decode(tree map[string]any) (*Config, error) {
	data, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
