package config

import (
	"fmt"
	"time"

	"github.com/dshills/winctl/internal/layout"
	"github.com/dshills/winctl/internal/logging"
	"github.com/dshills/winctl/internal/nav"
	"github.com/dshills/winctl/internal/symbols"
	"github.com/dshills/winctl/internal/window"
)

// Config is the complete winctl configuration.
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	JumpList JumpListConfig `toml:"jumplist" yaml:"jumplist"`
	Symbols  SymbolsConfig  `toml:"symbols" yaml:"symbols"`
	Log      LogConfig      `toml:"log" yaml:"log"`
	Script   ScriptConfig   `toml:"script" yaml:"script"`
}

// WindowConfig holds registry policy settings.
type WindowConfig struct {
	// LastView is "refuse" or "placeholder".
	LastView string `toml:"lastView" yaml:"lastView"`

	// DefaultSplit is the orientation used when none is given.
	DefaultSplit string `toml:"defaultSplit" yaml:"defaultSplit"`
}

// JumpListConfig holds navigation history settings.
type JumpListConfig struct {
	Capacity int `toml:"capacity" yaml:"capacity"`
}

// SymbolsConfig holds symbol cache settings.
type SymbolsConfig struct {
	// Match is "substring" or "fuzzy".
	Match       string `toml:"match" yaml:"match"`
	MaxFiltered int    `toml:"maxFiltered" yaml:"maxFiltered"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// ScriptConfig holds Lua host settings.
type ScriptConfig struct {
	Timeout time.Duration `toml:"timeout" yaml:"timeout"`

	// Init is a script run at startup. Empty disables it.
	Init string `toml:"init" yaml:"init"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			LastView:     window.LastViewRefuse.String(),
			DefaultSplit: layout.Horizontal.String(),
		},
		JumpList: JumpListConfig{
			Capacity: nav.DefaultJumpListCapacity,
		},
		Symbols: SymbolsConfig{
			Match:       string(symbols.MatchSubstring),
			MaxFiltered: symbols.DefaultMaxFiltered,
		},
		Log: LogConfig{
			Level:  logging.LevelInfo,
			Format: logging.FormatConsole,
		},
		Script: ScriptConfig{
			Timeout: 5 * time.Second,
		},
	}
}

// Validate checks every setting and returns all problems found.
func (c *Config) Validate() error {
	var errs ValidationErrors
	if _, ok := window.ParseLastViewPolicy(c.Window.LastView); !ok {
		errs = append(errs, invalid("window.lastView", c.Window.LastView, "must be refuse or placeholder"))
	}
	if _, ok := layout.ParseOrientation(c.Window.DefaultSplit); !ok {
		errs = append(errs, invalid("window.defaultSplit", c.Window.DefaultSplit, "must be horizontal or vertical"))
	}
	if c.JumpList.Capacity < 1 {
		errs = append(errs, invalid("jumplist.capacity", c.JumpList.Capacity, "must be at least 1"))
	}
	if _, ok := symbols.ParseMatchPolicy(c.Symbols.Match); !ok {
		errs = append(errs, invalid("symbols.match", c.Symbols.Match, "must be substring or fuzzy"))
	}
	if c.Symbols.MaxFiltered < 1 {
		errs = append(errs, invalid("symbols.maxFiltered", c.Symbols.MaxFiltered, "must be at least 1"))
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, invalid("log.level", c.Log.Level, "must be trace, debug, info, warn or error"))
	}
	if c.Log.Format != logging.FormatConsole && c.Log.Format != logging.FormatJSON {
		errs = append(errs, invalid("log.format", c.Log.Format, "must be console or json"))
	}
	if c.Script.Timeout <= 0 {
		errs = append(errs, invalid("script.timeout", c.Script.Timeout, "must be positive"))
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func invalid(path string, value any, msg string) *ValidationError {
	return &ValidationError{Path: path, Value: fmt.Sprint(value), Message: msg}
}

// Policy returns the registry policy described by the window settings.
func (c *Config) Policy() window.Policy {
	p, _ := window.ParseLastViewPolicy(c.Window.LastView)
	return window.Policy{LastView: p}
}

// MatchPolicy returns the symbol filter policy.
func (c *Config) MatchPolicy() symbols.MatchPolicy {
	p, _ := symbols.ParseMatchPolicy(c.Symbols.Match)
	return p
}

// SplitOrientation returns the default split orientation.
func (c *Config) SplitOrientation() layout.Orientation {
	o, _ := layout.ParseOrientation(c.Window.DefaultSplit)
	return o
}

// LoggingOptions returns the logger options for the log settings.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.Log.Level, Format: c.Log.Format}
}
