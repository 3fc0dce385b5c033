// Package logging configures the structured logger shared by every component.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"pkt.systems/pslog"
)

// Level names accepted by ParseLevel.
const (
	LevelTrace = "trace"
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Format names accepted by Options.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures a logger.
type Options struct {
	// Level is the minimum level to emit. Defaults to info.
	Level string

	// Format selects console or json output. Defaults to console.
	Format string

	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer

	// NoColor disables ANSI colors in console mode.
	NoColor bool
}

// ParseLevel normalizes a level name. Unknown names map to info.
func ParseLevel(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ValidLevel reports whether s names a known level.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LevelTrace, LevelDebug, LevelInfo, LevelWarn, "warning", LevelError:
		return true
	}
	return false
}

// New creates a logger from options.
func New(opts Options) pslog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	po := pslog.Options{
		Mode:    pslog.ModeConsole,
		NoColor: opts.NoColor,
	}
	if strings.EqualFold(opts.Format, FormatJSON) {
		po.Mode = pslog.ModeStructured
		po.NoColor = true
		po.VerboseFields = true
	}
	switch ParseLevel(opts.Level) {
	case LevelTrace:
		po.MinLevel = pslog.TraceLevel
	case LevelDebug:
		po.MinLevel = pslog.DebugLevel
	case LevelWarn:
		po.MinLevel = pslog.WarnLevel
	case LevelError:
		po.MinLevel = pslog.ErrorLevel
	default:
		po.MinLevel = pslog.InfoLevel
	}
	return pslog.NewWithOptions(out, po)
}

// Nop returns a logger that discards everything.
func Nop() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.ErrorLevel,
	})
}

// OrNop returns log, or a discarding logger when log is nil.
func OrNop(log pslog.Logger) pslog.Logger {
	if log == nil {
		return Nop()
	}
	return log
}

// WithComponent returns a logger annotated with the component name.
func WithComponent(log pslog.Logger, component string) pslog.Logger {
	log = OrNop(log)
	if component == "" {
		return log
	}
	return log.With("component", component)
}

// ContextWithLogger attaches log to ctx.
func ContextWithLogger(ctx context.Context, log pslog.Logger) context.Context {
	return pslog.ContextWithLogger(ctx, log)
}

// Ctx returns the logger bound to ctx.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}
