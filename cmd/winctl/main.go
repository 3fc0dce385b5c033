// Command winctl drives the window registry from the command line: it opens
// documents into split layouts, runs Lua window scripts and lists symbols.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pkt.systems/pslog"

	"github.com/dshills/winctl/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("winctl command failed")
		return 1
	}
	return 0
}

// rootOptions holds the flags shared by every subcommand. Flags may also be
// set as WINCTL_CONFIG and WINCTL_NO_ENV.
type rootOptions struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}
	root := &cobra.Command{
		Use:           "winctl",
		Short:         "Window, tab and navigation history control for editor views",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "path to a TOML or YAML configuration file")
	flags.Bool("no-env", false, "ignore WINCTL_* configuration overrides")

	opts.v.SetEnvPrefix("WINCTL")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()
	_ = opts.v.BindPFlags(flags)

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newLayoutCmd(opts))
	root.AddCommand(newSymbolsCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// withApp starts an application for the command and shuts it down after fn.
func (o *rootOptions) withApp(cmd *cobra.Command, opts app.Options, fn func(ctx context.Context, a *app.Application) error) error {
	opts.ConfigPath = o.v.GetString("config")
	opts.NoEnv = o.v.GetBool("no-env")
	if opts.Output == nil {
		opts.Output = cmd.OutOrStdout()
	}
	opts.LogOutput = cmd.ErrOrStderr()

	a, err := app.New(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			pslog.Ctx(cmd.Context()).Warn("shutdown failed", "err", err)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}
