package main

import (
	"context"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/dshills/winctl/internal/app"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var scriptPath string
	var code string
	var watch bool
	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Open files and run a Lua window script",
		Example: `  winctl run --script layout.lua main.go util.go
  winctl run -e 'win.split("v") print(win.layout().tree)' main.go
  winctl run --watch -c winctl.toml --script session.lua`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.Options{Files: args, Watch: watch}
			return root.withApp(cmd, opts, func(ctx context.Context, a *app.Application) error {
				if scriptPath != "" {
					if err := a.RunScript(ctx, scriptPath); err != nil {
						return err
					}
				}
				if code != "" {
					if err := a.RunString(ctx, code); err != nil {
						return err
					}
				}
				if watch {
					pslog.Ctx(ctx).Info("watching configuration, interrupt to exit", "config", root.v.GetString("config"))
					<-ctx.Done()
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Lua script file to run")
	cmd.Flags().StringVarP(&code, "exec", "e", "", "Lua chunk to run after --script")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and reload the configuration file on change")
	return cmd
}
