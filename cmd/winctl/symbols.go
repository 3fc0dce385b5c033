package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/winctl/internal/app"
	"github.com/dshills/winctl/internal/command"
	"github.com/dshills/winctl/internal/symbols"
)

func newSymbolsCmd(root *rootOptions) *cobra.Command {
	var filter string
	var match string
	cmd := &cobra.Command{
		Use:   "symbols FILE",
		Short: "List the symbols of a file",
		Example: `  winctl symbols main.go
  winctl symbols --filter srv --match fuzzy server.go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withApp(cmd, app.Options{Files: args}, func(ctx context.Context, a *app.Application) error {
				if match != "" {
					cfg := *a.Config()
					cfg.Symbols.Match = match
					if err := a.ApplyConfig(ctx, &cfg); err != nil {
						return err
					}
				}
				res, err := a.Exec(ctx, command.Action{
					Name: command.ActionSymbolsFilter,
					Args: command.Args{Filter: filter},
				})
				if err != nil {
					return err
				}
				if res.IsError() {
					return res.Error
				}
				v, _ := res.GetData(command.DataSymbols)
				entries, _ := v.([]symbols.Entry)

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, e := range entries {
					name := e.Name
					if e.Container != "" {
						name = e.Container + "." + e.Name
					}
					fmt.Fprintf(tw, "%d:%d\t%s\t%s\n", e.Line+1, e.Column+1, e.Kind, name)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "only list symbols matching the filter")
	cmd.Flags().StringVar(&match, "match", "", "filter policy: substring or fuzzy")
	return cmd
}
