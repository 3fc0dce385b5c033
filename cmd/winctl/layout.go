package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/winctl/internal/app"
	"github.com/dshills/winctl/internal/command"
	"github.com/dshills/winctl/internal/window"
)

func newLayoutCmd(root *rootOptions) *cobra.Command {
	var splits []string
	var format string
	cmd := &cobra.Command{
		Use:   "layout [files...]",
		Short: "Open files, apply splits and print the resulting layout",
		Example: `  winctl layout main.go util.go
  winctl layout --split v --split h --format yaml main.go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want text or yaml)", format)
			}
			return root.withApp(cmd, app.Options{Files: args}, func(ctx context.Context, a *app.Application) error {
				for _, s := range splits {
					if err := applySplit(ctx, a, s); err != nil {
						return err
					}
				}
				snap, err := a.Snapshot(ctx)
				if err != nil {
					return err
				}
				if format == "yaml" {
					return writeYAML(cmd.OutOrStdout(), snap)
				}
				return writeText(cmd.OutOrStdout(), snap)
			})
		},
	}
	cmd.Flags().StringArrayVar(&splits, "split", nil, "split the current view (h or v); repeatable")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or yaml")
	return cmd
}

func applySplit(ctx context.Context, a *app.Application, orientation string) error {
	var name string
	switch orientation {
	case "h", "horizontal":
		name = command.ActionSplitHorizontal
	case "v", "vertical":
		name = command.ActionSplitVertical
	case "", "default":
		name = command.ActionSplit
	default:
		return fmt.Errorf("invalid split %q", orientation)
	}
	res, err := a.Exec(ctx, command.Action{Name: name})
	if err != nil {
		return err
	}
	if res.IsError() {
		return res.Error
	}
	return nil
}

func writeYAML(w io.Writer, snap window.Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return err
	}
	return enc.Close()
}

func writeText(w io.Writer, snap window.Snapshot) error {
	if len(snap.Tabs) == 0 {
		_, err := fmt.Fprintln(w, "no views")
		return err
	}
	for i, tab := range snap.Tabs {
		marker := " "
		if i == snap.CurrentTab {
			marker = ">"
		}
		if _, err := fmt.Fprintf(w, "%s tab %d: %s (%d views)\n", marker, i+1, tab.Title, tab.Views); err != nil {
			return err
		}
		if _, err := fmt.Fprint(w, tab.Layout.String()); err != nil {
			return err
		}
	}
	return nil
}
