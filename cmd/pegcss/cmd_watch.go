package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/dhamidi/pegcss/format"
	"github.com/dhamidi/pegcss/workspace"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var flags grammarFlags
	var outputFormat string

	cmd := &cobra.Command{
		Use:          "watch [dir]",
		Short:        "Check a directory of style sheets and re-check files as they change",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			g, err := flags.load()
			if err != nil {
				return err
			}
			encoder, err := format.NewEncoder(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w := workspace.New(dir, g, flags.options()...)
			if err := w.ScanAll(ctx); err != nil {
				return err
			}
			for _, f := range w.Failed() {
				if err := encoder.Encode(f); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
			}

			changes := make(chan workspace.Change)
			fw := workspace.NewFileWatcher(w, func(c workspace.Change) {
				select {
				case changes <- c:
				case <-ctx.Done():
				}
			})
			if err := fw.Start(); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			defer fw.Stop()

			return printChanges(ctx, changes, encoder, cmd)
		},
	}

	cmd.Flags().StringVarP(&flags.grammar, "grammar", "g", "css", "registered grammar (name[@constraint]) or .ebnf file")
	cmd.Flags().StringVarP(&flags.rule, "rule", "r", "", "rule to match each file against (default: the grammar's start rule)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format: text, line or json")
	cmd.Flags().BoolVar(&flags.noMemo, "no-memo", false, "discard memo entries as soon as their rule returns")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(), "files to check at once during the initial scan")

	return cmd
}

func printChanges(ctx context.Context, changes <-chan workspace.Change, encoder format.Encoder, cmd *cobra.Command) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-changes:
			if c.Removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: removed\n", c.Path)
				continue
			}
			if err := encoder.Encode(c.File); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
		}
	}
}
