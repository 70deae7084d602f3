package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/dhamidi/pegcss/format"
	"github.com/dhamidi/pegcss/peg"
	"github.com/dhamidi/pegcss/workspace"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var flags grammarFlags
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "check [file|dir]...",
		Short: "Check style sheets and report the farthest failure of each",
		Long: `Check parses every file as a whole style sheet. Directories are
searched for .css files; with no arguments or "-" the standard input is
checked. The command fails if any input does not parse.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := flags.load()
			if err != nil {
				return err
			}
			encoder, err := format.NewEncoder(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			files, err := checkArgs(cmd.Context(), g, args, cmd.InOrStdin(), flags.options())
			if err != nil {
				return err
			}

			failed := 0
			for _, f := range files {
				if !f.OK {
					failed++
				}
				if err := encoder.Encode(f); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d inputs failed to parse", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.grammar, "grammar", "g", "css", "registered grammar (name[@constraint]) or .ebnf file")
	cmd.Flags().StringVarP(&flags.rule, "rule", "r", "", "rule to match the whole input against (default: the grammar's start rule)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format: text, line or json")
	cmd.Flags().BoolVar(&flags.noMemo, "no-memo", false, "discard memo entries as soon as their rule returns")
	cmd.Flags().BoolVar(&flags.trace, "trace", false, "log every rule application (needs -vv)")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(), "files to check at once")

	return cmd
}

func checkArgs(ctx context.Context, g *peg.Grammar, args []string, stdin io.Reader, opts []workspace.Option) ([]*workspace.FileInfo, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	var results []*workspace.FileInfo
	var paths []string
	flush := func() error {
		if len(paths) == 0 {
			return nil
		}
		files, err := workspace.CheckFiles(ctx, g, paths, opts...)
		if err != nil {
			return err
		}
		results = append(results, files...)
		paths = nil
		return nil
	}

	for _, arg := range args {
		if arg == "-" {
			if err := flush(); err != nil {
				return nil, err
			}
			content, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			f, err := workspace.New("", g, opts...).UpdateFile("", content)
			if err != nil {
				return nil, err
			}
			results = append(results, f)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		w := workspace.New(arg, g, opts...)
		if err := w.ScanAll(ctx); err != nil {
			return nil, err
		}
		results = append(results, w.Files()...)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return results, nil
}
