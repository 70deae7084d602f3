package main

import (
	"github.com/dhamidi/pegcss/workspace"
	"github.com/spf13/cobra"
)

func newLSPCmd() *cobra.Command {
	var flags grammarFlags

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := flags.load()
			if err != nil {
				return err
			}
			server := workspace.NewLSPServer(g, version, flags.options()...)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVarP(&flags.grammar, "grammar", "g", "css", "registered grammar (name[@constraint]) or .ebnf file")
	cmd.Flags().StringVarP(&flags.rule, "rule", "r", "", "rule to match each document against (default: the grammar's start rule)")

	return cmd
}
