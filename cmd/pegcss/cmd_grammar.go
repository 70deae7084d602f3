package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dhamidi/pegcss/css"
	"github.com/dhamidi/pegcss/ebnf"
	"github.com/spf13/cobra"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Inspect grammars",
	}

	cmd.AddCommand(newGrammarListCmd())
	cmd.AddCommand(newGrammarRulesCmd())
	cmd.AddCommand(newGrammarEbnfCmd())

	return cmd
}

func newGrammarListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered grammars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range css.Registered() {
				fmt.Fprintf(tw, "%s\t%s\t%d rules\n", e.Ref(), e.Description, len(e.Grammar.Rules()))
			}
			return tw.Flush()
		},
	}
}

func newGrammarRulesCmd() *cobra.Command {
	var flags grammarFlags

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print every rule of a grammar with its rendered body",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := flags.load()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range g.Rules() {
				fmt.Fprintf(tw, "%s\t=\t%s\n", r.Name, r.Rendered)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&flags.grammar, "grammar", "g", "css", "registered grammar (name[@constraint]) or .ebnf file")
	cmd.Flags().StringVarP(&flags.rule, "rule", "r", "", "start production of an .ebnf grammar")

	return cmd
}

func newGrammarEbnfCmd() *cobra.Command {
	var flags grammarFlags
	var start string
	var verify bool

	cmd := &cobra.Command{
		Use:           "ebnf",
		Short:         "Print a grammar as EBNF",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := flags.load()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}
			if verify {
				if err := ebnf.Verify(g, start); err != nil {
					for _, e := range ebnf.Errors(err) {
						fmt.Fprintln(cmd.ErrOrStderr(), e)
					}
					return err
				}
			}
			if err := ebnf.Export(cmd.OutOrStdout(), g, start); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.grammar, "grammar", "g", "css", "registered grammar (name[@constraint]) or .ebnf file")
	cmd.Flags().StringVarP(&flags.rule, "rule", "r", "", "start production of an .ebnf grammar")
	cmd.Flags().StringVar(&start, "start", "", "export only the rules reachable from this rule (if empty, all rules)")
	cmd.Flags().BoolVar(&verify, "verify", false, "verify the exported grammar before printing it")

	return cmd
}
