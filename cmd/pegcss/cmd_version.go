package main

import (
	"fmt"

	"github.com/dhamidi/pegcss/css"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool version and the registered grammars",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pegcss %s\n", version)
			for _, e := range css.Registered() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e.Ref())
			}
		},
	}
}
