package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

func main() {
	var verbose int
	var logFile string

	rootCmd := &cobra.Command{
		Use:     "pegcss",
		Short:   "A packrat CSS2.1 recognizer",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logFile == "" {
				commonlog.Configure(verbose, nil)
			} else {
				commonlog.Configure(verbose, &logFile)
			}
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (-vv for debug)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newGrammarCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
