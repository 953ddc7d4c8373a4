package main

import (
	"os"

	"github.com/aretw0/jseval/internal/cli"
	"github.com/spf13/cobra"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive evaluation session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunREPL(ctx, sharedOptions(cmd), os.Stdin, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	// Make 'repl' the default if no command is provided
	rootCmd.RunE = replCmd.RunE
}
