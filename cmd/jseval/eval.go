package main

import (
	"os"
	"strings"

	"github.com/aretw0/jseval/internal/cli"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval [script]",
	Short: "Evaluate a script and print its JSON result",
	Example: `  jseval eval "Math.max(3, 7)"
  jseval eval --file build.js
  echo "navigator.userAgent" | jseval eval -f - --remote http://localhost:8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		compact, _ := cmd.Flags().GetBool("compact")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		eval := cli.EvalOptions{
			Script:  strings.Join(args, " "),
			File:    file,
			Compact: compact,
		}
		return cli.RunEval(ctx, sharedOptions(cmd), eval, os.Stdin, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringP("file", "f", "", "Read the script from a file, '-' for stdin")
	evalCmd.Flags().BoolP("compact", "c", false, "Print the result on a single line")
}
