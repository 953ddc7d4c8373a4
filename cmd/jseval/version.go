package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/jseval"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of jseval",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jseval version %s\n", strings.TrimSpace(jseval.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
