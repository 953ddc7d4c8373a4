package main

import (
	"github.com/aretw0/jseval/internal/cli"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Evaluate scripts queued in Redis",
	Long:  `Pops requests from the Redis queue selected by --redis and --prefix and evaluates them in an embedded interpreter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunWorker(ctx, sharedOptions(cmd), cli.WorkerOptions{Concurrency: concurrency})
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().Int("concurrency", 4, "Number of requests evaluated at once")
}
