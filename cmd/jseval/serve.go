package main

import (
	"github.com/aretw0/jseval/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP evaluation server",
	Long: `Exposes the evaluation channel over HTTP: POST /invoke, GET /events (SSE),
GET /health, GET /info and Prometheus metrics on GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunServe(ctx, sharedOptions(cmd), cli.ServeOptions{Addr: ":" + port}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
