package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/jseval/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jseval",
	Short: "jseval sends JavaScript expressions to a remote interpreter",
	Long: `jseval evaluates JavaScript through the DynamicJavascriptRuntime.evaluate entry point.
By default scripts run in an embedded interpreter; --remote, --redis and --host forward
them to an HTTP server, a Redis queue or an external interpreter such as Node.js.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "jseval.yaml", "Settings file (yaml, toml or json)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("remote", "", "Base URL of a jseval HTTP server to evaluate on")
	flags.String("redis", "", "Redis address or URL of the evaluation queue")
	flags.String("prefix", "", "Key prefix of the Redis queue")
	flags.String("host", "", "External interpreter reading programs from stdin, e.g. \"node\"")
	flags.Duration("timeout", 30*time.Second, "Timeout of each evaluation (0 disables)")
	flags.String("journal", "", "Record transmitted scripts in this SQLite database")
	flags.Bool("debug", false, "Enable debug logging of transmitted scripts")
}

// sharedOptions reads the persistent flags.
func sharedOptions(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	var opts cli.Options
	opts.ConfigPath, _ = flags.GetString("config")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.LogFormat, _ = flags.GetString("log-format")
	opts.Remote, _ = flags.GetString("remote")
	opts.Redis, _ = flags.GetString("redis")
	opts.Prefix, _ = flags.GetString("prefix")
	opts.Host, _ = flags.GetString("host")
	opts.Timeout, _ = flags.GetDuration("timeout")
	opts.Journal, _ = flags.GetString("journal")
	opts.Debug, _ = flags.GetBool("debug")
	return opts
}
