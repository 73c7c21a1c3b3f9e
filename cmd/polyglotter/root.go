package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/polyglotter/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "polyglotter",
	Short: "Polyglotter evaluates typed expression transforms",
	Long: `Polyglotter loads transform definitions (YAML, JSON or HCL), validates
their operations and computes their results. Keyed terms are read from an
in-memory or redis term source.`,
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
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("log-format", "text", "Debug log format: text or json")
	rootCmd.PersistentFlags().String("redis", "", "Redis URL of the term source (default: in-memory)")
	rootCmd.PersistentFlags().String("redis-prefix", "", "Key prefix in redis (default \"polyglotter:\")")
	rootCmd.PersistentFlags().StringArray("set", nil, "Term source value as key=value (repeatable)")
}

// options collects the persistent flags and the output flags of cmd.
func options(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.Debug, _ = flags.GetBool("debug")
	opts.LogFormat, _ = flags.GetString("log-format")
	opts.RedisURL, _ = flags.GetString("redis")
	opts.RedisPrefix, _ = flags.GetString("redis-prefix")
	opts.Values, _ = flags.GetStringArray("set")
	opts.JSON, _ = flags.GetBool("json")
	opts.Plain, _ = flags.GetBool("plain")
	return opts
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Write reports as JSON")
	cmd.Flags().Bool("plain", false, "Disable markdown rendering on terminals")
}
