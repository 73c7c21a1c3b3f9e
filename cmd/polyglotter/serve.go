package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/polyglotter/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve <definition>...",
	Short: "Start the HTTP evaluation server",
	Long:  `Loads the transforms and exposes their evaluation, graphs and metrics as a JSON API over HTTP.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunServe(ctx, options(cmd), ":"+port, args, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
