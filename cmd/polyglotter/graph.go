package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/polyglotter/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <definition>...",
	Short: "Export the dependency graph visualization",
	Long:  `Evaluates each transform and outputs a Mermaid diagram (graph LR) of its terms and operations, styled by validation state.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunGraph(cmd.Context(), options(cmd), args, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
