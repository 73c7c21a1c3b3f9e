package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/polyglotter/internal/cli"
)

var watchCmd = &cobra.Command{
	Use:   "watch <definition>...",
	Short: "Re-evaluate transforms whenever the term source changes",
	Long:  `Evaluates the transforms once, then again after every change signalled by the term source. Stops on Ctrl+C.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunWatch(ctx, options(cmd), args, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addOutputFlags(watchCmd)
}
