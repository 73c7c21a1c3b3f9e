package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/polyglotter/internal/cli"
)

var evalCmd = &cobra.Command{
	Use:   "eval <definition>...",
	Short: "Evaluate transforms and print their results",
	Long: `Loads each definition file, validates and calculates every operation and
prints one report per transform. Exits with status 2 when a transform has
validation errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := cli.RunEval(cmd.Context(), options(cmd), args, os.Stdout)
		if errors.Is(err, cli.ErrInvalid) {
			os.Exit(2)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	addOutputFlags(evalCmd)
}
