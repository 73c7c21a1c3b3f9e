package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/polyglotter/internal/cli"
	"github.com/aretw0/polyglotter/pkg/operation"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the available operation kinds",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunKinds(operation.NewRegistry(), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
