package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/polyglotter/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition>...",
	Short: "Check definition files for consistency",
	Long:  `Reports structural errors, duplicate identifiers, unknown kinds, dangling references and literal type mismatches.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunValidate(args, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
