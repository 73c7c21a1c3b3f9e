package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/polyglotter"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of polyglotter",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("polyglotter version %s\n", strings.TrimSpace(polyglotter.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
