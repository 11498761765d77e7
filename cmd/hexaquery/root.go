package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hexaquery",
	Short: "Declarative query building and paginated execution over SQL",
	Long: `hexaquery turns request parameters (filter, sort, include, fields,
page/per_page or cursor) into parameterized SQL restricted by per-entity
whitelists, executes it and returns a uniform paginated response.`,
	SilenceUsage: true,
}

// Execute ejecuta el comando raíz.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
