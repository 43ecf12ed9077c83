// The acolyte-scheduler binary serves the HTTP API, runs schema
// migrations, and generates admin credentials.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "acolyte-scheduler",
		Short: "Acolyte scheduler - mass enrollment and leaderboard service",
		Long: `A service coordinating acolyte sign-ups for scheduled masses with
fixed seat capacities, plus a participation leaderboard derived from
completed masses.`,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
