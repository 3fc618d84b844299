package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for deputes.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deputes",
		Short: "Extract members of the Assemblée nationale by region",
		Long: `deputes lists the members of the French Assemblée nationale for a set of
regions and extracts each member's email address, political group and
electoral district from their page.

Missing information never stops a run: a field that cannot be found is
left empty. Use --verbose to see why.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
