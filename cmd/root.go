package cmd

import (
	"github.com/abhisek/geofix/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "geofix",
	Short: "One-shot best-effort location acquisition",
	Long:  "Geofix — acquires a single position fix within a time budget, arbitrating between samples by accuracy and freshness.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAcquire(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the diagnostics SQLite database (overrides GEOFIX_DB env var)")

	rootCmd.AddCommand(acquireCmd)
	rootCmd.AddCommand(failuresCmd)
	rootCmd.AddCommand(fixesCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then GEOFIX_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
