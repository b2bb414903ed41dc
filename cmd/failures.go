package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/geofix/internal/store"
)

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List recent provider failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		repo, closeStore, err := openDiagnostics(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		rows, err := repo.RecentFailures(limit)
		if err != nil {
			return err
		}
		fmt.Println(renderFailures(rows))
		return nil
	},
}

var fixesCmd = &cobra.Command{
	Use:   "fixes",
	Short: "List recent query resolutions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		repo, closeStore, err := openDiagnostics(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		rows, err := repo.RecentFixes(limit)
		if err != nil {
			return err
		}
		fmt.Println(renderFixes(rows))
		return nil
	},
}

func init() {
	failuresCmd.Flags().Int("limit", 20, "Maximum number of rows to show")
	fixesCmd.Flags().Int("limit", 20, "Maximum number of rows to show")
}

func openDiagnostics(cmd *cobra.Command) (*store.DiagnosticsRepo, func(), error) {
	path, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return s.Diagnostics(), func() { s.Close() }, nil
}
