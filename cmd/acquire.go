package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/geofix/internal/arbiter"
	"github.com/abhisek/geofix/internal/config"
	"github.com/abhisek/geofix/internal/provider"
	"github.com/abhisek/geofix/internal/store"
)

var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Acquire a single position fix",
	Long:  "Acquire starts the configured provider, collects samples for at most the time budget, and prints the best fix observed — or fails.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAcquire(cmd)
	},
}

func init() {
	acquireCmd.Flags().Duration("timeout", 0, "Time budget for the query (overrides GEOFIX_TIMEOUT)")
	acquireCmd.Flags().String("provider", "", "Sample source: gpsd, replay or script (overrides GEOFIX_PROVIDER)")
	acquireCmd.Flags().String("gpsd-addr", "", "gpsd TCP address (overrides GEOFIX_GPSD_ADDR)")
	acquireCmd.Flags().String("replay-file", "", "JSONL track to replay (overrides GEOFIX_REPLAY_FILE)")
}

func runAcquire(cmd *cobra.Command) error {
	cfg := config.ConfigFromEnv()
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	prov, err := provider.New(cfg)
	if err != nil {
		return err
	}

	rec := openRecorder(cmd)

	reg := arbiter.NewRegistry(nil, rec)
	started := time.Now()
	sample, err := reg.AcquireOneShotLocation(cmd.Context(), prov, cfg.Timeout)
	elapsed := time.Since(started)

	switch {
	case err == nil:
		fmt.Println(renderFix(sample, elapsed))
		return nil
	case errors.Is(err, arbiter.ErrOutOfTime):
		fmt.Println(renderError(fmt.Sprintf("No usable fix within %s.", cfg.Timeout)))
		return err
	default:
		fmt.Println(renderError(err.Error()))
		return err
	}
}

// applyFlags lets command-line flags override env configuration. The
// acquire flags are registered on acquireCmd only; a bare `geofix` run
// uses env and defaults.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Lookup("timeout") == nil {
		return
	}
	if d, _ := cmd.Flags().GetDuration("timeout"); d > 0 {
		cfg.Timeout = d
	}
	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		cfg.Provider = p
	}
	if a, _ := cmd.Flags().GetString("gpsd-addr"); a != "" {
		cfg.Gpsd.Addr = a
	}
	if f, _ := cmd.Flags().GetString("replay-file"); f != "" {
		cfg.Replay.Path = f
	}
}

// openRecorder opens the diagnostics store. Diagnostics are best-effort:
// an unopenable database downgrades to no recording rather than blocking
// the query.
func openRecorder(cmd *cobra.Command) arbiter.Recorder {
	path, err := resolveDBPath(cmd)
	if err == nil {
		var s *store.Store
		if s, err = store.Open(path); err == nil {
			return s.Diagnostics()
		}
	}
	fmt.Fprintf(os.Stderr, "warning: diagnostics disabled: %v\n", err)
	return nil
}
