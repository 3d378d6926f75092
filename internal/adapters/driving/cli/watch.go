package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch an environment and keep its cached state fresh",
	Long: `Runs until interrupted, monitoring the environment's metadata store
and invalidating the cached package state whenever it changes on disk.

Useful alongside long-running tooling that reads package state while other
processes install or remove packages in the same environment.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before a change invalidates the cache")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	prefix, err := resolvePrefix()
	if err != nil {
		return err
	}

	watcher, err := watch.New(watch.Config{
		Invalidator: svc.State,
		Debounce:    watchDebounce,
	})
	if err != nil {
		return err
	}
	if err := watcher.Add(domain.NewPrefixHandle(prefix, "")); err != nil {
		return err
	}

	cmd.Printf("watching %s (ctrl-c to stop)\n", prefix)
	return watcher.Run(cmd.Context())
}
