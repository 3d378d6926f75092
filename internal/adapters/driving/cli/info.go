package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cxpkg/cx/internal/adapters/driven/reporters/console"
	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/services"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display environment and configuration information",
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	prefix, err := resolvePrefix()
	if err != nil && !errors.Is(err, domain.ErrNoPrefix) {
		return err
	}

	settings := svc.Config.Settings()
	// A configured solver name must resolve; a typo is a config error, not
	// something to echo back silently.
	if _, err := svc.Selector.Solver(settings.Solver); err != nil {
		return err
	}
	solver := settings.Solver
	if solver == "" {
		solver = "<default>"
	}

	info := map[string]string{
		"version":          version,
		"env location":     prefix,
		"solver":           solver,
		"interoperability": fmt.Sprintf("%t", settings.Interoperability),
		"loaders":          strings.Join(svc.Registry.Names(services.HookKindLoader), ", "),
		"solver backends":  strings.Join(svc.Registry.Names(services.HookKindSolver), ", "),
		"reporters":        strings.Join(svc.Registry.Names(services.HookKindReporter), ", "),
	}
	if prefix == "" {
		info["env location"] = "<none>"
	}
	if pather, ok := svc.Config.(interface{ Path() string }); ok {
		info["config file"] = pather.Path()
	}

	if infoJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding info: %w", err)
		}
		cmd.Println(string(data))
	} else {
		cmd.Print(console.Table(info))
	}

	for _, key := range svc.Config.LegacyKeysUsed() {
		cmd.PrintErrf("warning: config option %q is deprecated and will be removed in a future release\n", key)
	}
	return nil
}
