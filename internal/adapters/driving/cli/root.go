// Package cli is the command-line driving adapter. Commands are thin:
// they resolve the target environment, invoke core services and render
// the result.
package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driven"
	"github.com/cxpkg/cx/internal/core/ports/driving"
	"github.com/cxpkg/cx/internal/core/services"
	"github.com/cxpkg/cx/internal/logger"
)

// version is the build version, overridden at link time.
var version = "dev"

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Services bundles the wired core services the commands run against.
type Services struct {
	State    driving.PrefixStateService
	Registry *services.HookRegistry
	Selector *services.Selector
	Config   driven.ConfigStore
	Events   driven.EventSink

	// EnvsDir is where named environments live. Empty defaults to
	// ~/.cx/envs.
	EnvsDir string
}

// svc holds the current service wiring.
var svc *Services

// SetServices sets the service wiring for all commands.
func SetServices(s *Services) {
	svc = s
}

var (
	verbose    bool
	prefixPath string
	envName    string
)

var rootCmd = &cobra.Command{
	Use:   "cx",
	Short: "Manage package environments",
	Long: `cx inspects and manages package environments.

An environment is a directory prefix holding installed packages and their
metadata. Commands operate on the environment named with --name, the
prefix given with --prefix, or the one pointed to by $CX_PREFIX.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&prefixPath, "prefix", "p", "", "full path to environment prefix")
	rootCmd.PersistentFlags().StringVarP(&envName, "name", "n", "", "name of environment")
	rootCmd.MarkFlagsMutuallyExclusive("prefix", "name")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// resolvePrefix determines the target environment from flags and the
// process environment, in that order of precedence.
func resolvePrefix() (string, error) {
	if prefixPath != "" {
		return filepath.Clean(prefixPath), nil
	}
	if envName != "" {
		return filepath.Join(envsDir(), envName), nil
	}
	if env := os.Getenv("CX_PREFIX"); env != "" {
		return filepath.Clean(env), nil
	}
	return "", domain.ErrNoPrefix
}

func envsDir() string {
	if svc != nil && svc.EnvsDir != "" {
		return svc.EnvsDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "envs"
	}
	return filepath.Join(home, ".cx", "envs")
}

func requireServices() error {
	if svc == nil || svc.State == nil {
		return errors.New("services not configured")
	}
	return nil
}
