// Command cx is the entry point of the environment manager CLI. It wires
// the configuration store, hook registry and core services together and
// hands control to the command tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	configfile "github.com/cxpkg/cx/internal/adapters/driven/config/file"
	"github.com/cxpkg/cx/internal/adapters/driving/cli"
	"github.com/cxpkg/cx/internal/core/services"
	"github.com/cxpkg/cx/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cx: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	store, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	registry := services.NewHookRegistry()
	if err := registry.Discover(services.BuiltinPlugins(), nil); err != nil {
		return fmt.Errorf("discovering hooks: %w", err)
	}
	selector := services.NewSelector(registry)

	settings := store.Settings()
	if _, err := selector.Solver(settings.Solver); err != nil {
		return fmt.Errorf("configuring solver: %w", err)
	}

	dispatcher, err := services.NewReporterDispatcher(selector, settings.Reporters)
	if err != nil {
		return fmt.Errorf("configuring reporters: %w", err)
	}
	defer func() {
		if err := dispatcher.Close(); err != nil {
			logger.Warn("closing reporters: %v", err)
		}
	}()

	state, err := services.NewPrefixStateService(registry, dispatcher)
	if err != nil {
		return err
	}

	cli.SetServices(&cli.Services{
		State:    state,
		Registry: registry,
		Selector: selector,
		Config:   store,
		Events:   dispatcher,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx)
}
