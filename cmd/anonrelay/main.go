package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/humoyun-dev/anonim-chat/internal/config"
	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "anonrelay",
		Short:         "Anonymous question relay bot with a live dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// load reads configuration and installs the default logger.
func load() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logging.Init(cfg.LogLevel)
	return cfg, nil
}
