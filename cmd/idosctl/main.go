// Command idosctl is a small demo CLI wiring the whole SDK together: key
// generation and unlocking through the enclave, action calls and
// executes against a node, and distributed-recovery upload/download.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/idos-network/idos-sdk-go/internal/config"
)

var (
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "idosctl",
		Short:         "idOS SDK demo CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to configuration file")

	root.AddCommand(
		newKeygenCmd(),
		newUnlockCmd(),
		newCallCmd(),
		newExecuteCmd(),
		newRecoverCmd(),
		newArchiveCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", configPath, err)
	}
	cfg = loaded

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return nil
}
