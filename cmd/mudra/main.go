// Command mudra recognizes hand signs from a camera or recorded landmarks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/store"
)

// Version is the application version.
const Version = "0.1.0"

var (
	// cfg is loaded before every subcommand runs.
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "mudra",
	Short:         "Hand sign recognition from 21-point hand landmarks",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}
		return logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: ./config.yaml or the user config dir)")
	flags.String("addr", "", "HTTP listen address")
	flags.String("db", "", "SQLite database path")
	flags.String("plugins", "", "hook directory")
	flags.Int("camera", 0, "camera device index")
	flags.Bool("mock", false, "use a synthetic camera and detector")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write JSON logs to this file, rotated")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	rootCmd.AddCommand(serveCmd, classifyCmd, verifyCmd, samplesCmd, historyCmd, configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openStore opens the configured database, creating its directory.
func openStore() (*store.Store, error) {
	if dir := filepath.Dir(cfg.Storage.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	st, err := store.New(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Storage.DBPath, err)
	}
	return st, nil
}
