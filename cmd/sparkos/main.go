// Package main provides the sparkos CLI entry point: the Sparko Corp
// operations console (projects, manpower, inventory) with the GENESIS
// assistant on the Gemini API.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sparkos/internal/config"
	"sparkos/internal/logging"
	"sparkos/internal/ops"
	"sparkos/internal/store"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sparkos",
	Short: "sparkos - Sparko Corp operations console",
	Long: `sparkos runs the Sparko Corp solar-EPC back office: project pipeline,
crew and attendance, warehouse stock, HSE and training registries, with the
GENESIS assistant (Gemini) wired into every module.

Run without arguments to start the interactive chat console.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The chat TUI owns the terminal; keep zap quiet there
		if cmd.Use != "chat" && cmd.CalledAs() != "sparkos" {
			zcfg := zap.NewProductionConfig()
			if verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}

		if err := logging.Initialize(workspace); err != nil {
			return fmt.Errorf("failed to initialize file logging: %w", err)
		}
		if err := logging.InitAudit(); err != nil {
			return fmt.Errorf("failed to initialize audit log: %w", err)
		}
		logging.Boot("sparkos starting (workspace=%s)", workspace)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAudit()
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

// loadConfig resolves the config file, with env overrides already applied.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(workspace, ".sparkos", "config.yaml")
	}
	return config.Load(path)
}

// openEngine opens the collection store and wraps it in the ops engine.
func openEngine(cfg *config.Config) (*ops.Engine, *store.Store, error) {
	st, err := store.New(cfg.Store.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return ops.NewEngine(st), st, nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default <workspace>/.sparkos/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(resetCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
