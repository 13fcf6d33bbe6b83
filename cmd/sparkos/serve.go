package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sparkos/internal/config"
	"sparkos/internal/logging"
	"sparkos/internal/server"
	"sparkos/internal/uplink"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the console JSON API",
	Long: `Serves the full console surface over HTTP: collection CRUD, stock
transactions, attendance, the GENESIS chat uplink, backup download, and
factory reset. SIGINT/SIGTERM drain the server gracefully.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	engine, st, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	gemini, err := uplink.NewGeminiClient(cfg)
	if err != nil {
		return err
	}
	defer gemini.Close()

	srv := server.New(cfg, engine, gemini)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	// Hot-reload logging and model tunables on config edits while serving
	watchPath := configPath
	if watchPath == "" {
		watchPath = filepath.Join(workspace, ".sparkos", "config.yaml")
	}
	watcher, err := config.NewWatcher(watchPath, func(updated *config.Config) {
		logging.Server("config reloaded from %s", watchPath)
		srv.ApplyConfig(updated)
		if err := logging.ReloadConfig(); err != nil {
			logging.ServerError("logging config reload failed: %v", err)
		}
	})
	if err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
	} else {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	logger.Info("serving", zap.String("addr", cfg.Server.Addr), zap.String("db", st.Path()))
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
