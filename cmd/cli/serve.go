package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/thadeu-ct/Mentor-Gradus/internal/config"
	"github.com/thadeu-ct/Mentor-Gradus/internal/logger"
	"github.com/thadeu-ct/Mentor-Gradus/internal/server"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/catalog"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/planner"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/store"
)

func newServeCommand() *cobra.Command {
	var configPath string

	command := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and planner sessions over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Configure(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
			gin.SetMode(cfg.Server.Mode)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	command.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration")
	return command
}

func serve(ctx context.Context, cfg *config.Config) error {
	var (
		local    *catalog.Service
		requires planner.RequirementsService
	)
	if cfg.Catalog.Dir != "" || cfg.Catalog.SQLite != "" {
		loaded, err := loadCatalog(ctx, cfg.Catalog.Dir, cfg.Catalog.SQLite)
		if err != nil {
			return err
		}
		local = catalog.NewService(loaded)
		requires = local
		log.Info().Int("courses", len(loaded.Courses)).Int("programs", len(loaded.Programs)).Msg("catalog loaded")
	} else {
		requires = planner.NewHTTPClient(cfg.Catalog.URL, cfg.Catalog.Timeout)
		log.Info().Str("url", cfg.Catalog.URL).Msg("requirements served remotely")
	}

	storeConfig := store.DefaultConfig(cfg.Store.Path)
	storeConfig.GCInterval = cfg.Store.GCInterval
	sessions, err := store.Open(storeConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Error().Err(err).Msg("session store not closed cleanly")
		}
	}()

	manager := planner.NewManager(requires, sessions, planner.Options{
		MaxTermCredits: cfg.Planner.MaxTermCredits,
		InitialTerms:   cfg.Planner.InitialTerms,
	})
	return server.New(local, manager).Run(ctx, cfg.Server.Address)
}

// loadCatalog reads the JSON directory when given, the SQLite database otherwise
func loadCatalog(ctx context.Context, dir, sqlitePath string) (*catalog.Catalog, error) {
	switch {
	case dir != "":
		return catalog.LoadDir(dir)
	case sqlitePath != "":
		return catalog.LoadSQLite(ctx, sqlitePath)
	}
	return nil, fmt.Errorf("a catalog directory or SQLite database must be specified")
}
