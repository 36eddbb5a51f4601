package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/doorman-ac/doorman/internal/api"
	"github.com/doorman-ac/doorman/internal/audit"
	"github.com/doorman-ac/doorman/internal/config"
	"github.com/doorman-ac/doorman/internal/core"
	"github.com/doorman-ac/doorman/internal/logging"
	"github.com/doorman-ac/doorman/internal/source"
	"github.com/doorman-ac/doorman/internal/store"
	"github.com/doorman-ac/doorman/internal/tasks"
	"github.com/doorman-ac/doorman/internal/validation"
)

var serveConfigPath string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Doorman server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(serveConfigPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		log.Info().Msg("Initializing auditor...")
		auditor, err := audit.Build(cfg.Audit)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close auditor")
			}
		}()

		controlStore := store.NewInMemoryControlStore(cfg.Controls)
		log.Info().Msgf("Loaded %d access controls from config", len(cfg.Controls))

		taskManager := tasks.NewManager()
		if cfg.ControlSource != nil {
			if err := registerControlSync(taskManager, cfg.ControlSource, controlStore); err != nil {
				return fmt.Errorf("setting up control sync: %w", err)
			}
		}

		srv := api.NewServer(controlStore, taskManager, auditor)

		server := &http.Server{
			Addr:    addr,
			Handler: srv.Routes([]byte(cfg.Server.AdminSigningKey)),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

// registerControlSync wires the configured control source into a background
// task that replaces the store contents on every successful fetch.
func registerControlSync(manager *tasks.Manager, src *config.ControlSource, controlStore core.ControlStore) error {
	fetcher, err := source.NewGitHubFetcher(*src.GitHub)
	if err != nil {
		return err
	}

	manager.Register("control-sync", src.Sync.Interval, func(ctx context.Context, logger logging.InternalLogger) error {
		controls, err := fetcher.Fetch(ctx, logger)
		if err != nil {
			return fmt.Errorf("fetching control definitions: %w", err)
		}

		validControls, err := validation.ValidateControls(controls)
		if err != nil {
			return fmt.Errorf("validating fetched control definitions: %w", err)
		}

		if err := controlStore.ReplaceAll(ctx, validControls); err != nil {
			return fmt.Errorf("replacing control definitions: %w", err)
		}

		logger.Info("Synced %d control definitions", len(validControls))
		return nil
	})
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "f", "", "The Doorman config file to use")
	serveCmd.Flags().String("addr", "", "address to listen on (overrides config)")

	_ = serveCmd.MarkFlagRequired("config")
}
