package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sharefolio/cmd/app"
	"sharefolio/internal/config"
	"sharefolio/internal/logger"
)

var (
	migrateOnStart bool

	rootCmd = &cobra.Command{
		Use:   "sharefolio",
		Short: "ShareFolio portfolio-sharing API server",
		RunE:  serve,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  serve,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE:  migrate,
	}
)

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply the database schema before serving")
	rootCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply the database schema before serving")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		return nil, nil, errors.New("JWT_SECRET_KEY не установлен")
	}

	log, err := logger.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, nil, err
	}

	for _, warning := range cfg.Warnings {
		log.Warn(warning)
	}

	return cfg, log, nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if migrateOnStart {
		if err := app.Migrate(cfg, log); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func migrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := app.Migrate(cfg, log); err != nil {
		return fmt.Errorf("миграция не выполнена: %w", err)
	}

	log.Info("schema is up to date")
	return nil
}

