package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"sharefolio/internal/config"
	"sharefolio/internal/database"
	handlers "sharefolio/internal/handler"
	"sharefolio/internal/middleware"
	"sharefolio/internal/realtime"
	"sharefolio/internal/repository"
	"sharefolio/internal/service"
	"sharefolio/internal/state"
	"sharefolio/internal/storage"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *database.DB
	hub     *realtime.Hub
	handler http.Handler
}

// New connects the backing services and assembles the HTTP stack.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		return nil, err
	}

	minioClient, err := storage.NewMinIOClient(ctx, cfg, logger)
	if err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("не удалось инициализировать MinIO: %w", err)
	}

	repo := repository.NewRepository(db.DB)
	hub := realtime.NewHub(logger)
	store := state.NewStore(repo.State, logger)
	services := service.NewService(repo, cfg, minioClient, hub, logger)

	h := handlers.NewHandlers(services, store, hub, db, cfg, logger)

	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer)
	router := handlers.NewRouter(h, promhttp.Handler(), metrics.Middleware)

	handler := middleware.Chain(router,
		middleware.RequestID,
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(cfg.CORSOrigin),
		middleware.Compress,
		middleware.Session(cfg.SessionCookieSecure),
		middleware.AuthMiddleware(services.Auth, logger),
	)

	return &App{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		hub:     hub,
		handler: handler,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains open requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.ServerPort),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server started",
			zap.String("addr", srv.Addr),
			zap.String("database", a.cfg.DB.DbNAME))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")

		// live subscriptions end first so websocket handlers return
		a.hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Close() {
	if err := a.db.CloseDB(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
}

// Migrate applies the schema file from the configuration.
func Migrate(cfg *config.Config, logger *zap.Logger) error {
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	return db.RunMigrations(cfg.MigrationsPath)
}
