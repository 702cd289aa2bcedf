package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/commhealth/internal/config"
	handler "github.com/godilite/commhealth/internal/grpc"
	"github.com/godilite/commhealth/internal/repository"
	"github.com/godilite/commhealth/internal/service"
	"github.com/godilite/commhealth/internal/survey"
	"github.com/godilite/commhealth/pkg/cache"
	dbbuilder "github.com/godilite/commhealth/pkg/database"
	grpcsrv "github.com/godilite/commhealth/pkg/grpc/server"
)

const (
	shutdownTimeout = 10 * time.Second
	connectAttempts = 5
	connectDelay    = 500 * time.Millisecond
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
}

// OpenDatabase connects to the configured database and makes sure the
// response schema exists.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, *repository.ResponseRepository, error) {
	dbPool, err := dbbuilder.NewContext(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithRetry(connectAttempts, connectDelay),
		dbbuilder.WithRetryNotify(func(err error, wait time.Duration) {
			logger.Warn("database not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}

	repo := repository.NewResponseRepository(dbPool, cfg.DBDriver)
	if err := repo.EnsureSchema(ctx); err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("schema init failed: %w", err)
	}
	return dbPool, repo, nil
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	def, err := survey.Load(cfg.SurveyPath)
	if err != nil {
		return nil, fmt.Errorf("survey init failed: %w", err)
	}
	logger.Info("Survey definition loaded",
		zap.String("survey_id", def.ID),
		zap.Int("sections", len(def.Sections)))

	dbPool, repo, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver))

	a := &App{logger: logger, dbPool: dbPool}

	// A nil *cache.Cache must not reach the handlers as a non-nil Cacher.
	var cacher handler.Cacher
	if cfg.RedisAddr != "" {
		a.cache, err = cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		cacher = a.cache
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("Cache disabled, REDIS_ADDR not set")
	}

	surveyService := service.NewSurveyService(repo, def, logger)
	analyticsService := service.NewAnalyticsService(repo, def, cfg.Thresholds, logger)

	grpcHandlers := handler.NewGRPCHandlers(surveyService, analyticsService, cacher, logger, cfg.CacheTTL)

	a.grpcServer, err = grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
	)
	if err != nil {
		a.closeStores()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	a.grpcServer.RegisterServiceWithHealth(&handler.CommHealth_ServiceDesc, grpcHandlers)

	return a, nil
}

// Addr returns the address the gRPC server listens on.
func (a *App) Addr() string {
	return a.grpcServer.Addr().String()
}

// Run starts the application and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting")

	a.grpcServer.Start()

	<-ctx.Done()

	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.grpcServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("shutdown completed but deadline exceeded", zap.Error(err))
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	a.closeStores()
	_ = a.logger.Sync()
	return nil
}

func (a *App) closeStores() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}
}
