package app

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"sellmypi/internal/cache"
	"sellmypi/internal/config"
	httpserver "sellmypi/internal/http"
	"sellmypi/internal/http/handlers"
	"sellmypi/internal/http/middleware"
	"sellmypi/internal/imagestore"
	"sellmypi/internal/repository"
	"sellmypi/internal/service"
	libdb "sellmypi/libs/db"
	libredis "sellmypi/libs/redis"
)

// App wires the service dependency graph.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	logger *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	var (
		store repository.Store
		sqlDB *sql.DB
	)
	switch cfg.Database.Backend {
	case config.BackendMemory:
		store = repository.NewMemoryStore()
		logger.Warn("using in-memory store, data will not survive a restart")
	default:
		pool, err := libdb.NewPostgresDB(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		pgStore := repository.NewPostgresStore(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		store = pgStore
		sqlDB = pool
	}

	statsCache := service.NewNoopStatsCache()
	if cfg.Redis.Addr != "" {
		client, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			if sqlDB != nil {
				sqlDB.Close()
			}
			return nil, err
		}
		statsCache = cache.New(client, cfg.Redis.StatsTTL)
	}

	realized, err := cfg.RealizedStatuses()
	if err != nil {
		return nil, err
	}
	aggregator := service.NewAggregator(realized, logger)

	var images service.ImageStore = imagestore.New(
		cfg.ImageStore.BaseURL,
		imagestore.NewDefaultHTTPClient(cfg.ImageStore.Timeout),
	)

	orders := service.NewOrders(store, aggregator, statsCache, logger)
	lifecycle := service.NewLifecycle(store, statsCache, logger)
	deleter := service.NewDeleter(store, images, statsCache, logger)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Transactions: handlers.NewTransactionsHandlers(orders, lifecycle, deleter, logger),
		Users:        handlers.NewUsersHandlers(orders, deleter, logger),
		Stats:        handlers.NewStatsHandler(orders),
		Health:       handlers.NewHealthHandler(),
	}, middleware.AuthMiddleware(cfg.JWT.Secret))

	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)

	return &App{
		server: server,
		db:     sqlDB,
		logger: logger,
	}, nil
}

// Run starts serving HTTP traffic.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
