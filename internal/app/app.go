package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/trivia-api/internal/db/sqlc"
	"github.com/gokatarajesh/trivia-api/internal/logging"
	"github.com/gokatarajesh/trivia-api/internal/question"
	"github.com/gokatarajesh/trivia-api/internal/server"
	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
	hub   *ws.Hub

	broadcaster *question.Broadcaster
	bgCancels   []context.CancelFunc
}

// Infra holds the connections shared by the API and the importer.
type Infra struct {
	Pool       *pgxpool.Pool
	Redis      *redis.Client
	Questions  *repository.QuestionRepository
	Categories *repository.CategoryRepository
	Service    *question.Service
}

// Close releases the pool and the Redis client.
func (i *Infra) Close() error {
	i.Pool.Close()
	return i.Redis.Close()
}

// NewInfra connects Postgres and Redis and builds the question service on top of them.
func NewInfra(ctx context.Context, cfg *config.App, logger zerolog.Logger) (*Infra, error) {
	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	queries := sqlcgen.New(pool)
	questionRepo := repository.NewQuestionRepository(queries)
	categoryRepo := repository.NewCategoryRepository(queries)

	svc := question.NewService(
		questionRepo,
		categoryRepo,
		question.NewCache(redisClient, cfg.Trivia.CategoryCacheTTL),
		question.NewRedisPublisher(redisClient, cfg.Trivia.EventsChannel),
		question.ServiceOptions{
			PageSize: cfg.Trivia.QuestionsPerPage,
			Logger:   logger,
		},
	)

	return &Infra{
		Pool:       pool,
		Redis:      redisClient,
		Questions:  questionRepo,
		Categories: categoryRepo,
		Service:    svc,
	}, nil
}

// New bootstraps logger, Postgres, Redis, the WebSocket hub and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	infra, err := NewInfra(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	wsHub := ws.NewHub(logger)
	questionHandlers := question.NewHTTPHandlers(infra.Service, logger)
	quizWSHandler := question.NewWSHandler(infra.Service, wsHub, ws.NewUpgrader(cfg.CORS.AllowedOrigin), logger)
	broadcaster := question.NewBroadcaster(infra.Redis, wsHub, cfg.Trivia.EventsChannel, logger)

	apiServer := server.NewHTTPServer(cfg, logger, infra.Pool, infra.Redis, questionHandlers, quizWSHandler.HandleWebSocket)

	return &Application{
		cfg:         cfg,
		logger:      logger,
		pool:        infra.Pool,
		redis:       infra.Redis,
		http:        apiServer,
		hub:         wsHub,
		broadcaster: broadcaster,
		bgCancels:   make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}
	// hijacked WebSocket connections are not closed by Shutdown.
	a.hub.CloseAll()

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.broadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.broadcaster.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("catalog broadcaster stopped")
			}
		}()
	}
}
