package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/logging"
	"github.com/gokatarajesh/trivia-api/internal/question"
	httperrors "github.com/gokatarajesh/trivia-api/pkg/http/errors"
)

// NewHTTPServer wires the trivia REST routes plus health, metrics and the quiz WebSocket.
// questions and quizWSHandler may be nil while a dependency is unavailable.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, questions *question.HTTPHandlers, quizWSHandler http.HandlerFunc) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, logger, pool, redis, questions, quizWSHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the handler chain: CORS, request logging, metrics, then the route mux.
func NewRouter(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, questions *question.HTTPHandlers, quizWSHandler http.HandlerFunc) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redis); err != nil {
			logging.FromContext(r.Context()).Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeUpstreamError, "upstream error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if questions != nil {
		mux.HandleFunc("GET /categories", questions.ListCategories)
		mux.HandleFunc("GET /categories/{id}/questions", questions.ListCategoryQuestions)
		mux.HandleFunc("GET /questions", questions.ListQuestions)
		mux.HandleFunc("POST /questions", questions.CreateQuestion)
		mux.HandleFunc("POST /questions/search", questions.SearchQuestions)
		mux.HandleFunc("DELETE /questions/{id}", questions.DeleteQuestion)
		mux.HandleFunc("POST /quizzes", questions.PlayQuiz)
	}

	if quizWSHandler != nil {
		mux.HandleFunc("GET /ws/quiz", quizWSHandler)
	} else {
		mux.HandleFunc("GET /ws/quiz", func(w http.ResponseWriter, r *http.Request) {
			httperrors.RespondError(w, http.StatusNotImplemented, httperrors.ErrCodeInternalError, "WebSocket handler not configured")
		})
	}

	mux.HandleFunc("/", fallback(mux))

	return withCORS(cfg.CORS.AllowedOrigin,
		withRequestLogging(logger,
			withMetrics(mux)))
}

var probeMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// fallback answers unmatched requests with the JSON envelope: 405 when the path
// exists under another method, 404 otherwise.
func fallback(mux *http.ServeMux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, method := range probeMethods {
			if method == r.Method {
				continue
			}
			probe := r.Clone(r.Context())
			probe.Method = method
			if _, pattern := mux.Handler(probe); pattern != "" && pattern != "/" {
				allowed = append(allowed, method)
			}
		}
		if len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeMethodNotAllowed, "Method Not Allowed")
			return
		}
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, question.MsgResourceNotFound)
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if pool == nil || redis == nil {
		return errors.New("dependencies not configured")
	}
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redis.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
