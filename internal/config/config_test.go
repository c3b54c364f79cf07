package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_USER", "trivia")
	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_DATABASE", "trivia")
	t.Setenv("REDIS_ADDR", "redis:6379")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "trivia-api", cfg.Name)
	assert.Equal(t, 10, cfg.Trivia.QuestionsPerPage)
	assert.Equal(t, 5*time.Minute, cfg.Trivia.CategoryCacheTTL)
	assert.Equal(t, "trivia:questions", cfg.Trivia.EventsChannel)
	assert.Equal(t, "*", cfg.CORS.AllowedOrigin)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Empty(t, cfg.Import.TriviaAPIKey)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("QUESTIONS_PER_PAGE", "25")
	t.Setenv("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Trivia.QuestionsPerPage)
	assert.Equal(t, "http://localhost:3000", cfg.CORS.AllowedOrigin)
}

func TestLoadRejectsNonPositivePageSize(t *testing.T) {
	setRequired(t)
	t.Setenv("QUESTIONS_PER_PAGE", "0")

	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestLoadRequiresPostgres(t *testing.T) {
	setRequired(t)
	t.Setenv("PG_HOST", "")

	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	setRequired(t)

	pg, err := LoadPostgres()
	require.NoError(t, err)
	assert.Equal(t,
		"host=db port=5432 user=trivia password=secret dbname=trivia sslmode=disable pool_max_conns=10",
		pg.DSN())
	assert.NotContains(t, pg.ConnString(), "pool_max_conns")
}
