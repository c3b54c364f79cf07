package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/trivia-api/internal/app"
	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/question"
	"github.com/gokatarajesh/trivia-api/internal/question/external"
)

func main() {
	var (
		source     = flag.String("source", question.SourceOpenTDB, "Question source: opentdb or triviaapi")
		amount     = flag.Int("amount", 10, "Number of questions to fetch")
		difficulty = flag.String("difficulty", "", "Optional difficulty filter: easy, medium or hard")
		category   = flag.String("category", "", "Optional Trivia API category slug, e.g. science")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Warn().Err(err).Msg("could not load .env file")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	res, err := run(ctx, cfg, question.ImportRequest{
		Source:     *source,
		Amount:     *amount,
		Difficulty: *difficulty,
		Category:   *category,
	})
	if err != nil {
		log.Fatal().Err(err).Int("imported", res.Imported).Msg("import failed")
	}
	log.Info().
		Int("fetched", res.Fetched).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Msg("import complete")
}

func run(ctx context.Context, cfg *config.App, req question.ImportRequest) (question.ImportResult, error) {
	infra, err := app.NewInfra(ctx, cfg, log.Logger)
	if err != nil {
		return question.ImportResult{}, err
	}
	defer func() {
		if err := infra.Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}()

	httpClient := &http.Client{Timeout: cfg.Import.HTTPTimeout}
	importer := question.NewImporter(
		infra.Service,
		infra.Categories,
		external.NewOpenTDBClient(cfg.Import.OpenTDBURL, httpClient),
		external.NewTriviaAPIClient(cfg.Import.TriviaAPIURL, cfg.Import.TriviaAPIKey, httpClient),
		log.Logger,
	)

	return importer.Import(ctx, req)
}
