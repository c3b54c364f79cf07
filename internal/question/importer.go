package question

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	sqlcgen "github.com/gokatarajesh/trivia-api/internal/db/sqlc"
	"github.com/gokatarajesh/trivia-api/internal/question/external"
)

// Import sources.
const (
	SourceOpenTDB   = "opentdb"
	SourceTriviaAPI = "triviaapi"
)

type openTDBProvider interface {
	Fetch(ctx context.Context, amount int, difficulty, qType string) ([]external.OpenTDBQuestion, error)
}

type triviaAPIProvider interface {
	Fetch(ctx context.Context, amount int, category, difficulty string) ([]external.TriviaAPIQuestion, error)
}

type categoryEnsurer interface {
	Ensure(ctx context.Context, typ string) (sqlcgen.Category, error)
}

// ImportRequest describes one batch pulled from an upstream trivia provider.
type ImportRequest struct {
	Source     string
	Amount     int
	Difficulty string
	// Category is a provider category slug; only The Trivia API honours it.
	Category string
}

// ImportResult counts what happened to the fetched batch.
type ImportResult struct {
	Fetched  int `json:"fetched"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Importer seeds the catalog out of band. Inserts go through Service.CreateQuestion so
// imported rows obey the same validation as API writes.
type Importer struct {
	service    *Service
	categories categoryEnsurer
	opentdb    openTDBProvider
	trivia     triviaAPIProvider
	logger     zerolog.Logger
}

func NewImporter(service *Service, categories categoryEnsurer, opentdb openTDBProvider, trivia triviaAPIProvider, logger zerolog.Logger) *Importer {
	return &Importer{
		service:    service,
		categories: categories,
		opentdb:    opentdb,
		trivia:     trivia,
		logger:     logger.With().Str("component", "question_importer").Logger(),
	}
}

type importItem struct {
	question   string
	answer     string
	category   string
	difficulty string
}

// Import fetches req.Amount questions and stores the valid ones.
func (im *Importer) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	if req.Amount <= 0 {
		return ImportResult{}, validationError("amount must be positive", "amount")
	}

	items, err := im.fetch(ctx, req)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Fetched: len(items)}
	categoryIDs := make(map[string]int)
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.category))
		categoryID, ok := categoryIDs[key]
		if !ok && key != "" {
			row, err := im.categories.Ensure(ctx, item.category)
			if err != nil {
				return res, fmt.Errorf("ensure category %q: %w", item.category, err)
			}
			categoryID = int(row.ID)
			categoryIDs[key] = categoryID
		}

		_, err := im.service.CreateQuestion(ctx, NewQuestion{
			Question:   strings.TrimSpace(item.question),
			Answer:     strings.TrimSpace(item.answer),
			Category:   categoryID,
			Difficulty: DifficultyScore(item.difficulty),
		})
		if err != nil {
			if errors.Is(err, ErrValidation) {
				res.Skipped++
				im.logger.Debug().Str("question", item.question).Msg("skipping invalid upstream question")
				continue
			}
			return res, err
		}
		res.Imported++
	}

	// new categories were written behind the cache.
	im.service.InvalidateCategories(ctx)

	im.logger.Info().
		Str("source", req.Source).
		Int("fetched", res.Fetched).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Msg("import finished")
	return res, nil
}

func (im *Importer) fetch(ctx context.Context, req ImportRequest) ([]importItem, error) {
	difficulty := strings.ToLower(req.Difficulty)
	switch req.Source {
	case SourceOpenTDB, "":
		if im.opentdb == nil {
			return nil, fmt.Errorf("opentdb provider not configured")
		}
		rows, err := im.opentdb.Fetch(ctx, req.Amount, difficulty, "")
		if err != nil {
			return nil, fmt.Errorf("fetch opentdb: %w", err)
		}
		items := make([]importItem, 0, len(rows))
		for _, r := range rows {
			items = append(items, importItem{question: r.Question, answer: r.CorrectAnswer, category: r.Category, difficulty: r.Difficulty})
		}
		return items, nil
	case SourceTriviaAPI:
		if im.trivia == nil {
			return nil, fmt.Errorf("trivia api provider not configured")
		}
		rows, err := im.trivia.Fetch(ctx, req.Amount, req.Category, difficulty)
		if err != nil {
			return nil, fmt.Errorf("fetch trivia api: %w", err)
		}
		items := make([]importItem, 0, len(rows))
		for _, r := range rows {
			items = append(items, importItem{question: r.Text(), answer: r.Correct, category: categoryTitle(r.Category), difficulty: r.Difficulty})
		}
		return items, nil
	default:
		return nil, validationError(fmt.Sprintf("unknown import source %q", req.Source), "source")
	}
}

// DifficultyScore maps provider difficulty labels onto the 1-5 scale: easy 1, medium 3, hard 5.
// Unknown labels count as medium.
func DifficultyScore(label string) int {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "easy":
		return 1
	case "hard":
		return 5
	default:
		return 3
	}
}

// categoryTitle turns slugs like "film_and_tv" into "Film And Tv".
func categoryTitle(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
