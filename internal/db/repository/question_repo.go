package repository

import (
	"context"
	"strings"

	sqlcgen "github.com/gokatarajesh/trivia-api/internal/db/sqlc"
)

type questionStore interface {
	ListQuestions(ctx context.Context) ([]sqlcgen.Question, error)
	ListQuestionsByCategory(ctx context.Context, category int32) ([]sqlcgen.Question, error)
	SearchQuestions(ctx context.Context, pattern string) ([]sqlcgen.Question, error)
	InsertQuestion(ctx context.Context, arg sqlcgen.InsertQuestionParams) (int32, error)
	DeleteQuestion(ctx context.Context, id int32) (int64, error)
	ListQuizCandidates(ctx context.Context, arg sqlcgen.ListQuizCandidatesParams) ([]sqlcgen.Question, error)
}

// QuestionRepository wraps sqlc queries for the question catalog.
type QuestionRepository struct {
	store questionStore
}

func NewQuestionRepository(store questionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

// List returns every question, or only those of categoryID when it is positive.
func (r *QuestionRepository) List(ctx context.Context, categoryID int32) ([]sqlcgen.Question, error) {
	if categoryID <= 0 {
		return r.store.ListQuestions(ctx)
	}
	return r.store.ListQuestionsByCategory(ctx, categoryID)
}

// Search matches term as a literal, case-insensitive substring of the question text.
func (r *QuestionRepository) Search(ctx context.Context, term string) ([]sqlcgen.Question, error) {
	return r.store.SearchQuestions(ctx, likeEscaper.Replace(term))
}

// Insert stores a question and returns its new id.
func (r *QuestionRepository) Insert(ctx context.Context, params sqlcgen.InsertQuestionParams) (int32, error) {
	return r.store.InsertQuestion(ctx, params)
}

// Delete removes a question, returning ErrNotFound when the id does not exist.
func (r *QuestionRepository) Delete(ctx context.Context, id int32) error {
	affected, err := r.store.DeleteQuestion(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// QuizCandidates lists questions in category (0 = any) whose ids are not in excluded.
func (r *QuestionRepository) QuizCandidates(ctx context.Context, category int32, excluded []int32) ([]sqlcgen.Question, error) {
	if excluded == nil {
		// NOT (id = ANY(NULL)) filters every row.
		excluded = []int32{}
	}
	return r.store.ListQuizCandidates(ctx, sqlcgen.ListQuizCandidatesParams{
		Category: category,
		Excluded: excluded,
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
