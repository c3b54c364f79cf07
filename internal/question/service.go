package question

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/trivia-api/internal/db/sqlc"
	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

// Service owns the trivia catalog rules: listing, pagination, search, creation,
// deletion and quiz selection. It keeps no state between calls beyond its collaborators.
type Service struct {
	questions  *repository.QuestionRepository
	categories *repository.CategoryRepository
	cache      CategoryCache
	events     EventPublisher
	selector   *Selector
	pageSize   int
	logger     zerolog.Logger
}

type ServiceOptions struct {
	PageSize int
	// Rand drives quiz selection; nil uses the global generator.
	Rand   RandSource
	Logger zerolog.Logger
}

// NewService wires the repositories with the optional cache and event publisher (either may be nil).
func NewService(questions *repository.QuestionRepository, categories *repository.CategoryRepository, cache CategoryCache, events EventPublisher, opts ServiceOptions) *Service {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		questions:  questions,
		categories: categories,
		cache:      cache,
		events:     events,
		selector:   NewSelector(opts.Rand),
		pageSize:   pageSize,
		logger:     opts.Logger.With().Str("component", "question_service").Logger(),
	}
}

// Categories returns every category in id order, served from the cache when possible.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("category cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	rows, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories := make([]Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, Category{ID: int(row.ID), Type: row.Type})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, categories); err != nil {
			s.logger.Warn().Err(err).Msg("category cache write failed")
		}
	}
	return categories, nil
}

// CategoryMap returns categories keyed by id.
func (s *Service) CategoryMap(ctx context.Context) (map[int]string, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int]string, len(categories))
	for _, c := range categories {
		out[c.ID] = c.Type
	}
	return out, nil
}

// Category looks a category up by id. A missing category is nil, nil; callers decide if that is an error.
func (s *Service) Category(ctx context.Context, id int) (*Category, error) {
	dbID, ok := toDBID(id)
	if !ok {
		return nil, nil
	}
	row, err := s.categories.Get(ctx, dbID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &Category{ID: int(row.ID), Type: row.Type}, nil
}

// InvalidateCategories drops the cached category list after out-of-band changes.
func (s *Service) InvalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("category cache invalidation failed")
	}
}

// ListQuestions returns all questions when categoryFilter <= 0, else only that category's, in insertion order.
func (s *Service) ListQuestions(ctx context.Context, categoryFilter int) ([]Question, error) {
	var filter int32
	if categoryFilter > 0 {
		id, ok := toDBID(categoryFilter)
		if !ok {
			return []Question{}, nil
		}
		filter = id
	}
	rows, err := s.questions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return toDomainList(rows), nil
}

// QuestionsPage returns one page of the (optionally category-filtered) listing with the total count
// and the category map. A positive categoryID that names no category is ErrNotFound; an empty
// listing or a page past the end is not an error.
func (s *Service) QuestionsPage(ctx context.Context, categoryID, page int) (Page, error) {
	var current *string
	if categoryID > 0 {
		category, err := s.Category(ctx, categoryID)
		if err != nil {
			return Page{}, err
		}
		if category == nil {
			return Page{}, notFoundError(MsgResourceNotFound)
		}
		current = &category.Type
	}

	questions, err := s.ListQuestions(ctx, categoryID)
	if err != nil {
		return Page{}, err
	}
	categories, err := s.CategoryMap(ctx)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Questions:       Paginate(questions, page, s.pageSize),
		TotalQuestions:  len(questions),
		Categories:      categories,
		CurrentCategory: current,
	}, nil
}

// QuestionsInCategory lists every question of an existing category.
func (s *Service) QuestionsInCategory(ctx context.Context, categoryID int) (CategoryQuestions, error) {
	category, err := s.Category(ctx, categoryID)
	if err != nil {
		return CategoryQuestions{}, err
	}
	if category == nil {
		return CategoryQuestions{}, notFoundError(MsgResourceNotFound)
	}

	questions, err := s.ListQuestions(ctx, category.ID)
	if err != nil {
		return CategoryQuestions{}, err
	}
	return CategoryQuestions{
		Questions:       questions,
		TotalQuestions:  len(questions),
		CurrentCategory: category.Type,
	}, nil
}

// SearchQuestions returns questions whose text contains term, ignoring case. The answer is not searched.
func (s *Service) SearchQuestions(ctx context.Context, term string) ([]Question, error) {
	if IsMissing(term) {
		return nil, validationError(MsgSearchTermRequired, "searchTerm")
	}
	rows, err := s.questions.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search questions: %w", err)
	}
	return toDomainList(rows), nil
}

// CreateQuestion validates and stores a question, returning its new id.
func (s *Service) CreateQuestion(ctx context.Context, in NewQuestion) (int, error) {
	if err := requireFields(in, MsgQuestionFieldsRequired); err != nil {
		return 0, err
	}
	category, okCategory := toInt32(in.Category)
	difficulty, okDifficulty := toInt32(in.Difficulty)
	if !okCategory || !okDifficulty {
		return 0, validationError("category and difficulty must be 32-bit integers", "category", "difficulty")
	}

	id, err := s.questions.Insert(ctx, sqlcgen.InsertQuestionParams{
		Question:   in.Question,
		Answer:     in.Answer,
		Category:   category,
		Difficulty: difficulty,
	})
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}

	s.publish(ctx, Event{Type: ws.TypeQuestionCreated, ID: int(id), Category: in.Category})
	return int(id), nil
}

// DeleteQuestion permanently removes a question and returns its id, or ErrNotFound.
func (s *Service) DeleteQuestion(ctx context.Context, id int) (int, error) {
	dbID, ok := toDBID(id)
	if !ok {
		return 0, notFoundError(MsgResourceNotFound)
	}
	if err := s.questions.Delete(ctx, dbID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, notFoundError(MsgResourceNotFound)
		}
		return 0, fmt.Errorf("delete question %d: %w", id, err)
	}

	s.publish(ctx, Event{Type: ws.TypeQuestionDeleted, ID: id})
	return id, nil
}

// NextQuestion draws a random question from category that is not in previous.
// A nil category is a validation failure; category.ID AllCategories means any category.
// nil, nil means every eligible question has been asked.
func (s *Service) NextQuestion(ctx context.Context, category *QuizCategory, previous []int) (*Question, error) {
	if category == nil {
		return nil, validationError(MsgQuizCategoryRequired, "quiz_category")
	}

	dbCategory, ok := toInt32(category.ID)
	if !ok {
		quizSelections.WithLabelValues(outcomeExhausted).Inc()
		return nil, nil
	}
	excluded := make([]int32, 0, len(previous))
	for _, id := range previous {
		// ids outside int32 cannot exist in the store.
		if dbID, ok := toInt32(id); ok {
			excluded = append(excluded, dbID)
		}
	}

	rows, err := s.questions.QuizCandidates(ctx, dbCategory, excluded)
	if err != nil {
		return nil, fmt.Errorf("list quiz candidates: %w", err)
	}

	picked, ok := s.selector.Pick(toDomainList(rows), category.ID, previous)
	if !ok {
		quizSelections.WithLabelValues(outcomeExhausted).Inc()
		return nil, nil
	}
	quizSelections.WithLabelValues(outcomeQuestion).Inc()
	return &picked, nil
}

func (s *Service) publish(ctx context.Context, evt Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn().Err(err).Str("type", evt.Type).Int("id", evt.ID).Msg("catalog event publish failed")
	}
}

func toDomain(row sqlcgen.Question) Question {
	return Question{
		ID:         int(row.ID),
		Question:   row.Question,
		Answer:     row.Answer,
		Category:   int(row.Category),
		Difficulty: int(row.Difficulty),
	}
}

func toDomainList(rows []sqlcgen.Question) []Question {
	out := make([]Question, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out
}

// toDBID converts a positive id to the store's int32 key.
func toDBID(id int) (int32, bool) {
	if id <= 0 || id > math.MaxInt32 {
		return 0, false
	}
	return int32(id), true
}

func toInt32(v int) (int32, bool) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}
