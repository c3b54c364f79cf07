package question

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/trivia-api/internal/db/sqlc"
)

var errStoreDown = errors.New("store unavailable")

// fakeStore is an in-memory stand-in for *sqlcgen.Queries covering both repositories.
type fakeStore struct {
	mu             sync.Mutex
	categories     []sqlcgen.Category
	questions      []sqlcgen.Question
	nextQuestionID int32
	err            error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: []sqlcgen.Category{
			{ID: 1, Type: "Science"},
			{ID: 2, Type: "Art"},
			{ID: 3, Type: "Geography"},
		},
	}
}

func (s *fakeStore) addQuestion(question, answer string, category, difficulty int32) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextQuestionID++
	s.questions = append(s.questions, sqlcgen.Question{
		ID:         s.nextQuestionID,
		Question:   question,
		Answer:     answer,
		Category:   category,
		Difficulty: difficulty,
	})
	return s.nextQuestionID
}

func (s *fakeStore) ListCategories(_ context.Context) ([]sqlcgen.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]sqlcgen.Category(nil), s.categories...), nil
}

func (s *fakeStore) GetCategory(_ context.Context, id int32) (sqlcgen.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return sqlcgen.Category{}, s.err
	}
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return sqlcgen.Category{}, pgx.ErrNoRows
}

func (s *fakeStore) FindCategoryByType(_ context.Context, lower string) (sqlcgen.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Type, lower) {
			return c, nil
		}
	}
	return sqlcgen.Category{}, pgx.ErrNoRows
}

func (s *fakeStore) CreateCategory(_ context.Context, type_ string) (sqlcgen.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := sqlcgen.Category{ID: int32(len(s.categories) + 1), Type: type_}
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *fakeStore) ListQuestions(_ context.Context) ([]sqlcgen.Question, error) {
	return s.filter(func(sqlcgen.Question) bool { return true })
}

func (s *fakeStore) ListQuestionsByCategory(_ context.Context, category int32) ([]sqlcgen.Question, error) {
	return s.filter(func(q sqlcgen.Question) bool { return q.Category == category })
}

var likeUnescaper = strings.NewReplacer(`\\`, `\`, `\%`, `%`, `\_`, `_`)

func (s *fakeStore) SearchQuestions(_ context.Context, pattern string) ([]sqlcgen.Question, error) {
	needle := strings.ToLower(likeUnescaper.Replace(pattern))
	return s.filter(func(q sqlcgen.Question) bool {
		return strings.Contains(strings.ToLower(q.Question), needle)
	})
}

func (s *fakeStore) InsertQuestion(_ context.Context, arg sqlcgen.InsertQuestionParams) (int32, error) {
	if err := s.failure(); err != nil {
		return 0, err
	}
	return s.addQuestion(arg.Question, arg.Answer, arg.Category, arg.Difficulty), nil
}

func (s *fakeStore) DeleteQuestion(_ context.Context, id int32) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	for i, q := range s.questions {
		if q.ID == id {
			s.questions = append(s.questions[:i], s.questions[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *fakeStore) ListQuizCandidates(_ context.Context, arg sqlcgen.ListQuizCandidatesParams) ([]sqlcgen.Question, error) {
	excluded := make(map[int32]bool, len(arg.Excluded))
	for _, id := range arg.Excluded {
		excluded[id] = true
	}
	return s.filter(func(q sqlcgen.Question) bool {
		return (arg.Category == 0 || q.Category == arg.Category) && !excluded[q.ID]
	})
}

func (s *fakeStore) filter(keep func(sqlcgen.Question) bool) ([]sqlcgen.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []sqlcgen.Question{}
	for _, q := range s.questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *fakeStore) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type memoryCache struct {
	mu          sync.Mutex
	categories  []Category
	sets        int
	invalidated int
}

func (c *memoryCache) Get(_ context.Context) ([]Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categories, nil
}

func (c *memoryCache) Set(_ context.Context, categories []Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = categories
	c.sets++
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = nil
	c.invalidated++
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) published() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// firstSource always picks index 0.
type firstSource struct{}

func (firstSource) IntN(int) int { return 0 }

func newTestService(store *fakeStore, cache CategoryCache, events EventPublisher, rnd RandSource) *Service {
	return NewService(
		repository.NewQuestionRepository(store),
		repository.NewCategoryRepository(store),
		cache,
		events,
		ServiceOptions{Rand: rnd, Logger: zerolog.Nop()},
	)
}

// seededStore holds questions 1-3 in Science, 4-5 in Art and 6 in Geography.
func seededStore() *fakeStore {
	store := newFakeStore()
	store.addQuestion("What is the chemical symbol for gold?", "Au", 1, 2)
	store.addQuestion("What planet is known as the Red Planet?", "Mars", 1, 1)
	store.addQuestion("What is the boiling point of water in Celsius?", "100", 1, 1)
	store.addQuestion("Who painted the Mona Lisa?", "Leonardo da Vinci", 2, 2)
	store.addQuestion("Which artist cut off part of his ear?", "Van Gogh", 2, 3)
	store.addQuestion("What is the largest ocean on Earth?", "Pacific", 3, 2)
	return store
}

func sqlCategory(id int32, typ string) sqlcgen.Category {
	return sqlcgen.Category{ID: id, Type: typ}
}
