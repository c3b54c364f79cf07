package question

import "math/rand/v2"

// RandSource yields uniform ints in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

// globalSource uses the package-level generator, which is safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// Selector picks the next quiz question.
type Selector struct {
	rnd RandSource
}

// NewSelector returns a Selector drawing from rnd, or from the global generator when rnd is nil.
// A *rand.Rand is not goroutine-safe; share one only across sequential callers.
func NewSelector(rnd RandSource) *Selector {
	if rnd == nil {
		rnd = globalSource{}
	}
	return &Selector{rnd: rnd}
}

// Pick returns a uniformly random question from pool that belongs to categoryID
// (AllCategories matches any) and whose id is not in previous. ok is false when
// nothing is eligible, which ends the quiz.
func (s *Selector) Pick(pool []Question, categoryID int, previous []int) (q Question, ok bool) {
	asked := make(map[int]struct{}, len(previous))
	for _, id := range previous {
		asked[id] = struct{}{}
	}

	eligible := make([]Question, 0, len(pool))
	for _, candidate := range pool {
		if categoryID != AllCategories && candidate.Category != categoryID {
			continue
		}
		if _, seen := asked[candidate.ID]; seen {
			continue
		}
		eligible = append(eligible, candidate)
	}

	if len(eligible) == 0 {
		return Question{}, false
	}
	return eligible[s.rnd.IntN(len(eligible))], true
}
