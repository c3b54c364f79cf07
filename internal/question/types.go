package question

// AllCategories is the quiz category id meaning "no category restriction".
const AllCategories = 0

// Category is a display grouping for questions.
type Category struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// Question is the formatted question delivered to clients.
type Question struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   int    `json:"category"`
	Difficulty int    `json:"difficulty"`
}

// NewQuestion is the input for CreateQuestion. Every field is required in the falsy sense:
// empty text and zero numbers count as missing.
type NewQuestion struct {
	Question   string `json:"question" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	Category   int    `json:"category" validate:"required"`
	Difficulty int    `json:"difficulty" validate:"required"`
}

// QuizCategory selects the pool for quiz play; ID AllCategories means any category.
type QuizCategory struct {
	ID   int    `json:"id"`
	Type string `json:"type,omitempty"`
}

// Page is one page of the question listing.
type Page struct {
	Questions       []Question     `json:"questions"`
	TotalQuestions  int            `json:"total_questions"`
	Categories      map[int]string `json:"categories"`
	CurrentCategory *string        `json:"current_category"`
}

// CategoryQuestions is the full question list of one category.
type CategoryQuestions struct {
	Questions       []Question `json:"questions"`
	TotalQuestions  int        `json:"total_questions"`
	CurrentCategory string     `json:"current_category"`
}
