package question

import "errors"

// Error kinds surfaced to request handlers.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("resource not found")
)

// Caller-facing messages.
const (
	MsgQuestionFieldsRequired = "Question, answer, category, and difficulty are required"
	MsgSearchTermRequired     = "Search term is required"
	MsgQuizCategoryRequired   = "Quiz category is required"
	MsgResourceNotFound       = "Resource not found"
)

// Error pairs an error kind with the message shown to the caller.
type Error struct {
	Kind    error
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func validationError(message string, fields ...string) error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

func notFoundError(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}
