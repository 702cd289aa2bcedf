package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidScoreShape is returned when a stored score is neither a number
	// nor a record carrying a numeric percentage.
	ErrInvalidScoreShape = errors.New("invalid score shape")
	// ErrInsufficientAnswers is returned when no section has an answered scale question.
	ErrInsufficientAnswers = errors.New("insufficient answers")
	// ErrInvalidAnswer is returned for scale answers outside 1-4 or of the wrong kind.
	ErrInvalidAnswer = errors.New("invalid answer")
)

// RecordError ties a failure to the response record that caused it.
type RecordError struct {
	ResponseID string
	Err        error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("response %s: %v", e.ResponseID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
