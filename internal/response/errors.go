package response

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidResponse is returned when an answer is outside its question's alphabet.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrIncompleteInput is returned when required questions or domains are missing.
	ErrIncompleteInput = errors.New("incomplete input")

	// ErrUnknownQuestion is returned when an answer names a question the domain does not ask.
	ErrUnknownQuestion = errors.New("unknown question")
)

// InvalidResponseError names the question whose answer was rejected.
type InvalidResponseError struct {
	Question string
	Raw      string
	Allowed  Group
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("question %s: invalid response %q (allowed: %s)", e.Question, e.Raw, e.Allowed)
}

func (e *InvalidResponseError) Unwrap() error {
	return ErrInvalidResponse
}

// IncompleteInputError lists what is missing from a domain or instrument.
type IncompleteInputError struct {
	Scope   string
	Missing []string
}

func (e *IncompleteInputError) Error() string {
	return fmt.Sprintf("%s: incomplete input, missing %s", e.Scope, strings.Join(e.Missing, ", "))
}

func (e *IncompleteInputError) Unwrap() error {
	return ErrIncompleteInput
}
