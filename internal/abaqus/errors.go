package abaqus

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownWorkflow indicates a workflow answer outside the closed set.
	ErrUnknownWorkflow = errors.New("unknown workflow")

	// ErrInvalidAnswer indicates an answer that cannot be used (malformed or out of range).
	ErrInvalidAnswer = errors.New("invalid answer")
)

// ValidationError reports a completed job specification that breaks one of
// its invariants. It is a programming or configuration error, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid job specification: %s %s", e.Field, e.Reason)
}

// StepError wraps a failure with the builder step it happened in.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func invalidAnswer(question string, value interface{}, err error) error {
	if err != nil {
		return fmt.Errorf("%w for %s (%v): %v", ErrInvalidAnswer, question, value, err)
	}
	return fmt.Errorf("%w for %s: %v", ErrInvalidAnswer, question, value)
}
