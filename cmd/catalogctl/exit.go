package main

import (
	"errors"
	"fmt"

	"github.com/andreyvit/catalog"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the catalog rejected the operation
	ExitCommandError = 2 // bad flags, config or identifiers
)

// ExitError is an error with the exit code the process should end with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err. Invalid identifiers are
// command errors; any other error is a failure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, catalog.ErrInvalidIdentifier) {
		return ExitCommandError
	}
	return ExitFailure
}
