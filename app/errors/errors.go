package errors

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
)

// RuntimeError is an error that happened while executing a command, as opposed
// to invalid user input. Hint is an optional suggestion shown to the user.
type RuntimeError struct {
	*StructuredError
	Hint string
}

// NewRuntimeError returns a new RuntimeError with the given message, cause,
// hint and optional metadata.
func NewRuntimeError(msg string, cause error, hint string, fields ...any) *RuntimeError {
	return &RuntimeError{StructuredError: NewWithCause(msg, cause, fields...), Hint: hint}
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if cause := e.Cause(); cause != nil {
		return fmt.Sprintf("%s: %s", e.StructuredError.Error(), cause)
	}
	return e.StructuredError.Error()
}

// Unwrap allows errors.Is and errors.As to work.
func (e *RuntimeError) Unwrap() error {
	return e.StructuredError
}

// Log logs an error using the default slog logger, extracting metadata if it's
// a StructuredError.
func Log(err error) {
	var serr *StructuredError
	if !errors.As(err, &serr) {
		slog.Error(err.Error())
		return
	}

	args := make([]any, 0, len(serr.metadata)*2+2)

	cause := serr.metadata["cause"]
	if serr.cause != nil {
		cause = serr.cause
	}
	if cause != nil {
		args = append(args, "cause", cause)
	}

	keys := make([]string, 0, len(serr.metadata))
	for k := range serr.metadata {
		if k != "cause" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, k, serr.metadata[k])
	}

	slog.Error(serr.Error(), args...)
}

// Errorf logs err with its metadata, and writes the hint of a RuntimeError to
// stderr.
func Errorf(err error) {
	Log(err)
	printHint(os.Stderr, err)
}

func printHint(w io.Writer, err error) {
	var rerr *RuntimeError
	if errors.As(err, &rerr) && rerr.Hint != "" {
		fmt.Fprintf(w, "hint: %s\n", rerr.Hint)
	}
}
