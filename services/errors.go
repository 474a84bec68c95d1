package services

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failure the services can report.
// Handlers map them onto HTTP statuses at the boundary.
var (
	ErrBadInput        = errors.New("bad input")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrUnsupportedKind = errors.New("unsupported layer kind")
	ErrStorage         = errors.New("storage failure")
)

func badInput(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrBadInput)...)
}

func validation(err error) error {
	return fmt.Errorf("%v: %w", err, ErrValidation)
}

func notFound(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func conflict(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func unsupportedKind(kind string) error {
	return fmt.Errorf("layer kind %s: %w", kind, ErrUnsupportedKind)
}

// storage tags an underlying database error with the pipeline step or
// operation that hit it. The message is surfaced to the caller unchanged.
func storage(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrStorage)
}
