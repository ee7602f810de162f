package main

import "fmt"

// Exit codes reported by tutorhub-admin.
const (
	exitFailure      = 1
	exitUsage        = 2
	exitUnauthorized = 3
	exitInterrupted  = 130
)

type exitError struct {
	code   int
	err    error
	silent bool
}

// silentExit reports err through the caller's own output and exits with code.
func silentExit(code int, err error) *exitError {
	return &exitError{code: code, err: err, silent: true}
}

// cause is the error to report for e, or fallback when e wraps nothing.
func (e *exitError) cause(fallback error) error {
	if e != nil && e.err != nil {
		return e.err
	}
	return fallback
}

func (e *exitError) Error() string {
	if e == nil {
		return ""
	}
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit %d", e.code)
}

func (e *exitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}
