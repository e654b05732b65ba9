// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clierr carries process exit codes through ordinary error returns.
package clierr

import (
	"errors"
	"fmt"
)

// Exit codes used by qualitydash.
const (
	ExitFailure = 1 // output write failures and other fatal errors
	ExitUsage   = 2 // bad flags, arguments or configuration
)

type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError is an error with an explicit process exit code.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

func (e *ExitError) Unwrap() error { return e.cause }

// New creates an ExitError with a message.
func New(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// Wrap creates an ExitError around cause. A nil cause behaves like New.
func Wrap(code int, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

func Newf(code int, format string, args ...any) error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrapf(code int, cause error, format string, args ...any) error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Usage is shorthand for an ExitUsage error.
func Usage(format string, args ...any) error {
	return Newf(ExitUsage, format, args...)
}

// ExitCodeOf extracts an exit code from any error, defaulting to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitFailure
}

func normalize(code int) int {
	if code <= 0 {
		return ExitFailure
	}
	return code
}
