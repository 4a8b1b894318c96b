// Package apps holds what the command-line programs share.
package apps

import "github.com/pkg/errors"

// ArgumentError reports a command-line argument the program cannot act on.
type ArgumentError struct {
	msg string
}

func NewArgumentError(msg string) *ArgumentError {
	return &ArgumentError{msg: msg}
}

func (err *ArgumentError) Error() string {
	return err.msg
}

// IsArgumentError reports whether the cause of err is an *ArgumentError.
func IsArgumentError(err error) bool {
	_, ok := errors.Cause(err).(*ArgumentError)
	return ok
}
