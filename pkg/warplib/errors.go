package warplib

import (
	"errors"
	"fmt"
)

var (
	ErrContentRangeInvalid   = errors.New("content range is invalid")
	ErrUnexpectedStatus      = errors.New("unexpected response status")
	ErrSizeMismatch          = errors.New("downloaded size does not match expected size")
	ErrInsufficientDiskSpace = errors.New("insufficient disk space")
)

// StatusError is returned for a non-success HTTP status. It is terminal for
// the task and never retried.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", e.URL, e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
