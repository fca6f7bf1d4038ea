package vqueue

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEnqueueFailed     = errors.New("enqueue failed")
	ErrMalformedResponse = errors.New("malformed response")
	ErrPollFailed        = errors.New("poll failed")
)

// StatusError reports a non-success HTTP status from the queue API.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// MissingFieldsError lists expected response fields that were absent.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing fields: " + strings.Join(e.Fields, ", ")
}
