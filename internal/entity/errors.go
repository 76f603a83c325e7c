package entity

import (
	"errors"
	"fmt"
)

var (
	ErrLeadNotFound = errors.New("lead not found")
	ErrCallNotFound = errors.New("call session not found")
)

// UpstreamError wraps a failure of an external service (sheet store, telephony, broker).
type UpstreamError struct {
	Service string
	Op      string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewUpstreamError(service, op string, err error) error {
	return &UpstreamError{Service: service, Op: op, Err: err}
}

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
