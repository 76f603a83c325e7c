package usecase

import (
	"errors"

	"github.com/xavierca1/leaddialer/internal/entity"
)

const (
	CodeLeadNotFound        = "LEAD_NOT_FOUND"
	CodeCallNotFound        = "CALL_NOT_FOUND"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)

// DomainError is a failure the caller caused, such as an unknown lead.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is a failure of a backing service.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// classify maps adapter errors onto the usecase taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, entity.ErrLeadNotFound):
		return &DomainError{Code: CodeLeadNotFound, Message: "lead not found", Err: err}
	case errors.Is(err, entity.ErrCallNotFound):
		return &DomainError{Code: CodeCallNotFound, Message: "call session not found", Err: err}
	default:
		return &TechnicalError{Code: CodeUpstreamUnavailable, Message: "upstream unavailable", Err: err}
	}
}
