package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorAuth      ErrorType = "auth"
	ErrorQuota     ErrorType = "quota"
	ErrorRate      ErrorType = "rate"
	ErrorTransient ErrorType = "transient"
	ErrorMalformed ErrorType = "malformed"
	ErrorContext   ErrorType = "context"
	ErrorPermanent ErrorType = "permanent"
)

var (
	ErrAuth              = errors.New("provider authentication failed")
	ErrRateLimited       = errors.New("provider rate limited")
	ErrTransient         = errors.New("transient provider error")
	ErrMalformedResponse = errors.New("malformed provider response")
	ErrPermanent         = errors.New("permanent provider error")
)

// StatusError is a non-2xx response from a provider endpoint.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
		return ErrAuth
	case e.Code == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Code == http.StatusRequestTimeout || e.Code >= 500:
		return ErrTransient
	default:
		return ErrPermanent
	}
}

// Retryable reports whether a call failing with t may be attempted again.
func (t ErrorType) Retryable() bool {
	switch t {
	case ErrorRate, ErrorQuota, ErrorTransient:
		return true
	default:
		return false
	}
}

func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrAuth):
		return ErrorAuth
	case errors.Is(err, ErrRateLimited):
		return ErrorRate
	case errors.Is(err, ErrTransient), errors.Is(err, context.DeadlineExceeded):
		return ErrorTransient
	case errors.Is(err, ErrMalformedResponse):
		return ErrorMalformed
	case errors.Is(err, ErrPermanent):
		return ErrorPermanent
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrorTransient
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "quota"), strings.Contains(e, "credit"), strings.Contains(e, "insufficient_quota"):
		return ErrorQuota
	case strings.Contains(e, "rate limit"), strings.Contains(e, "rate_limit"), strings.Contains(e, "429"):
		return ErrorRate
	case strings.Contains(e, "api key"), strings.Contains(e, "unauthorized"), strings.Contains(e, "key missing"):
		return ErrorAuth
	case strings.Contains(e, "context length"), strings.Contains(e, "too long"):
		return ErrorContext
	case strings.Contains(e, "timeout"), strings.Contains(e, "temporarily"), strings.Contains(e, "unavailable"),
		strings.Contains(e, "connection reset"), strings.Contains(e, "connection refused"), strings.Contains(e, "eof"):
		return ErrorTransient
	default:
		return ErrorPermanent
	}
}
