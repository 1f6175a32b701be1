// Package apperr defines the error taxonomy shared by all handlers and the
// JSON envelope they render it with.
package apperr

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Kind identifies a class of failure and its HTTP status.
type Kind int

const (
	KindValidation Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindRateLimited
	KindAIProvider
	KindInvalidAIResponse
	KindInternal
)

func (k Kind) status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string

	// RetryAfter is a provider-supplied throttling hint; zero when absent.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error     { return New(KindValidation, message) }
func Authentication(message string) *Error { return New(KindAuthentication, message) }
func Authorization(message string) *Error  { return New(KindAuthorization, message) }
func NotFound(message string) *Error       { return New(KindNotFound, message) }
func AIProvider(message string) *Error     { return New(KindAIProvider, message) }
func Internal(message string) *Error       { return New(KindInternal, message) }

func InvalidAIResponse(message string) *Error {
	return New(KindInvalidAIResponse, message)
}

func RateLimited(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: message, RetryAfter: retryAfter}
}

// Is lets errors.Is match on kind so callers can test classes of failure
// without holding the exact instance.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// Respond writes the error envelope. Unrecognized errors become a generic
// 500 so internal details never leak to the client.
func Respond(ctx *gin.Context, err error) {
	var appErr *Error

	if !errors.As(err, &appErr) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if appErr.Kind == KindRateLimited && appErr.RetryAfter > 0 {
		ctx.Header("Retry-After", strconv.Itoa(int(appErr.RetryAfter.Seconds())))
	}

	ctx.JSON(appErr.Kind.status(), gin.H{"message": appErr.Message})
}
