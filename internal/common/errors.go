package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict") // e.g. session code already taken
	ErrValidation         = errors.New("validation failed")
	ErrNoCredits          = errors.New("no hint credits remaining")
	ErrHintAlreadyUsed    = errors.New("hint already used for this problem")
	ErrAlreadyAnswered    = errors.New("problem already answered")
	ErrGeneration         = errors.New("content generation failed")
	ErrPersistence        = errors.New("failed to persist changes")
	ErrCollisionExhausted = errors.New("failed to generate a unique session id")
	ErrRateLimited        = errors.New("too many requests")
)

// Machine-checkable error codes carried in every error response.
const (
	CodeValidation         = "validation_error"
	CodeNotFound           = "not_found"
	CodeNoCredits          = "no_credits"
	CodeHintAlreadyUsed    = "hint_already_used"
	CodeAlreadyAnswered    = "already_answered"
	CodeGeneration         = "generation_error"
	CodePersistence        = "persistence_error"
	CodeCollisionExhausted = "collision_exhausted"
	CodeRateLimited        = "rate_limited"
	CodeConflict           = "conflict"
	CodeInternal           = "internal_error"
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	// Business-rule rejections are request errors, not server errors.
	if errors.Is(err, ErrNoCredits) || errors.Is(err, ErrHintAlreadyUsed) || errors.Is(err, ErrAlreadyAnswered) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrRateLimited) {
		return http.StatusTooManyRequests
	}
	if errors.Is(err, ErrGeneration) || errors.Is(err, ErrPersistence) || errors.Is(err, ErrCollisionExhausted) {
		return http.StatusInternalServerError
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// ErrorCode returns the error category reported to clients alongside the message.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNoCredits):
		return CodeNoCredits
	case errors.Is(err, ErrHintAlreadyUsed):
		return CodeHintAlreadyUsed
	case errors.Is(err, ErrAlreadyAnswered):
		return CodeAlreadyAnswered
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrGeneration):
		return CodeGeneration
	case errors.Is(err, ErrPersistence):
		return CodePersistence
	case errors.Is(err, ErrCollisionExhausted):
		return CodeCollisionExhausted
	case errors.Is(err, ErrConflict):
		return CodeConflict
	}
	return CodeInternal
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
