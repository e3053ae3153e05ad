package common

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	// ActorIDKey carries the authenticated user id through request context.
	// Audit events and GRN receivedBy are stamped from it.
	ActorIDKey contextKey = "actor_id"
)

// ActorIDFromContext returns the authenticated actor id, if any.
func ActorIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ActorIDKey).(uuid.UUID)
	return id, ok
}

// ErrorResponse is the standardized error payload.
type ErrorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Retryable bool   `json:"retryable,omitempty"`
	} `json:"error"`
}

// NewErrorResponse creates a standardized error response body.
func NewErrorResponse(code, message string, retryable bool) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Retryable = retryable
	return &resp
}

// SendError maps an engine error onto the HTTP surface. Errors without a
// Kind are treated as server faults and their detail is not leaked.
func SendError(c echo.Context, err error) error {
	switch KindOf(err) {
	case KindValidation:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("VALIDATION_ERROR", engineMessage(err), false))
	case KindNotFound:
		return c.JSON(http.StatusNotFound, NewErrorResponse("NOT_FOUND", engineMessage(err), false))
	case KindStateConflict:
		return c.JSON(http.StatusConflict, NewErrorResponse("STATE_CONFLICT", engineMessage(err), false))
	case KindTransactionAbort:
		return c.JSON(http.StatusConflict, NewErrorResponse("TRANSACTION_ABORT", engineMessage(err), true))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("SERVER_ERROR", "Internal server error", false))
	}
}

func engineMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ParseUUIDParam validates a path parameter as a UUID.
func ParseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return uuid.Nil, Validationf("%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, Validationf("%s is not a valid UUID", name)
	}
	return id, nil
}

// NormalizeCode canonicalizes a caller-supplied location code. Codes are
// upper-cased at creation and immutable afterwards.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", Validationf("code is required")
	}
	if len(code) > 32 {
		return "", Validationf("code must be at most 32 characters")
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return "", Validationf("code may only contain letters, digits, '-' and '_'")
		}
	}
	return code, nil
}

// ValidatePaginationParams clamps limit/offset to safe bounds.
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
