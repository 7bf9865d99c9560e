package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidRoll         = "INVALID_ROLL"
	CodeInvalidSpace        = "INVALID_SPACE"
	CodeInvalidAvatar       = "INVALID_AVATAR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeSpaceNotFound       = "SPACE_NOT_FOUND"
	CodePositionNotFound    = "POSITION_NOT_FOUND"
	CodeNotOnSpace          = "NOT_ON_SPACE"
	CodeNotPrizeSpace       = "NOT_PRIZE_SPACE"
	CodePrizeAlreadyAwarded = "PRIZE_ALREADY_AWARDED"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeStorageUnavailable  = "STORAGE_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Validation
	case errors.Is(err, model.ErrInvalidRoll):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRoll, "Roll must be between 1 and 6"}}
	case errors.Is(err, model.ErrInvalidSpace):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSpace, "Space is not on the board"}}
	case errors.Is(err, model.ErrInvalidAvatar):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidAvatar, "Unknown avatar"}}
	case errors.Is(err, model.ErrNotPrizeSpace):
		return &httpError{http.StatusBadRequest, APIError{CodeNotPrizeSpace, "Space has no prize"}}
	case errors.Is(err, auth.ErrMissingFields):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Email, password and display name are required"}}

	// Not found
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrSpaceNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSpaceNotFound, "Space not found"}}
	case errors.Is(err, model.ErrPositionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePositionNotFound, "No position recorded yet"}}

	// Conflict
	case errors.Is(err, model.ErrNotOnSpace):
		return &httpError{http.StatusConflict, APIError{CodeNotOnSpace, "Player is not on that space"}}
	case errors.Is(err, model.ErrPrizeAlreadyAwarded):
		return &httpError{http.StatusConflict, APIError{CodePrizeAlreadyAwarded, "Prize already awarded"}}
	case errors.Is(err, auth.ErrEmailExists):
		return &httpError{http.StatusConflict, APIError{CodeEmailExists, "Email already registered"}}

	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid email or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	// Transient
	case errors.Is(err, model.ErrStorageUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStorageUnavailable, "Storage is temporarily unavailable, retry shortly"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
