// Package response writes the JSON envelope used by every HTTP reply.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
)

// CodeRateLimited is the envelope code of a throttled request.
const CodeRateLimited = "RATE_LIMITED"

// Envelope provides a consistent JSON response structure.
// It has the same shape as a message response so clients parse one format.
type Envelope struct {
	ID      string `json:"id,omitempty"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// Success writes data in a successful envelope (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data}, logger)
}

// Error writes a failed envelope with the given status and code.
func Error(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	JSON(w, status, Envelope{Success: false, Error: message, Code: code}, logger)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusBadRequest, string(apperrors.CodeValidation), message, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, string(apperrors.CodeNotFound), message, logger)
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, string(apperrors.CodeValidation), message, logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, CodeRateLimited, message, logger)
}

// HandleError writes the response for err. Domain errors keep their code and
// message; anything else becomes an opaque 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *apperrors.Error
	if apperrors.As(err, &domainErr) {
		Error(w, domainErr.Code.HTTPStatus(), string(domainErr.Code), domainErr.Message, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	Error(w, http.StatusInternalServerError, string(apperrors.CodeInternal), "internal server error", logger)
}
