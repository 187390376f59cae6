// Package response provides standardized HTTP response formatting and error handling utilities.
package response

import (
	"encoding/json/v2"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/StrangePerch/laravel-trello-server/internal/errors"
	"github.com/StrangePerch/laravel-trello-server/internal/store"
)

// Payload carries the response fields merged into the envelope at the top
// level, next to success and message. Clients read `{"success": true,
// "message": "...", "board": {...}}` rather than a nested data object.
type Payload map[string]any

// JSON writes an envelope response with the given status code using json/v2.
func JSON(w http.ResponseWriter, status int, message string, payload Payload, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		envelope[k] = v
	}
	envelope["success"] = status < 400
	envelope["message"] = message

	// json/v2 MarshalWrite doesn't add a newline, but that's fine for HTTP responses.
	if err := json.MarshalWrite(w, envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Success writes a successful envelope (200 OK).
func Success(w http.ResponseWriter, message string, payload Payload, logger *slog.Logger) {
	JSON(w, http.StatusOK, message, payload, logger)
}

// Error writes a failed envelope with the given status code.
func Error(w http.ResponseWriter, status int, message string, payload Payload, logger *slog.Logger) {
	JSON(w, status, message, payload, logger)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusUnauthorized, message, nil, logger)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, message, nil, logger)
}

// InternalError writes a 500 response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, message, nil, logger)
}

// HandleError writes an appropriate HTTP response based on the error type.
// Domain errors carry their own status mapping; validation details are
// surfaced under validator_errors. Unknown errors become 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		var payload Payload
		if domainErr.Code == domainerrors.CodeValidation && domainErr.Details != nil {
			payload = Payload{"validator_errors": domainErr.Details}
		}
		Error(w, domainErr.Code.HTTPStatus(), domainErr.Message, payload, logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		Error(w, storeErr.HTTPCode(), storeErr.Message, nil, logger)
		return
	}

	// Unknown error = 500
	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, "internal server error", logger)
}
