package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pos-till/internal/apperror"

	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Kind      string                 `json:"kind,omitempty"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithErrorDetails(w, statusCode, "", message, nil)
}

func respondWithErrorDetails(w http.ResponseWriter, statusCode int, kind, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      http.StatusText(statusCode),
			Kind:      kind,
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	json.NewEncoder(w).Encode(response)
}

// RespondWithAppError maps a service error onto its HTTP status. Errors
// without a kind are logged and reported as 500 without their text.
func RespondWithAppError(w http.ResponseWriter, err error, logger *zap.Logger) {
	appErr, ok := apperror.As(err)
	if !ok {
		logger.Error("Unhandled service error", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var details map[string]interface{}
	if len(appErr.Fields) > 0 {
		fields := make([]ValidationError, 0, len(appErr.Fields))
		for field, msg := range appErr.Fields {
			fields = append(fields, ValidationError{Field: field, Message: msg})
		}
		details = map[string]interface{}{"validation_errors": fields}
	}
	respondWithErrorDetails(w, appErr.Status(), string(appErr.Kind), appErr.Message, details)
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	respondWithErrorDetails(w, http.StatusBadRequest, string(apperror.KindValidation), "validation failed", details)
}

// RespondWithDecodeError reports a body that failed to decode or validate.
func RespondWithDecodeError(w http.ResponseWriter, err error) {
	if fields := FormatValidationErrors(err); len(fields) > 0 {
		RespondWithValidationErrors(w, fields)
		return
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		RespondWithError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
