package transport

import (
	"net/http"
	"time"

	"pos-till/internal/middleware"
	"pos-till/internal/service"

	"go.uber.org/zap"
)

// operatorFrom rebuilds the acting operator from the auth context.
func operatorFrom(r *http.Request) (service.Operator, bool) {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		return service.Operator{}, false
	}
	role, _ := middleware.GetUserRole(r.Context())
	return service.Operator{ID: id, Name: middleware.GetUserName(r.Context()), Role: role}, true
}

// requireOperator writes 401 and returns false when no operator is present.
func requireOperator(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (service.Operator, bool) {
	op, ok := operatorFrom(r)
	if !ok {
		logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
	}
	return op, ok
}

// decodeBody decodes and validates the JSON body, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, logger *zap.Logger) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return false
	}
	return true
}

// parseTime accepts RFC 3339 timestamps or plain dates. A date used as an
// upper bound covers the whole day.
func parseTime(raw string, endOfDay bool) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}

// parseRange reads ?from=&to= into a time range.
func parseRange(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	q := r.URL.Query()
	from, okFrom := parseTime(q.Get("from"), false)
	to, okTo := parseTime(q.Get("to"), true)
	if !okFrom || !okTo {
		middleware.RespondWithError(w, http.StatusBadRequest, "from and to must be RFC 3339 timestamps or YYYY-MM-DD dates")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
