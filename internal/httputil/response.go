package httputil

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/redmonkez12/task-manager-api/internal/apperror"
	"github.com/redmonkez12/task-manager-api/internal/logging"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Code: code}, statusCode)
}

// RespondAppError maps err onto a status code and error body. Classified
// errors keep their message; anything else is logged and reported as an
// internal error without details.
func RespondAppError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.GetLoggerFromContext(r.Context())

	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind == apperror.KindInternal {
		logger.Error("request failed", "error", err.Error())
		RespondErrorWithCode(w, "internal server error", CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Warn("request rejected", "kind", appErr.Kind.String(), "code", appErr.Code)
	RespondErrorWithCode(w, appErr.Message, appErr.Code, appErr.Kind.Status())
}

// RespondEmpty writes an empty 200 response, matching clients that
// expect a body-less success on logout-style endpoints.
func RespondEmpty(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

// RespondUnauthenticated writes the uniform 401 body shared by every
// authentication failure.
func RespondUnauthenticated(w http.ResponseWriter) {
	RespondErrorWithCode(w, "please authenticate", CodeUnauthenticated, http.StatusUnauthorized)
}
