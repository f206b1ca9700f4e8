package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/newsloom/newsloom/internal/observability"
)

// ErrorResponse structure per API standards
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Recovery middleware recovers from panics, logs them, and returns a
// structured 500 response.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if logger := observability.ServerLogger; logger != nil {
					logger.Error("Panic in request handler",
						zap.Any("panic", err),
						zap.String("request_id", GetRequestID(r.Context())),
						zap.String("stack", string(debug.Stack())))
				}

				WriteError(w, r, http.StatusInternalServerError,
					"INTERNAL_ERROR", fmt.Sprintf("panic: %v", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// WriteError writes a structured JSON error response.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: GetRequestID(r.Context()),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
