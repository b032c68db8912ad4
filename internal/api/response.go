package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-chart/pkg/errors"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string           `json:"error"`
	Code  errors.ErrorCode `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps an error onto an HTTP status. Upstream and transport failures are
// reported identically.
func statusFor(err error) int {
	switch {
	case errors.IsInvalidInput(err):
		return http.StatusBadRequest
	case errors.HasCode(err, errors.ErrCodeDataNotFound):
		return http.StatusNotFound
	case errors.IsConfigurationError(err):
		return http.StatusInternalServerError
	case errors.IsFetchError(err):
		return http.StatusBadGateway
	case errors.HasCode(err, errors.ErrCodeCacheClosed):
		return http.StatusServiceUnavailable
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", r.Header.Get(RequestIDHeader)),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}
