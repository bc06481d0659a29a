package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	terr "github.com/matzehuels/townsquare/pkg/errors"
	"github.com/matzehuels/townsquare/pkg/observability"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code      terr.Code `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

// httpStatus maps an error code to an HTTP status.
func httpStatus(code terr.Code) int {
	switch code {
	case terr.ErrCodeInvalidInput, terr.ErrCodeInvalidConfig,
		terr.ErrCodeInvalidFormat, terr.ErrCodeInvalidViewport:
		return http.StatusBadRequest
	case terr.ErrCodeNotFound:
		return http.StatusNotFound
	case terr.ErrCodeLayoutBusy:
		return http.StatusConflict
	case terr.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case terr.ErrCodeNetwork:
		return http.StatusBadGateway
	case terr.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeError replies with the structured form of err.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{
		Code:      terr.GetCode(err),
		Message:   terr.UserMessage(err),
		RequestID: RequestID(r.Context()),
	}

	var busy *terr.BusyError
	if errors.As(err, &busy) {
		resp.Message = busy.Error()
		if busy.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(busy.RetryAfter))
		}
	}
	if resp.Code == "" {
		resp.Code = terr.ErrCodeInternal
		resp.Message = "internal server error"
	}

	status := httpStatus(resp.Code)
	observability.HTTP().OnError(r.Context(), r.Method, route(r), err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "code", resp.Code, "err", err, "request_id", resp.RequestID)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", resp.Code, "err", err, "request_id", resp.RequestID)
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
