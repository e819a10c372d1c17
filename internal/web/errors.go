package web

// errors.go provides unified error response handling for the web layer.
//
// Handlers call respondError with whatever the core returned; the error is
// mapped through core.MapError to a user-friendly message with a support
// code, the technical error is logged with the request id, and the client
// gets a JSON body with an appropriate status.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/extra-life-tools/donation-queue/internal/core"
)

// ErrorResponse is the JSON structure for error responses. Code is the
// support reference code; Action suggests what the moderator can do.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Action string `json:"action,omitempty"`
}

// respondError logs the technical error and writes the mapped JSON response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", chimw.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:  userMsg.Message,
		Code:   userMsg.Code,
		Action: userMsg.Action,
	})
}

// statusFor maps the core error taxonomy to HTTP status codes.
func statusFor(err error) int {
	var fetchErr *core.UpstreamFetchError
	var configErr *core.ConfigError
	var inputErr *core.BadInputError

	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNotApproved):
		return http.StatusConflict
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &configErr):
		return http.StatusBadRequest
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
