package web

// errors.go turns service errors into responses.
//
// The technical error is logged with the request id; the client only sees
// the localized message, action and support code from core.MapError.
// API routes answer JSON, everything else a small HTML page.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Macora01/pdftoexcl/internal/core"
	"github.com/Macora01/pdftoexcl/internal/logging"
	"github.com/Macora01/pdftoexcl/internal/web/templates"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse is the JSON body of every API error. Detail repeats
// Message for clients that only read a "detail" field.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	log := logging.FromContext(r.Context()).With(
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"code", msg.Code,
	)
	if status >= http.StatusInternalServerError {
		log.Error("request error", "error", err)
	} else {
		log.Debug("request rejected", "error", err)
	}

	if wantsJSON(r) {
		writeJSON(w, r, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Detail:  msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		log.Error("render error page", "error", err)
	}
}

// wantsJSON reports whether the client should get a JSON error.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
