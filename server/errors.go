package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/topi314/dropgallery/server/auth"
)

type ErrorVars struct {
	Status  int
	Message string
}

// renderError is the generic error boundary: it maps the error to a status
// code and renders the error page. Nothing is retried.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)

	w.WriteHeader(status)
	if tErr := s.templates().ExecuteTemplate(w, "error.gohtml", ErrorVars{
		Status:  status,
		Message: err.Error(),
	}); tErr != nil {
		slog.ErrorContext(r.Context(), "Failed to render error template", slog.Any("err", tErr))
	}
}

func errorStatus(err error) int {
	if errors.Is(err, auth.ErrInvalidState) || errors.Is(err, auth.ErrMissingCode) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.WriteHeader(http.StatusNotFound)
	if err := s.templates().ExecuteTemplate(w, "not_found.gohtml", nil); err != nil {
		slog.ErrorContext(ctx, "Failed to render not found template", slog.Any("err", err))
	}
}
