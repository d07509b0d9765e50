package httpx

import (
	"log/slog"
	"net/http"

	"github.com/pressgate/pressgate/internal/errors"
)

// renderFailure maps a service error onto the right page: missing content
// gets the not-found page, an expired session bounces through login, and
// backend trouble renders the error page with an honest status code.
func (h *UIHandlers) renderFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.IsNotFound(err):
		h.NotFound(w, r)
	case errors.IsUnauthorized(err):
		redirectToLogin(w, r)
	case errors.IsTimeout(err):
		h.log().Warn("backend timed out",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		h.renderErrorPage(w, r, http.StatusGatewayTimeout, errors.GetMessage(err))
	case errors.IsUnavailable(err), errors.IsBadGateway(err):
		h.log().Warn("backend unavailable",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		h.renderErrorPage(w, r, http.StatusBadGateway, errors.GetMessage(err))
	default:
		h.log().Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		h.renderErrorPage(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// NotFound renders the 404 page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, "Page not found").Build()
	if err := h.T.Render(w, http.StatusNotFound, "notfound", data); err != nil {
		h.log().Error("render notfound", slog.Any("error", err))
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

func (h *UIHandlers) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := NewTemplateData(r, "Something went wrong").
		With("ErrorMessage", message).
		Build()
	if err := h.T.Render(w, status, "error", data); err != nil {
		h.log().Error("render error page", slog.Any("error", err))
		http.Error(w, message, status)
	}
}
