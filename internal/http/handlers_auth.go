package httpx

import (
	"log/slog"
	"net/http"

	"github.com/pressgate/pressgate/internal/domain/model"
	"github.com/pressgate/pressgate/internal/errors"
	"github.com/pressgate/pressgate/internal/gateway"
)

// LoginPage renders the login form. A token is brokered up front so the
// form can be submitted on first visit.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	sess := h.bind(w, r)
	data := NewTemplateData(r, "Sign in").
		With("CSRFToken", h.formToken(w, r, sess)).
		With("RedirectURI", SafeRedirectPath(r.URL.Query().Get("redirect_uri"))).
		Build()
	h.render(w, r, http.StatusOK, "login", data)
}

// Login handles the login form submission.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	in := model.LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	sess := h.bind(w, r)
	_, err := h.Auth.Login(r.Context(), sess, in)
	if err != nil {
		h.renderAuthForm(w, r, sess, authFormState{
			Page:  "login",
			Title: "Sign in",
			Form:  map[string]string{"email": in.Email},
			Err:   err,
		})
		return
	}
	target := SafeRedirectPath(r.PostFormValue("redirect_uri"))
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RegisterPage renders the registration form.
func (h *UIHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	sess := h.bind(w, r)
	data := NewTemplateData(r, "Create account").
		With("CSRFToken", h.formToken(w, r, sess)).
		Build()
	h.render(w, r, http.StatusOK, "register", data)
}

// Register handles the registration form submission. The backend signs the
// new account in, so success lands on the dashboard.
func (h *UIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	in := model.RegisterInput{
		Username:             r.PostFormValue("username"),
		Email:                r.PostFormValue("email"),
		Password:             r.PostFormValue("password"),
		PasswordConfirmation: r.PostFormValue("password_confirmation"),
	}
	sess := h.bind(w, r)
	_, err := h.Auth.Register(r.Context(), sess, in)
	if err != nil {
		h.renderAuthForm(w, r, sess, authFormState{
			Page:  "register",
			Title: "Create account",
			Form:  map[string]string{"username": in.Username, "email": in.Email},
			Err:   err,
		})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout revokes the session and returns to the home page.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	if err := h.Auth.Logout(r.Context(), sess); err != nil {
		// Cookies are gone either way; the home page shows signed out.
		h.log().Warn("backend logout failed", slog.Any("error", err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type authFormState struct {
	Page  string
	Title string
	Form  map[string]string
	Err   error
}

// renderAuthForm re-renders a login or registration form after a rejected
// submission, preserving non-secret input.
func (h *UIHandlers) renderAuthForm(w http.ResponseWriter, r *http.Request, sess *gateway.Session, st authFormState) {
	if ve, ok := gateway.AsValidation(st.Err); ok {
		data := NewTemplateData(r, st.Title).
			With("CSRFToken", h.formToken(w, r, sess)).
			With("Form", st.Form).
			WithFieldErrors(ve.Fields).
			Build()
		h.render(w, r, http.StatusUnprocessableEntity, st.Page, data)
		return
	}
	if errors.IsUnauthorized(st.Err) {
		data := NewTemplateData(r, st.Title).
			With("CSRFToken", h.formToken(w, r, sess)).
			With("Form", st.Form).
			WithError(errors.GetMessage(st.Err)).
			Build()
		h.render(w, r, http.StatusUnauthorized, st.Page, data)
		return
	}
	if errors.IsUnavailable(st.Err) || errors.IsBadGateway(st.Err) || errors.IsTimeout(st.Err) {
		data := NewTemplateData(r, st.Title).
			With("CSRFToken", h.formToken(w, r, sess)).
			With("Form", st.Form).
			WithError(errors.GetMessage(st.Err)).
			Build()
		h.render(w, r, http.StatusBadGateway, st.Page, data)
		return
	}
	h.renderFailure(w, r, st.Err)
}
