package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/rl1809/scoop-shop/internal/core/validation"
)

const msgRegistered = "Registration complete, you can now sign in."

type registerPage struct {
	Name   string
	Email  string
	Errors validation.Errors
}

type loginPage struct {
	Email  string
	Notice string
	Errors validation.Errors
}

type formErrorResponse struct {
	Success bool              `json:"success"`
	Errors  validation.Errors `json:"errors"`
}

func (h *HTTPHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "register", registerPage{})
}

// Register validates the form; nothing is stored. Every submission is
// checked from scratch, so errors from an earlier attempt never linger.
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}

	form := validation.Registration{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm-password"),
	}.Normalize()

	if errs := validation.ValidateRegistration(form); !errs.Valid() {
		h.log.Debug("registration rejected", zap.Int("fields", len(errs)))
		if wantsJSON(r) {
			writeJSON(w, http.StatusUnprocessableEntity, formErrorResponse{Errors: errs})
			return
		}
		h.render(w, http.StatusUnprocessableEntity, "register", registerPage{
			Name:   form.Name,
			Email:  form.Email,
			Errors: errs,
		})
		return
	}

	h.log.Info("registration accepted", zap.String("session_id", SessionID(r.Context())))
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (h *HTTPHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	var page loginPage
	if r.URL.Query().Get("registered") != "" {
		page.Notice = msgRegistered
	}
	h.render(w, http.StatusOK, "login", page)
}

// Login accepts any well-formed credentials; there is no account store.
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}

	form := validation.Login{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}.Normalize()

	if errs := validation.ValidateLogin(form); !errs.Valid() {
		if wantsJSON(r) {
			writeJSON(w, http.StatusUnprocessableEntity, formErrorResponse{Errors: errs})
			return
		}
		h.render(w, http.StatusUnprocessableEntity, "login", loginPage{Email: form.Email, Errors: errs})
		return
	}

	h.log.Info("login accepted", zap.String("session_id", SessionID(r.Context())))
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}
