package handlers

import (
	"net/http"
	"strings"

	"github.com/blaemedia/alx-project-nexus/internal/auth"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"go.uber.org/zap"
)

type AuthHandler struct {
	*Pages
	Auth *auth.Service
}

// formPage renders a form page. Failed submissions answer 422 so the page
// still shows but clients can tell.
func (h *AuthHandler) formPage(w http.ResponseWriter, r *http.Request, name string, form *auth.FormState) {
	status := http.StatusOK
	if form.Phase == auth.Failed {
		status = http.StatusUnprocessableEntity
	}
	h.render(w, r, status, name, map[string]interface{}{"Form": form})
}

func (h *AuthHandler) SignInForm(w http.ResponseWriter, r *http.Request) {
	if CurrentSession(r).Authenticated() {
		http.Redirect(w, r, "/account", http.StatusSeeOther)
		return
	}
	h.formPage(w, r, "signin.html", auth.NewForm(nil))
}

// SignIn stores the token pair only once the backend accepted the credentials.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	form := auth.NewForm(map[string]string{"email": r.FormValue("email")})
	_ = form.Submit()

	pair, err := h.Auth.SignIn(r.Context(), auth.SignInInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	})
	if err != nil {
		logger.Info(r.Context(), "Sign in rejected", zap.Error(err))
		form.Fail(err)
		h.formPage(w, r, "signin.html", form)
		return
	}

	if _, err := h.Sessions.Login(w, r, pair); err != nil {
		logger.Error(r.Context(), "Failed to store session", err)
		form.Fail(err)
		h.formPage(w, r, "signin.html", form)
		return
	}
	h.redirect(w, r, "/account", "success", "Welcome back!")
}

func (h *AuthHandler) SignUpForm(w http.ResponseWriter, r *http.Request) {
	h.formPage(w, r, "signup.html", auth.NewForm(nil))
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	form := auth.NewForm(map[string]string{"email": r.FormValue("email")})
	_ = form.Submit()

	err := h.Auth.SignUp(r.Context(), auth.SignUpInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm"),
	})
	if err != nil {
		form.Fail(err)
		h.formPage(w, r, "signup.html", form)
		return
	}
	h.redirect(w, r, "/signin", "success", "Sign up successful! Please sign in.")
}

func (h *AuthHandler) ForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	h.formPage(w, r, "forgot_password.html", auth.NewForm(nil))
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	form := auth.NewForm(map[string]string{"email": r.FormValue("email")})
	_ = form.Submit()

	err := h.Auth.ForgotPassword(r.Context(), auth.ForgotPasswordInput{Email: r.FormValue("email")})
	if err != nil {
		form.Fail(err)
	} else {
		form.Succeed("Check your email for a link to reset your password.")
	}
	h.formPage(w, r, "forgot_password.html", form)
}

func resetValues(r *http.Request) map[string]string {
	return map[string]string{
		"uid":   strings.TrimSpace(r.FormValue("uid")),
		"token": strings.TrimSpace(r.FormValue("token")),
	}
}

// ResetPasswordForm is the page a reset email links to. A link without uid
// or token is flagged before anything is typed.
func (h *AuthHandler) ResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	form := auth.NewForm(resetValues(r))
	if form.Value("uid") == "" || form.Value("token") == "" {
		form.Message = auth.MsgInvalidResetLink
	}
	h.render(w, r, http.StatusOK, "reset_password.html", map[string]interface{}{"Form": form})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	form := auth.NewForm(resetValues(r))
	_ = form.Submit()

	err := h.Auth.ResetPassword(r.Context(), auth.ResetPasswordInput{
		UID:      form.Value("uid"),
		Token:    form.Value("token"),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm"),
	})
	if err != nil {
		form.Fail(err)
		h.formPage(w, r, "reset_password.html", form)
		return
	}
	h.redirect(w, r, "/signin", "success", "Your password has been reset successfully.")
}

func (h *AuthHandler) Account(w http.ResponseWriter, r *http.Request) {
	sess := CurrentSession(r)
	if !sess.Authenticated() {
		h.redirect(w, r, "/signin", "error", "Please login to view your account")
		return
	}

	user, err := h.Auth.Profile(r.Context(), sess)
	if h.unauthorized(w, r, err) {
		return
	}
	if err != nil {
		logger.Error(r.Context(), "Failed to load profile", err)
		http.Error(w, "Failed to load your account. Please try again.", http.StatusBadGateway)
		return
	}
	h.render(w, r, http.StatusOK, "account.html", map[string]interface{}{"User": user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Purge(w, r, CurrentSession(r)); err != nil {
		logger.Error(r.Context(), "Failed to purge session on logout", err)
	}
	h.redirect(w, r, "/", "success", "Logged out successfully!")
}
