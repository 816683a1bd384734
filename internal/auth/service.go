package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/api"
	"github.com/blaemedia/alx-project-nexus/internal/models"
	"github.com/blaemedia/alx-project-nexus/internal/session"
	"github.com/go-playground/validator/v10"
)

const (
	msgBadCredentials = "Email or password is incorrect"
	msgNetwork        = "Network error. Please try again."
)

// refreshLeeway refreshes access tokens this long before they expire.
const refreshLeeway = 30 * time.Second

// Backend is the slice of the REST client the auth forms use.
type Backend interface {
	CreateToken(ctx context.Context, creds api.Credentials) (models.TokenPair, error)
	RefreshToken(ctx context.Context, refresh string) (models.TokenPair, error)
	Register(ctx context.Context, reg api.Registration) (*models.User, error)
	Me(ctx context.Context, sess *session.Session) (*models.User, error)
	ResetPassword(ctx context.Context, email string) error
	ResetPasswordConfirm(ctx context.Context, in api.ResetConfirmation) error
}

// FormError is a backend rejection mapped for display: a banner message and
// optional per-field messages. Err is the underlying error.
type FormError struct {
	Message string
	Fields  map[string]string
	Err     error
}

func (e *FormError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "form rejected"
}

func (e *FormError) Unwrap() error { return e.Err }

type Service struct {
	backend  Backend
	validate *validator.Validate
	now      func() time.Time
}

func NewService(b Backend) *Service {
	return &Service{
		backend:  b,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// SignIn exchanges credentials for a token pair. Nothing is stored here; the
// caller persists the pair on success only.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (models.TokenPair, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(s.validate, in); err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.backend.CreateToken(ctx, api.Credentials{Email: in.Email, Password: in.Password})
	if err != nil {
		return models.TokenPair{}, signInError(err)
	}
	if pair.Access == "" {
		return models.TokenPair{}, &FormError{Message: "Sign in failed. Please try again."}
	}
	return pair, nil
}

func signInError(err error) error {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return &FormError{Message: msgNetwork, Err: err}
	}

	fe := &FormError{Fields: map[string]string{}, Err: err}
	for _, f := range []string{"email", "password"} {
		if m := firstOf(apiErr.Fields[f]); m != "" {
			fe.Fields[f] = m
		}
	}
	switch {
	case apiErr.Detail != "":
		fe.Message = msgBadCredentials
	case len(apiErr.NonField) > 0:
		fe.Message = apiErr.NonField[0]
	case len(fe.Fields) == 0:
		fe.Message = fmt.Sprintf("Sign in failed. Status: %d", apiErr.Status)
	}
	return fe
}

// SignUp creates an account. Server-side field errors are passed through as-is.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(s.validate, in); err != nil {
		return err
	}

	_, err := s.backend.Register(ctx, api.Registration{
		Email:      in.Email,
		Password:   in.Password,
		RePassword: in.Confirm,
	})
	if err == nil {
		return nil
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return &FormError{Message: msgNetwork, Err: err}
	}
	fe := &FormError{Fields: map[string]string{}, Err: err}
	for _, name := range apiErr.FieldNames() {
		key := name
		if name == "re_password" {
			key = "confirm"
		}
		fe.Fields[key] = apiErr.Field(name)
	}
	if _, msg, ok := apiErr.First(); ok {
		fe.Message = msg
	} else if len(fe.Fields) == 0 {
		fe.Message = fmt.Sprintf("Registration failed. Status: %d", apiErr.Status)
	}
	return fe
}

// ForgotPassword requests a reset email.
func (s *Service) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(s.validate, in); err != nil {
		return err
	}

	err := s.backend.ResetPassword(ctx, in.Email)
	if err == nil {
		return nil
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return &FormError{Message: msgNetwork, Err: err}
	}
	fe := &FormError{Err: err}
	switch {
	case len(apiErr.Fields["email"]) > 0:
		fe.Message = "Email error: " + apiErr.Fields["email"][0]
	case apiErr.Detail != "":
		fe.Message = apiErr.Detail
	case len(apiErr.NonField) > 0:
		fe.Message = "Error: " + apiErr.NonField[0]
	default:
		fe.Message = fmt.Sprintf("Failed to send reset email. Status: %d", apiErr.Status)
	}
	return fe
}

// ResetPassword consumes the uid and token from a reset link.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.UID = strings.TrimSpace(in.UID)
	in.Token = strings.TrimSpace(in.Token)
	if err := validate(s.validate, in); err != nil {
		return err
	}

	err := s.backend.ResetPasswordConfirm(ctx, api.ResetConfirmation{
		UID:           in.UID,
		Token:         in.Token,
		NewPassword:   in.Password,
		ReNewPassword: in.Confirm,
	})
	if err == nil {
		return nil
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return &FormError{Message: msgNetwork, Err: err}
	}
	fe := &FormError{Err: err}
	switch {
	case len(apiErr.Fields["uid"]) > 0:
		fe.Message = "Invalid user ID: " + apiErr.Fields["uid"][0]
	case len(apiErr.Fields["token"]) > 0:
		fe.Message = "Invalid or expired token: " + apiErr.Fields["token"][0]
	case len(apiErr.Fields["new_password"]) > 0:
		fe.Fields = map[string]string{"password": apiErr.Field("new_password")}
	case apiErr.Detail != "":
		fe.Message = apiErr.Detail
	case len(apiErr.NonField) > 0:
		fe.Message = apiErr.NonField[0]
	default:
		fe.Message = strings.TrimSpace(fmt.Sprintf("Server error: %d %s", apiErr.Status, http.StatusText(apiErr.Status)))
	}
	return fe
}

// Profile loads the signed-in user.
func (s *Service) Profile(ctx context.Context, sess *session.Session) (*models.User, error) {
	if !sess.Authenticated() {
		return nil, api.ErrUnauthorized
	}
	return s.backend.Me(ctx, sess)
}

// Refresh renews the access token when it is about to expire. It reports
// whether sess changed; callers persist it then. A rejected refresh comes
// back as api.ErrUnauthorized.
func (s *Service) Refresh(ctx context.Context, sess *session.Session) (bool, error) {
	if !sess.Authenticated() || !sess.AccessExpired(s.now(), refreshLeeway) {
		return false, nil
	}
	if sess.Tokens.Refresh == "" {
		return false, api.ErrUnauthorized
	}

	pair, err := s.backend.RefreshToken(ctx, sess.Tokens.Refresh)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			return false, fmt.Errorf("refresh token: %w", api.ErrUnauthorized)
		}
		return false, fmt.Errorf("refresh token: %w", err)
	}
	if pair.Access == "" {
		return false, fmt.Errorf("refresh token: %w", api.ErrUnauthorized)
	}

	sess.Tokens.Access = pair.Access
	if pair.Refresh != "" {
		sess.Tokens.Refresh = pair.Refresh
	}
	return true, nil
}

func firstOf(msgs []string) string {
	if len(msgs) == 0 {
		return ""
	}
	return msgs[0]
}
