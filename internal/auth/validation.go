package auth

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldForm holds errors that belong to the form rather than one field.
const FieldForm = "form"

const (
	MsgInvalidResetLink = "Invalid or expired reset link. Please request a new password reset."
	msgPasswordTooShort = "Password must be at least 8 characters long."
	msgPasswordMismatch = "Passwords do not match."
)

type SignInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type SignUpInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Confirm  string `validate:"eqfield=Password"`
}

type ForgotPasswordInput struct {
	Email string `validate:"required,email"`
}

type ResetPasswordInput struct {
	UID      string `validate:"required"`
	Token    string `validate:"required"`
	Password string `validate:"required,min=8"`
	Confirm  string `validate:"eqfield=Password"`
}

// ValidationError carries per-field messages from local checks. Nothing was
// sent to the backend.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var fieldNames = map[string]string{
	"Email":    "email",
	"Password": "password",
	"Confirm":  "confirm",
	"UID":      "uid",
	"Token":    "token",
}

// validate runs the struct tags and maps failures to user-facing messages.
func validate(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := map[string]string{}
	for _, fe := range verrs {
		name := fieldNames[fe.Field()]
		if name == "" {
			name = strings.ToLower(fe.Field())
		}
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = message(fe)
	}

	// A reset link without uid or token is unusable whatever the passwords say.
	if fields["uid"] != "" || fields["token"] != "" {
		return &ValidationError{Fields: map[string]string{FieldForm: MsgInvalidResetLink}}
	}
	return &ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "Email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Email is invalid"
	case "Password":
		if fe.Tag() == "required" {
			return "Password is required"
		}
		return msgPasswordTooShort
	case "Confirm":
		return msgPasswordMismatch
	}
	return fe.Error()
}
