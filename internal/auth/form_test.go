package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormState_Lifecycle(t *testing.T) {
	f := NewForm(map[string]string{"email": "a@b.co"})
	assert.Equal(t, Idle, f.Phase)

	assert.NoError(t, f.Submit())
	assert.Equal(t, Submitting, f.Phase)
	assert.ErrorIs(t, f.Submit(), ErrAlreadySubmitting)

	f.Fail(&ValidationError{Fields: map[string]string{"email": "Email is invalid", "password": "Password is required"}})
	assert.Equal(t, Failed, f.Phase)
	assert.Equal(t, "Email is invalid", f.FieldError("email"))
	assert.True(t, f.HasErrors())

	f.Touch("email")
	assert.Equal(t, Idle, f.Phase)
	assert.Empty(t, f.FieldError("email"))
	assert.Equal(t, "Password is required", f.FieldError("password"))

	assert.NoError(t, f.Submit())
	assert.False(t, f.HasErrors())
	f.Succeed("Welcome back")
	assert.Equal(t, Succeeded, f.Phase)
	assert.Equal(t, "success", f.Phase.String())
}

func TestFormState_FailMapsErrorKinds(t *testing.T) {
	f := NewForm(nil)
	f.Fail(&ValidationError{Fields: map[string]string{FieldForm: "Invalid or expired reset link. Please request a new password reset."}})
	assert.Equal(t, "Invalid or expired reset link. Please request a new password reset.", f.Message)
	assert.Empty(t, f.Errors)

	f = NewForm(nil)
	f.Fail(&FormError{Message: "Email or password is incorrect", Fields: map[string]string{"email": "bad"}})
	assert.Equal(t, "Email or password is incorrect", f.Message)
	assert.Equal(t, "bad", f.FieldError("email"))

	f = NewForm(nil)
	f.Fail(errors.New("boom"))
	assert.Equal(t, "Something went wrong. Please try again.", f.Message)
	assert.Equal(t, "error", f.Phase.String())
}
