package auth

import (
	"errors"
)

type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

var ErrAlreadySubmitting = errors.New("form is already submitting")

// FormState tracks one form: idle -> submitting -> success|error -> idle.
type FormState struct {
	Phase   Phase
	Values  map[string]string
	Errors  map[string]string
	Message string
	Success string
}

func NewForm(values map[string]string) *FormState {
	if values == nil {
		values = map[string]string{}
	}
	return &FormState{Values: values, Errors: map[string]string{}}
}

// Submit moves the form to submitting and clears earlier outcomes.
func (f *FormState) Submit() error {
	if f.Phase == Submitting {
		return ErrAlreadySubmitting
	}
	f.Phase = Submitting
	f.Errors = map[string]string{}
	f.Message = ""
	f.Success = ""
	return nil
}

func (f *FormState) Succeed(msg string) {
	f.Phase = Succeeded
	f.Success = msg
}

// Fail records err: field messages from validation or backend errors, and a
// banner message for everything else.
func (f *FormState) Fail(err error) {
	f.Phase = Failed
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}

	var verr *ValidationError
	var ferr *FormError
	switch {
	case errors.As(err, &verr):
		for k, v := range verr.Fields {
			if k == FieldForm {
				f.Message = v
				continue
			}
			f.Errors[k] = v
		}
	case errors.As(err, &ferr):
		for k, v := range ferr.Fields {
			f.Errors[k] = v
		}
		f.Message = ferr.Message
	case err != nil:
		f.Message = "Something went wrong. Please try again."
	}
}

// Touch clears the error of an edited field and returns the form to idle.
// Errors on other fields stay.
func (f *FormState) Touch(field string) {
	delete(f.Errors, field)
	if f.Phase != Submitting {
		f.Phase = Idle
	}
}

// Value is a template helper.
func (f *FormState) Value(field string) string {
	return f.Values[field]
}

func (f *FormState) FieldError(field string) string {
	return f.Errors[field]
}

func (f *FormState) HasErrors() bool {
	return len(f.Errors) > 0 || f.Message != ""
}
