package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	ErrUnauthorized       = errors.New("api: unauthorized")
	ErrNotFound           = errors.New("api: not found")
	ErrBackendUnavailable = errors.New("api: backend unavailable")
	ErrUnexpectedShape    = errors.New("api: unexpected response shape")
)

const (
	FieldDetail   = "detail"
	FieldNonField = "non_field_errors"
)

// Error is a non-2xx backend answer normalized from any of the body shapes
// the backend produces: per-field message arrays, a detail string,
// non_field_errors, or unstructured text.
type Error struct {
	Status   int
	Fields   map[string][]string
	Detail   string
	NonField []string
	Raw      string
}

func (e *Error) Error() string {
	if msg := e.Message(""); msg != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// Is lets callers match on the status sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Field returns the messages for one field joined with a space.
func (e *Error) Field(name string) string {
	return strings.Join(e.Fields[name], " ")
}

// First walks the priority order: the named fields in the order given, then
// detail, then non_field_errors. source names where the message came from.
func (e *Error) First(fields ...string) (source, msg string, ok bool) {
	for _, f := range fields {
		if m := e.Field(f); m != "" {
			return f, m, true
		}
	}
	if e.Detail != "" {
		return FieldDetail, e.Detail, true
	}
	if len(e.NonField) > 0 {
		return FieldNonField, strings.Join(e.NonField, " "), true
	}
	return "", "", false
}

// Message is First without the source, falling back to generic.
func (e *Error) Message(generic string, fields ...string) string {
	if _, msg, ok := e.First(fields...); ok {
		return msg
	}
	return generic
}

// FieldNames lists the fields carrying messages, sorted.
func (e *Error) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Normalize turns an error body into an *Error.
func Normalize(status int, body []byte) *Error {
	e := &Error{Status: status, Fields: map[string][]string{}}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return e
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		var list []string
		if json.Unmarshal(body, &list) == nil {
			e.NonField = list
			return e
		}
		e.Raw = truncate(string(body), 200)
		return e
	}

	for key, raw := range obj {
		msgs := messages(raw)
		if len(msgs) == 0 {
			continue
		}
		switch key {
		case FieldDetail:
			e.Detail = strings.Join(msgs, " ")
		case FieldNonField:
			e.NonField = msgs
		default:
			e.Fields[key] = msgs
		}
	}
	return e
}

// messages flattens a string, a list of strings, or a nested object of either.
func messages(raw json.RawMessage) []string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		var out []string
		for _, item := range list {
			out = append(out, messages(item)...)
		}
		return out
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			out = append(out, messages(obj[k])...)
		}
		return out
	}
	return nil
}

// IsUniqueViolation reports a 400 raised by a unique-together constraint,
// which the cart endpoint answers when a line for the product already exists.
func IsUniqueViolation(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		return false
	}
	check := func(msgs []string) bool {
		for _, m := range msgs {
			if strings.Contains(strings.ToLower(m), "unique") {
				return true
			}
		}
		return false
	}
	if check(apiErr.NonField) {
		return true
	}
	for _, msgs := range apiErr.Fields {
		if check(msgs) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
