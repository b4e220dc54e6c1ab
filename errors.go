package backoffice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Common errors returned by the session store and API client.
var (
	// ErrInvalidCredentials is returned for authentication failures.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrConnection is returned when the remote API could not be reached.
	ErrConnection = errors.New("connection error")
	// ErrNotAuthenticated is returned by authenticated calls when no
	// session is present.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ErrorKind is the machine-readable classification of a registration
// failure, matching the remote API's "type" field.
type ErrorKind string

const (
	KindEmailExists      ErrorKind = "email_exists"
	KindPasswordMismatch ErrorKind = "password_mismatch"
	KindGeneral          ErrorKind = "general_error"
)

// APIError is a non-2xx response from the remote API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote API error: status %d: %s", e.StatusCode, e.Message)
}

// normalizeRegisterError extracts a human-readable message and an ErrorKind
// from a failed register response body. The remote API answers in one of two
// shapes: a flat object carrying error/message/detail (and optionally type),
// or a per-field validation map like {"password": ["Too short"]}. For the
// map shape, the first field's first message wins.
func normalizeRegisterError(body []byte) (string, ErrorKind) {
	message := "registration failed"
	kind := KindGeneral

	var flat struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(body, &flat); err != nil {
		return message, kind
	}

	switch {
	case flat.Error != "":
		message = flat.Error
	case flat.Message != "":
		message = flat.Message
	case flat.Detail != "":
		message = flat.Detail
	}

	if flat.Type != "" {
		kind = ErrorKind(flat.Type)
	}

	// Field-keyed validation map fallback. Maps in Go are unordered, so the
	// body is walked with a token decoder to honor document order.
	if field, msg, ok := firstFieldError(body); ok {
		message = msg
		if flat.Type == "" {
			kind = inferKindFromField(field)
		}
	}

	return message, kind
}

// firstFieldError scans a JSON object in document order and returns the
// first key whose value is a non-empty array of strings, along with that
// array's first element.
func firstFieldError(body []byte) (field, message string, ok bool) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return "", "", false
	}
	if delim, isDelim := tok.(json.Delim); !isDelim || delim != '{' {
		return "", "", false
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return "", "", false
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return "", "", false
		}

		var messages []string
		if err := json.Unmarshal(raw, &messages); err == nil && len(messages) > 0 {
			return key, messages[0], true
		}
	}
	return "", "", false
}

func inferKindFromField(field string) ErrorKind {
	switch {
	case strings.Contains(field, "email"):
		return KindEmailExists
	case strings.Contains(field, "password"):
		return KindPasswordMismatch
	default:
		return KindGeneral
	}
}

// formatValidationErrors flattens validator errors into a single
// user-facing message.
func formatValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			switch fieldError.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", fieldError.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email address", fieldError.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters long", fieldError.Field(), fieldError.Param()))
			case "eqfield":
				messages = append(messages, fmt.Sprintf("%s must match %s", fieldError.Field(), fieldError.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", fieldError.Field()))
			}
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}
