package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned after a 401/403. By then the session has been
// cleared and the unauthorized hook has fired.
var ErrUnauthorized = errors.New("session expired")

// FieldError is one entry of a 422 payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError covers both client-side checks made before a request is
// sent and 422 responses. Only the first field error is shown to users.
type ValidationError struct {
	Fields []FieldError
}

// Invalid builds a client-side ValidationError.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Message
}

// ConflictError is a domain rejection such as a duplicate review or an
// insufficient balance.
type ConflictError struct {
	Status  int
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Error is any other non-2xx answer.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("areahood api: status %d", e.Status)
	}
	return fmt.Sprintf("areahood api: status %d: %s", e.Status, e.Message)
}

type errorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Errors  []struct {
		Field   string `json:"field"`
		Param   string `json:"param"`
		Path    string `json:"path"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	} `json:"errors"`
}

// decodeError turns a non-2xx body into the error taxonomy. 401/403 are
// handled by the caller because they carry side effects.
func decodeError(status int, body []byte) error {
	var p errorPayload
	_ = json.Unmarshal(body, &p)

	message := p.Message
	if message == "" {
		message = p.Error
	}
	if message == "" && len(body) > 0 && body[0] != '{' {
		message = strings.TrimSpace(string(body))
	}

	switch status {
	case http.StatusUnprocessableEntity:
		verr := &ValidationError{}
		for _, fe := range p.Errors {
			verr.Fields = append(verr.Fields, FieldError{
				Field:   firstNonEmpty(fe.Field, fe.Path, fe.Param),
				Message: firstNonEmpty(fe.Message, fe.Msg),
			})
		}
		if len(verr.Fields) == 0 {
			verr.Fields = []FieldError{{Message: firstNonEmpty(message, "Please check the form and try again")}}
		}
		return verr
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict:
		return &ConflictError{Status: status, Message: firstNonEmpty(message, http.StatusText(status))}
	default:
		return &Error{Status: status, Message: message}
	}
}

// UserMessage renders any error from this package as one line fit for a chat
// notification.
func UserMessage(err error) string {
	var (
		verr *ValidationError
		cerr *ConflictError
		aerr *Error
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.As(err, &cerr):
		return cerr.Message
	case errors.As(err, &aerr):
		if aerr.Message != "" && aerr.Status < 500 {
			return aerr.Message
		}
		return "Something went wrong on our side. Please try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond. Please try again."
	default:
		return "Network error. Please try again."
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
