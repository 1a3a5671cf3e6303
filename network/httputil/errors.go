package httputil

import (
	"net/http"
)

// HasStatusCode is an error that carries the HTTP status it should be written with.
type HasStatusCode interface {
	StatusCode() int
}

// DefaultJsonError is the error body written by WriteError.
type DefaultJsonError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// StatusCode returns the error's underlying error code.
func (e *DefaultJsonError) StatusCode() int {
	return e.Code
}

// Error returns the underlying error message.
func (e *DefaultJsonError) Error() string {
	return e.Message
}

// HandleError writes message as a JSON error with the given status code.
func HandleError(w http.ResponseWriter, message string, code int) {
	errJson := &DefaultJsonError{
		Message: message,
		Code:    code,
	}
	WriteError(w, errJson)
}
