package apierror

import "fmt"

// APIError is a domain failure that maps directly onto an HTTP response.
// Only the message crosses the wire; the status code stays server-side.
type APIError struct {
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	return fmt.Sprintf("%d: %s", e.HTTPStatus, e.Message)
}

func New(status int, message string) *APIError {
	return &APIError{Message: message, HTTPStatus: status}
}
