package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the pousada backend, carrying the
// status code and whatever message the backend supplied.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// NetworkError means the backend was unreachable: no HTTP status was
// ever produced. The web console calls this "status 0".
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err (or its chain) is a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusOf returns the HTTP status of an APIError in err's chain,
// or 0 if there is none.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// IsAuthError reports whether err is a 401 or 403 response.
func IsAuthError(err error) bool {
	s := StatusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}
