package backend

import (
	"errors"
	"fmt"
)

// FallbackMessage is used when a failed response carries no usable error field.
const FallbackMessage = "Gagal mengambil data"

var (
	// ErrUnauthorized is returned for 401 responses. The caller's credential is no longer valid.
	ErrUnauthorized = errors.New("backend: unauthorized")
	// ErrBackendUnavailable is returned without calling the backend while the circuit is open.
	ErrBackendUnavailable = errors.New("backend: unavailable")
)

// APIError is a non-2xx, non-401 response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: status %d: %s", e.StatusCode, e.Message)
}

// UserMessage is the backend's own message, shown to the operator verbatim.
func (e *APIError) UserMessage() string {
	return e.Message
}
