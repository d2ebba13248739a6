package sunweg

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication is returned when SunWEG answers 401.
	ErrAuthentication = errors.New("authentication failed")
	ErrMissingField   = errors.New("missing field")
)

// APIError is any non-200 response, or a 200 whose success flag is false.
// Message holds the vendor message or the HTTP status line.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}
