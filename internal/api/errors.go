package api

import "errors"

// ErrUnauthorized reports that the backend rejected the session token. The
// web layer reacts by clearing the session and forcing a login redirect.
var ErrUnauthorized = errors.New("authentication required")

// APIError carries a backend failure status and message through to the view
// that triggered the call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorMessage extracts the backend's message from err, falling back to a
// generic one for network and parse failures.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
