package shared

import "errors"

var (
	// ErrInvalidCredentials is returned when the API rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrBackendUnavailable is returned when the API cannot be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrCSRFTokenMissing occurs when a CSRF token is missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
