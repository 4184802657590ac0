package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrEmailNotFound is returned when a login email is not registered.
	ErrEmailNotFound = errors.New("email is not in use yet")
	// ErrInvalidCredentials is returned on a password mismatch.
	ErrInvalidCredentials = errors.New("wrong password or email")
	// ErrInvalidRefreshToken is returned when a refresh token is missing,
	// fails verification, or does not match the stored session.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrSessionNotFound is returned when logout finds no matching session.
	ErrSessionNotFound = errors.New("refresh token not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already exists")
	// ErrPhoneTaken is returned when a phone number is already registered.
	ErrPhoneTaken = errors.New("phone number already exists")
	// ErrUserNotFound is returned when a user id does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden is returned when the caller's role does not allow the operation.
	ErrForbidden = errors.New("admin role required")
)

// MapError translates a domain error into the HTTP status it is reported with.
// Unknown errors map to 500; the caller is expected to log them and must not
// expose their detail to the client.
func MapError(err error) int {
	switch {
	case errors.Is(err, ErrEmailNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidRefreshToken),
		errors.Is(err, ErrEmailTaken), errors.Is(err, ErrPhoneTaken):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
