// Package apperr defines the domain error set shared by services and
// handlers, plus the single mapping from errors to HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrDuplicateStoreEmail = errors.New("a store with this email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrStoreNotFound       = errors.New("store not found")
	ErrRatingNotFound      = errors.New("rating not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRole         = errors.New("invalid role")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("insufficient permissions")
	ErrLastAdmin           = errors.New("cannot delete the last admin user")
	ErrUserOwnsStore       = errors.New("cannot delete user who owns a store, delete their store first")
	ErrSelfDelete          = errors.New("cannot delete your own account")
	ErrNotAnOwner          = errors.New("selected user is not an owner")
	ErrOwnerHasStore       = errors.New("owner already has a store")
)

func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrStoreNotFound),
		errors.Is(err, ErrRatingNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrDuplicateStoreEmail),
		errors.Is(err, ErrLastAdmin),
		errors.Is(err, ErrUserOwnsStore),
		errors.Is(err, ErrOwnerHasStore):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidResetToken),
		errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrSelfDelete),
		errors.Is(err, ErrNotAnOwner):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsDomain reports whether err is one of the domain errors above, meaning
// its message is safe to return to the client. Anything else is surfaced
// as a generic 500.
func IsDomain(err error) bool {
	return StatusCode(err) != http.StatusInternalServerError
}
