// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios. For example,
// ErrForbidden indicates that the current user is not authorized to act on
// a resource owned by someone else, while ErrDuplicateReview signals that
// the unique (user, shop) review constraint was hit.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicateReview is returned when a user already reviewed the shop.
// Handlers should translate this into an HTTP 409 response.
var ErrDuplicateReview = errors.New("already reviewed")

// ErrEmailExists is returned when a signup collides with an existing
// email or username.
var ErrEmailExists = errors.New("email or username already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
