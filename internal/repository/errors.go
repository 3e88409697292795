// Sentinel errors reused across every store implementation. They let the
// service layer tell failures apart without knowing which backend is in
// use. Implementations wrap them with %w when adding context, so
// callers compare with errors.Is.

package repository

import "errors"

// ErrEmailExists is returned by UserRepository.Create when another user
// already registered the email.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches an id or email.
var ErrUserNotFound = errors.New("user not found")

// ErrSwapNotFound is returned when a swap does not exist or the acting
// user is not allowed to touch it.
var ErrSwapNotFound = errors.New("swap request not found")

// ErrSessionInvalid is returned for unknown, expired or revoked refresh tokens.
var ErrSessionInvalid = errors.New("session invalid")

