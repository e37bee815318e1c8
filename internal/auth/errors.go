package auth

import "errors"

// Token-level failures.  All of them mean the caller has to log in again.
var (
	ErrMalformed        = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token has expired")
)

// ErrIdentityNotFound is returned when a valid token names an account that
// no longer exists.
var ErrIdentityNotFound = errors.New("identity not found")

// ErrAuthenticationFailed hides any unexpected fault during resolution.
var ErrAuthenticationFailed = errors.New("authentication failed")
