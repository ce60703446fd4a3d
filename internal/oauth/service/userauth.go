package service

import (
	"context"
	"errors"
)

// ErrAuthenticationFailed is returned by a UserAuthenticator when the
// credential does not match a known, enabled account.
var ErrAuthenticationFailed = errors.New("service: authentication failed")

// UserAuthenticator authenticates a resource owner's username/password
// credential. User and account management live outside this system; every
// caller (the login dialog, the password grant) plugs in a concrete
// implementation over whatever user store the deployment uses.
type UserAuthenticator interface {
	// Authenticate verifies username/password and, on success, returns the
	// subject identifier and that subject's own scope (used as the upper
	// bound scope merges are intersected against).
	Authenticate(ctx context.Context, username, password string) (subject string, subjectScope string, err error)
}
