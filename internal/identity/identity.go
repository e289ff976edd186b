// Package identity abstracts the identity provider's user directory.
package identity

import (
	"context"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

type UserInfo struct {
	ID    string
	Email string
	Name  string
}

// Directory resolves identities held by the identity provider. The core
// never stores emails or names for users; they are looked up on demand.
type Directory interface {
	// UserByEmail returns the identity registered under email, or
	// ErrUserNotFound.
	UserByEmail(ctx context.Context, email string) (*UserInfo, error)
	// UsersByIDs returns the identities it can find; unknown ids are
	// silently omitted.
	UsersByIDs(ctx context.Context, ids []string) ([]UserInfo, error)
}
