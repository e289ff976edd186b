// Package access resolves what a user may do with a newsletter.
//
// Ownership is derived from newsletters.owner_id and always wins; a
// membership row for the owner is never consulted and never created.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gori/mininews/internal/store"
)

var (
	ErrNewsletterNotFound = errors.New("newsletter not found")
	ErrNotAuthorized      = errors.New("not authorized")
)

type Role string

const (
	RoleOwner Role = "owner"
	RoleUser  Role = "user"
)

type Store interface {
	GetNewsletterByID(ctx context.Context, id string) (*store.Newsletter, error)
	GetMembership(ctx context.Context, newsletterID, userID string) (*store.Membership, error)
	CreateMembership(ctx context.Context, m *store.Membership) error
	DeleteMembership(ctx context.Context, newsletterID, userID string) error
	ListMemberships(ctx context.Context, newsletterID string) ([]store.Membership, error)
}

// Access is the result of a successful resolution: the newsletter and the
// caller's role on it.
type Access struct {
	Newsletter *store.Newsletter
	UserID     string
	Role       Role
}

func (a *Access) IsOwner() bool {
	return a.Role == RoleOwner
}

type Resolver struct {
	store Store
}

func NewResolver(s Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve loads the newsletter and determines the caller's role. It is a
// pure read and safe for concurrent use.
func (r *Resolver) Resolve(ctx context.Context, userID, newsletterID string) (*Access, error) {
	n, err := r.store.GetNewsletterByID(ctx, newsletterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNewsletterNotFound
		}
		return nil, fmt.Errorf("get newsletter: %w", err)
	}

	if n.OwnerID == userID {
		return &Access{Newsletter: n, UserID: userID, Role: RoleOwner}, nil
	}

	m, err := r.store.GetMembership(ctx, newsletterID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}

	return &Access{Newsletter: n, UserID: userID, Role: Role(m.Role)}, nil
}
