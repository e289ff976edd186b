package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gori/mininews/internal/identity"
	"github.com/Gori/mininews/internal/store"
)

var (
	ErrNotOwner          = errors.New("only the owner can manage members")
	ErrInvalidRole       = errors.New("invalid role")
	ErrUserNotFound      = errors.New("user with this email not found")
	ErrAlreadyOwner      = errors.New("user is the owner of this newsletter")
	ErrAlreadyMember     = errors.New("user is already a member of this newsletter")
	ErrCannotRemoveOwner = errors.New("cannot remove the owner")
	ErrMemberNotFound    = errors.New("member not found")
)

// Member is one row of a newsletter's member listing, hydrated with
// identity details from the directory.
type Member struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Members manages the explicit membership rows of a newsletter. The owner
// never appears in those rows; listings synthesize the owner entry.
type Members struct {
	store     Store
	directory identity.Directory
}

func NewMembers(s Store, d identity.Directory) *Members {
	return &Members{store: s, directory: d}
}

// Invite grants role to the identity registered under email. Only role
// "user" is accepted; the owner's own identity is rejected so an owner
// membership row can never exist.
func (m *Members) Invite(ctx context.Context, a *Access, email, role string) error {
	if !a.IsOwner() {
		return ErrNotOwner
	}
	if Role(role) != RoleUser {
		return ErrInvalidRole
	}

	invited, err := m.directory.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("look up user by email: %w", err)
	}

	if invited.ID == a.Newsletter.OwnerID {
		return ErrAlreadyOwner
	}

	if _, err := m.store.GetMembership(ctx, a.Newsletter.ID, invited.ID); err == nil {
		return ErrAlreadyMember
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("get membership: %w", err)
	}

	err = m.store.CreateMembership(ctx, &store.Membership{
		NewsletterID: a.Newsletter.ID,
		UserID:       invited.ID,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("create membership: %w", err)
	}
	return nil
}

// Remove deletes a membership row. Removal requests naming the owner are
// rejected before any store access.
func (m *Members) Remove(ctx context.Context, a *Access, memberID string) error {
	if !a.IsOwner() {
		return ErrNotOwner
	}
	if memberID == a.Newsletter.OwnerID {
		return ErrCannotRemoveOwner
	}

	if err := m.store.DeleteMembership(ctx, a.Newsletter.ID, memberID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("delete membership: %w", err)
	}
	return nil
}

// List returns the owner (synthesized, first) followed by the explicit
// members, each hydrated with email and name from the directory.
func (m *Members) List(ctx context.Context, a *Access) ([]Member, error) {
	memberships, err := m.store.ListMemberships(ctx, a.Newsletter.ID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	members := make([]Member, 0, len(memberships)+1)
	members = append(members, Member{ID: a.Newsletter.OwnerID, Role: string(RoleOwner)})
	for _, mb := range memberships {
		members = append(members, Member{ID: mb.UserID, Role: mb.Role})
	}

	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.ID)
	}

	infos, err := m.directory.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("look up member identities: %w", err)
	}
	byID := make(map[string]identity.UserInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}

	for i := range members {
		if info, ok := byID[members[i].ID]; ok {
			members[i].Email = info.Email
			members[i].Name = info.Name
		}
	}
	return members, nil
}
