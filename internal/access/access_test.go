package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gori/mininews/internal/store"
	"github.com/Gori/mininews/internal/store/storetest"
)

func seedNewsletter(t *testing.T, mem *storetest.Memory, id, ownerID string) {
	t.Helper()
	err := mem.CreateNewsletter(context.Background(), &store.Newsletter{
		ID:            id,
		OwnerID:       ownerID,
		Name:          "Digest",
		DriveFolderID: "F1",
		Status:        store.StatusDraft,
		CreatedAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed newsletter: %v", err)
	}
}

func TestResolveUnknownNewsletter(t *testing.T) {
	resolver := NewResolver(storetest.New())

	_, err := resolver.Resolve(context.Background(), "user-1", "nl-missing")
	if !errors.Is(err, ErrNewsletterNotFound) {
		t.Fatalf("expected ErrNewsletterNotFound, got %v", err)
	}
}

func TestResolveOwner(t *testing.T) {
	mem := storetest.New()
	seedNewsletter(t, mem, "nl-1", "owner-1")
	resolver := NewResolver(mem)

	a, err := resolver.Resolve(context.Background(), "owner-1", "nl-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if a.Role != RoleOwner {
		t.Fatalf("expected role owner, got %q", a.Role)
	}
	if !a.IsOwner() {
		t.Fatal("expected IsOwner")
	}
	if a.Newsletter.ID != "nl-1" {
		t.Fatalf("expected newsletter nl-1, got %q", a.Newsletter.ID)
	}
}

// A stale membership row for the owner must not demote them: ownership is
// derived from owner_id and always wins.
func TestResolveOwnerIgnoresStrayMembershipRow(t *testing.T) {
	mem := storetest.New()
	seedNewsletter(t, mem, "nl-1", "owner-1")
	err := mem.CreateMembership(context.Background(), &store.Membership{
		NewsletterID: "nl-1",
		UserID:       "owner-1",
		Role:         string(RoleUser),
	})
	if err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	resolver := NewResolver(mem)

	a, err := resolver.Resolve(context.Background(), "owner-1", "nl-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if a.Role != RoleOwner {
		t.Fatalf("expected role owner despite stray membership row, got %q", a.Role)
	}
}

func TestResolveMember(t *testing.T) {
	mem := storetest.New()
	seedNewsletter(t, mem, "nl-1", "owner-1")
	err := mem.CreateMembership(context.Background(), &store.Membership{
		NewsletterID: "nl-1",
		UserID:       "member-1",
		Role:         string(RoleUser),
	})
	if err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	resolver := NewResolver(mem)

	a, err := resolver.Resolve(context.Background(), "member-1", "nl-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if a.Role != RoleUser {
		t.Fatalf("expected role user, got %q", a.Role)
	}
	if a.IsOwner() {
		t.Fatal("member must not be owner")
	}
}

func TestResolveStrangerDenied(t *testing.T) {
	mem := storetest.New()
	seedNewsletter(t, mem, "nl-1", "owner-1")
	resolver := NewResolver(mem)

	_, err := resolver.Resolve(context.Background(), "stranger", "nl-1")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}
