package contacts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Gori/mininews/internal/store"
	"github.com/Gori/mininews/internal/store/storetest"
)

var fixedTime = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) (*Manager, *storetest.Memory) {
	t.Helper()
	mem := storetest.New()
	err := mem.CreateNewsletter(context.Background(), &store.Newsletter{
		ID:            "nl-1",
		OwnerID:       "owner-1",
		Name:          "Digest",
		DriveFolderID: "F1",
		Status:        store.StatusDraft,
		CreatedAt:     fixedTime,
	})
	if err != nil {
		t.Fatalf("seed newsletter: %v", err)
	}

	seq := 0
	m := &Manager{
		store: mem,
		clock: func() time.Time { return fixedTime },
		newID: func() string {
			seq++
			return fmt.Sprintf("contact-%d", seq)
		},
	}
	return m, mem
}

func TestAddContact(t *testing.T) {
	m, mem := newFixture(t)

	contact, err := m.Add(context.Background(), "nl-1", "a@x.com", nil, nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if contact.ID != "contact-1" {
		t.Fatalf("expected id contact-1, got %q", contact.ID)
	}
	if !contact.SubscribedAt.Equal(fixedTime) {
		t.Fatalf("expected subscribed_at %v, got %v", fixedTime, contact.SubscribedAt)
	}
	if _, err := mem.GetUnsubscribe(context.Background(), contact.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("new contact must start subscribed")
	}
}

func TestAddContactRequiresEmail(t *testing.T) {
	m, _ := newFixture(t)

	if _, err := m.Add(context.Background(), "nl-1", "   ", nil, nil); !errors.Is(err, ErrEmailRequired) {
		t.Fatalf("expected ErrEmailRequired, got %v", err)
	}
}

// The management add path is never idempotent: a duplicate email is a
// conflict even when the existing contact is unsubscribed.
func TestAddDuplicateContactConflicts(t *testing.T) {
	m, _ := newFixture(t)

	if _, err := m.Add(context.Background(), "nl-1", "a@x.com", nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := m.Add(context.Background(), "nl-1", "a@x.com", nil, nil); !errors.Is(err, ErrContactExists) {
		t.Fatalf("expected ErrContactExists, got %v", err)
	}

	if err := m.Unsubscribe(context.Background(), "nl-1", "contact-1"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if _, err := m.Add(context.Background(), "nl-1", "a@x.com", nil, nil); !errors.Is(err, ErrContactExists) {
		t.Fatalf("expected ErrContactExists for unsubscribed contact, got %v", err)
	}
}

func TestSubscribeUnknownNewsletter(t *testing.T) {
	m, _ := newFixture(t)

	if _, err := m.Subscribe(context.Background(), "nl-missing", "a@x.com", nil, nil); !errors.Is(err, ErrNewsletterNotFound) {
		t.Fatalf("expected ErrNewsletterNotFound, got %v", err)
	}
}

func TestSubscribeIsIdempotent(t *testing.T) {
	m, mem := newFixture(t)

	result, err := m.Subscribe(context.Background(), "nl-1", "a@x.com", nil, nil)
	if err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	if result != OptInCreated {
		t.Fatalf("expected OptInCreated, got %v", result)
	}

	result, err = m.Subscribe(context.Background(), "nl-1", "a@x.com", nil, nil)
	if err != nil {
		t.Fatalf("second subscribe: %v", err)
	}
	if result != OptInAlreadySubscribed {
		t.Fatalf("expected OptInAlreadySubscribed, got %v", result)
	}

	if len(mem.Contacts) != 1 {
		t.Fatalf("expected exactly one contact row, got %d", len(mem.Contacts))
	}
}

func TestSubscribeResubscribesUnsubscribedContact(t *testing.T) {
	m, mem := newFixture(t)

	if _, err := m.Subscribe(context.Background(), "nl-1", "a@x.com", nil, nil); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := m.Unsubscribe(context.Background(), "nl-1", "contact-1"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}

	result, err := m.Subscribe(context.Background(), "nl-1", "a@x.com", nil, nil)
	if err != nil {
		t.Fatalf("resubscribe via opt-in: %v", err)
	}
	if result != OptInResubscribed {
		t.Fatalf("expected OptInResubscribed, got %v", result)
	}
	if _, err := mem.GetUnsubscribe(context.Background(), "contact-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("unsubscribe row should be gone")
	}
	if len(mem.Contacts) != 1 {
		t.Fatalf("expected exactly one contact row, got %d", len(mem.Contacts))
	}
}

func TestUnsubscribeTwiceConflicts(t *testing.T) {
	m, _ := newFixture(t)

	if _, err := m.Add(context.Background(), "nl-1", "a@x.com", nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Unsubscribe(context.Background(), "nl-1", "contact-1"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := m.Unsubscribe(context.Background(), "nl-1", "contact-1"); !errors.Is(err, ErrAlreadyUnsubscribed) {
		t.Fatalf("expected ErrAlreadyUnsubscribed, got %v", err)
	}
}

func TestUnsubscribeUnknownContact(t *testing.T) {
	m, _ := newFixture(t)

	if err := m.Unsubscribe(context.Background(), "nl-1", "ghost"); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	m, mem := newFixture(t)

	if _, err := m.Add(context.Background(), "nl-1", "a@x.com", nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Unsubscribe(context.Background(), "nl-1", "contact-1"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := m.Resubscribe(context.Background(), "nl-1", "contact-1"); err != nil {
		t.Fatalf("resubscribe: %v", err)
	}

	list, err := m.List(context.Background(), "nl-1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one contact, got %d", len(list))
	}
	if list[0].UnsubscribedAt != nil {
		t.Fatal("expected contact to be subscribed after round trip")
	}
	if _, err := mem.GetUnsubscribe(context.Background(), "contact-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("no unsubscribe row may remain")
	}
}

// Resubscribing a contact that is already subscribed is a silent no-op.
func TestResubscribeSubscribedContactIsNoOp(t *testing.T) {
	m, _ := newFixture(t)

	if _, err := m.Add(context.Background(), "nl-1", "a@x.com", nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Resubscribe(context.Background(), "nl-1", "contact-1"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestRemoveContactRemovesUnsubscribeRow(t *testing.T) {
	m, mem := newFixture(t)

	if _, err := m.Add(context.Background(), "nl-1", "a@x.com", nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Unsubscribe(context.Background(), "nl-1", "contact-1"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := m.Remove(context.Background(), "nl-1", "contact-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if len(mem.Contacts) != 0 {
		t.Fatalf("expected no contacts, got %d", len(mem.Contacts))
	}
	if len(mem.Unsubscribes) != 0 {
		t.Fatalf("expected no unsubscribe rows, got %d", len(mem.Unsubscribes))
	}
}

func TestRemoveContactFromOtherNewsletter(t *testing.T) {
	m, mem := newFixture(t)

	err := mem.CreateNewsletter(context.Background(), &store.Newsletter{
		ID:            "nl-2",
		OwnerID:       "owner-2",
		Name:          "Other",
		DriveFolderID: "F2",
		Status:        store.StatusDraft,
		CreatedAt:     fixedTime,
	})
	if err != nil {
		t.Fatalf("seed newsletter: %v", err)
	}
	if _, err := m.Add(context.Background(), "nl-1", "a@x.com", nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := m.Remove(context.Background(), "nl-2", "contact-1"); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound across newsletters, got %v", err)
	}
}

func TestListOrdersByEmailAndFilters(t *testing.T) {
	m, _ := newFixture(t)

	first := "Zoe"
	if _, err := m.Add(context.Background(), "nl-1", "c@x.com", &first, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := m.Add(context.Background(), "nl-1", "a@x.com", nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := m.Add(context.Background(), "nl-1", "b@x.com", nil, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	list, err := m.List(context.Background(), "nl-1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 contacts, got %d", len(list))
	}
	for i, want := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if list[i].Email != want {
			t.Fatalf("expected %q at index %d, got %q", want, i, list[i].Email)
		}
	}

	filtered, err := m.List(context.Background(), "nl-1", "ZOE")
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Email != "c@x.com" {
		t.Fatalf("expected only c@x.com for query ZOE, got %+v", filtered)
	}
}

// Full opt-in lifecycle: visitor subscribes, subscribes again, is
// unsubscribed by the owner, then opts in a third time.
func TestPublicOptInScenario(t *testing.T) {
	m, mem := newFixture(t)

	result, err := m.Subscribe(context.Background(), "nl-1", "a@x.com", nil, nil)
	if err != nil || result != OptInCreated {
		t.Fatalf("first opt-in: result=%v err=%v", result, err)
	}

	result, err = m.Subscribe(context.Background(), "nl-1", "a@x.com", nil, nil)
	if err != nil || result != OptInAlreadySubscribed {
		t.Fatalf("second opt-in: result=%v err=%v", result, err)
	}
	if len(mem.Contacts) != 1 {
		t.Fatalf("expected one contact row, got %d", len(mem.Contacts))
	}

	if err := m.Unsubscribe(context.Background(), "nl-1", "contact-1"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	list, _ := m.List(context.Background(), "nl-1", "")
	if list[0].UnsubscribedAt == nil {
		t.Fatal("expected unsubscribed state")
	}

	result, err = m.Subscribe(context.Background(), "nl-1", "a@x.com", nil, nil)
	if err != nil || result != OptInResubscribed {
		t.Fatalf("third opt-in: result=%v err=%v", result, err)
	}
	list, _ = m.List(context.Background(), "nl-1", "")
	if list[0].UnsubscribedAt != nil {
		t.Fatal("expected subscribed state after third opt-in")
	}
}
