// Package contacts owns the subscription lifecycle of newsletter contacts.
//
// Subscription state is derived from the unsubscribes table: a row means
// unsubscribed, no row means subscribed. There is no boolean flag to drift.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Gori/mininews/internal/store"
)

var (
	ErrNewsletterNotFound  = errors.New("newsletter not found")
	ErrContactNotFound     = errors.New("contact not found")
	ErrEmailRequired       = errors.New("email is required")
	ErrContactExists       = errors.New("contact with this email already exists")
	ErrAlreadyUnsubscribed = errors.New("contact is already unsubscribed")
)

type Store interface {
	GetNewsletterByID(ctx context.Context, id string) (*store.Newsletter, error)
	CreateContact(ctx context.Context, c *store.Contact) error
	GetContactByID(ctx context.Context, newsletterID, contactID string) (*store.Contact, error)
	GetContactByEmail(ctx context.Context, newsletterID, email string) (*store.Contact, error)
	DeleteContact(ctx context.Context, contactID string) error
	ListContacts(ctx context.Context, newsletterID string) ([]store.ContactWithStatus, error)
	GetUnsubscribe(ctx context.Context, contactID string) (*store.Unsubscribe, error)
	CreateUnsubscribe(ctx context.Context, u *store.Unsubscribe) error
	DeleteUnsubscribe(ctx context.Context, contactID string) error
}

// OptInResult reports what a public opt-in actually did. Callers must not
// expose the distinction to the subscriber.
type OptInResult int

const (
	OptInCreated OptInResult = iota
	OptInResubscribed
	OptInAlreadySubscribed
)

type Manager struct {
	store Store

	clock func() time.Time
	newID func() string
}

func NewManager(s Store) *Manager {
	return &Manager{
		store: s,
		clock: time.Now,
		newID: uuid.NewString,
	}
}

// Add creates a contact on the authenticated management path. Unlike the
// public opt-in it is not idempotent: an existing (newsletter, email) pair
// is a conflict regardless of its subscription state.
func (m *Manager) Add(ctx context.Context, newsletterID, email string, firstName, lastName *string) (*store.Contact, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	if _, err := m.store.GetContactByEmail(ctx, newsletterID, email); err == nil {
		return nil, ErrContactExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get contact by email: %w", err)
	}

	contact := &store.Contact{
		ID:           m.newID(),
		NewsletterID: newsletterID,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		SubscribedAt: m.clock(),
	}
	if err := m.store.CreateContact(ctx, contact); err != nil {
		// lost a race with a concurrent add or opt-in
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrContactExists
		}
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// Subscribe is the public opt-in. It is idempotent: a missing contact is
// created, an unsubscribed one is resubscribed, a subscribed one is left
// alone, and all three succeed.
func (m *Manager) Subscribe(ctx context.Context, newsletterID, email string, firstName, lastName *string) (OptInResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return 0, ErrEmailRequired
	}

	if _, err := m.store.GetNewsletterByID(ctx, newsletterID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrNewsletterNotFound
		}
		return 0, fmt.Errorf("get newsletter: %w", err)
	}

	existing, err := m.store.GetContactByEmail(ctx, newsletterID, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("get contact by email: %w", err)
	}

	if existing != nil {
		if _, err := m.store.GetUnsubscribe(ctx, existing.ID); err == nil {
			if err := m.store.DeleteUnsubscribe(ctx, existing.ID); err != nil {
				return 0, fmt.Errorf("delete unsubscribe: %w", err)
			}
			return OptInResubscribed, nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("get unsubscribe: %w", err)
		}
		return OptInAlreadySubscribed, nil
	}

	contact := &store.Contact{
		ID:           m.newID(),
		NewsletterID: newsletterID,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		SubscribedAt: m.clock(),
	}
	if err := m.store.CreateContact(ctx, contact); err != nil {
		// a concurrent opt-in for the same email got there first; that is
		// still a success for this caller
		if errors.Is(err, store.ErrAlreadyExists) {
			return OptInAlreadySubscribed, nil
		}
		return 0, fmt.Errorf("create contact: %w", err)
	}
	return OptInCreated, nil
}

// Unsubscribe records an unsubscribe for a contact of the newsletter.
func (m *Manager) Unsubscribe(ctx context.Context, newsletterID, contactID string) error {
	contact, err := m.getContact(ctx, newsletterID, contactID)
	if err != nil {
		return err
	}

	if _, err := m.store.GetUnsubscribe(ctx, contact.ID); err == nil {
		return ErrAlreadyUnsubscribed
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("get unsubscribe: %w", err)
	}

	err = m.store.CreateUnsubscribe(ctx, &store.Unsubscribe{
		ContactID:      contact.ID,
		UnsubscribedAt: m.clock(),
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadyUnsubscribed
		}
		return fmt.Errorf("create unsubscribe: %w", err)
	}
	return nil
}

// Resubscribe clears a contact's unsubscribe state. Resubscribing an
// already-subscribed contact is a silent no-op.
func (m *Manager) Resubscribe(ctx context.Context, newsletterID, contactID string) error {
	contact, err := m.getContact(ctx, newsletterID, contactID)
	if err != nil {
		return err
	}
	if err := m.store.DeleteUnsubscribe(ctx, contact.ID); err != nil {
		return fmt.Errorf("delete unsubscribe: %w", err)
	}
	return nil
}

// Remove hard-deletes a contact; the unsubscribe row goes with it.
func (m *Manager) Remove(ctx context.Context, newsletterID, contactID string) error {
	contact, err := m.getContact(ctx, newsletterID, contactID)
	if err != nil {
		return err
	}
	if err := m.store.DeleteContact(ctx, contact.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrContactNotFound
		}
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

// List returns the newsletter's contacts ordered by email. query, when
// non-empty, filters by case-insensitive substring over email and names at
// read time.
func (m *Manager) List(ctx context.Context, newsletterID, query string) ([]store.ContactWithStatus, error) {
	contacts, err := m.store.ListContacts(ctx, newsletterID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return contacts, nil
	}

	filtered := make([]store.ContactWithStatus, 0, len(contacts))
	for _, c := range contacts {
		if matchesQuery(c, query) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (m *Manager) getContact(ctx context.Context, newsletterID, contactID string) (*store.Contact, error) {
	contact, err := m.store.GetContactByID(ctx, newsletterID, contactID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

func matchesQuery(c store.ContactWithStatus, query string) bool {
	if strings.Contains(strings.ToLower(c.Email), query) {
		return true
	}
	if c.FirstName != nil && strings.Contains(strings.ToLower(*c.FirstName), query) {
		return true
	}
	if c.LastName != nil && strings.Contains(strings.ToLower(*c.LastName), query) {
		return true
	}
	return false
}
