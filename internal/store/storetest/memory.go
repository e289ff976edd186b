// Package storetest provides an in-memory store.Store for package tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Gori/mininews/internal/store"
)

type Memory struct {
	mu           sync.Mutex
	Users        map[string]store.User
	Newsletters  map[string]store.Newsletter
	Memberships  map[string]store.Membership // key: newsletterID + "/" + userID
	Contacts     map[string]store.Contact
	Unsubscribes map[string]store.Unsubscribe // key: contactID
}

func New() *Memory {
	return &Memory{
		Users:        make(map[string]store.User),
		Newsletters:  make(map[string]store.Newsletter),
		Memberships:  make(map[string]store.Membership),
		Contacts:     make(map[string]store.Contact),
		Unsubscribes: make(map[string]store.Unsubscribe),
	}
}

func membershipKey(newsletterID, userID string) string {
	return newsletterID + "/" + userID
}

func (m *Memory) CreateUser(ctx context.Context, u *store.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[u.ID]; ok {
		return store.ErrAlreadyExists
	}
	m.Users[u.ID] = *u
	return nil
}

func (m *Memory) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) CreateNewsletter(ctx context.Context, n *store.Newsletter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Newsletters[n.ID]; ok {
		return store.ErrAlreadyExists
	}
	m.Newsletters[n.ID] = *n
	return nil
}

func (m *Memory) GetNewsletterByID(ctx context.Context, id string) (*store.Newsletter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.Newsletters[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &n, nil
}

func (m *Memory) UpdateNewsletter(ctx context.Context, n *store.Newsletter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Newsletters[n.ID]; !ok {
		return store.ErrNotFound
	}
	m.Newsletters[n.ID] = *n
	return nil
}

func (m *Memory) ListNewslettersByOwnerID(ctx context.Context, ownerID string) ([]store.Newsletter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Newsletter
	for _, n := range m.Newsletters {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListMemberNewsletters(ctx context.Context, userID string) ([]store.MemberNewsletter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.MemberNewsletter
	for _, mb := range m.Memberships {
		if mb.UserID != userID {
			continue
		}
		n, ok := m.Newsletters[mb.NewsletterID]
		if !ok {
			continue
		}
		out = append(out, store.MemberNewsletter{Newsletter: n, Role: mb.Role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CountNewslettersByOwnerID(ctx context.Context, ownerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.Newsletters {
		if n.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (m *Memory) CreateMembership(ctx context.Context, mb *store.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := membershipKey(mb.NewsletterID, mb.UserID)
	if _, ok := m.Memberships[key]; ok {
		return store.ErrAlreadyExists
	}
	m.Memberships[key] = *mb
	return nil
}

func (m *Memory) GetMembership(ctx context.Context, newsletterID, userID string) (*store.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mb, ok := m.Memberships[membershipKey(newsletterID, userID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &mb, nil
}

func (m *Memory) DeleteMembership(ctx context.Context, newsletterID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := membershipKey(newsletterID, userID)
	if _, ok := m.Memberships[key]; !ok {
		return store.ErrNotFound
	}
	delete(m.Memberships, key)
	return nil
}

func (m *Memory) ListMemberships(ctx context.Context, newsletterID string) ([]store.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Membership
	for _, mb := range m.Memberships {
		if mb.NewsletterID == newsletterID {
			out = append(out, mb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *Memory) CreateContact(ctx context.Context, c *store.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Contacts {
		if existing.NewsletterID == c.NewsletterID && existing.Email == c.Email {
			return store.ErrAlreadyExists
		}
	}
	m.Contacts[c.ID] = *c
	return nil
}

func (m *Memory) GetContactByID(ctx context.Context, newsletterID, contactID string) (*store.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Contacts[contactID]
	if !ok || c.NewsletterID != newsletterID {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (m *Memory) GetContactByEmail(ctx context.Context, newsletterID, email string) (*store.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Contacts {
		if c.NewsletterID == newsletterID && c.Email == email {
			c := c
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) DeleteContact(ctx context.Context, contactID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Contacts[contactID]; !ok {
		return store.ErrNotFound
	}
	delete(m.Contacts, contactID)
	// mirrors the ON DELETE CASCADE on unsubscribes
	delete(m.Unsubscribes, contactID)
	return nil
}

func (m *Memory) ListContacts(ctx context.Context, newsletterID string) ([]store.ContactWithStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.ContactWithStatus
	for _, c := range m.Contacts {
		if c.NewsletterID != newsletterID {
			continue
		}
		cs := store.ContactWithStatus{Contact: c}
		if u, ok := m.Unsubscribes[c.ID]; ok {
			t := u.UnsubscribedAt
			cs.UnsubscribedAt = &t
		}
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Email, out[j].Email) < 0
	})
	return out, nil
}

func (m *Memory) GetUnsubscribe(ctx context.Context, contactID string) (*store.Unsubscribe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Unsubscribes[contactID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) CreateUnsubscribe(ctx context.Context, u *store.Unsubscribe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Unsubscribes[u.ContactID]; ok {
		return store.ErrAlreadyExists
	}
	m.Unsubscribes[u.ContactID] = *u
	return nil
}

func (m *Memory) DeleteUnsubscribe(ctx context.Context, contactID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Unsubscribes, contactID)
	return nil
}

func (m *Memory) Init(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
