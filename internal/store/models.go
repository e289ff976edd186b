package store

import "time"

type NewsletterStatus string

const (
	StatusDraft     NewsletterStatus = "draft"
	StatusScheduled NewsletterStatus = "scheduled"
	StatusSent      NewsletterStatus = "sent"
)

// User rows are keyed by the identity provider's subject id; everything
// else about the user (email, name) lives with the provider.
type User struct {
	ID        string
	CreatedAt time.Time
}

type Newsletter struct {
	ID            string
	OwnerID       string
	Name          string
	Description   *string
	DriveFolderID string
	Status        NewsletterStatus
	CreatedAt     time.Time
	LastSentAt    *time.Time
}

// Membership grants a non-owner access to a newsletter. Ownership is
// derived from Newsletter.OwnerID and is never stored as a membership row.
type Membership struct {
	NewsletterID string
	UserID       string
	Role         string
}

type Contact struct {
	ID           string
	NewsletterID string
	Email        string
	FirstName    *string
	LastName     *string
	SubscribedAt time.Time
}

// ContactWithStatus pairs a contact with its unsubscribe timestamp; a nil
// UnsubscribedAt means the contact is subscribed.
type ContactWithStatus struct {
	Contact
	UnsubscribedAt *time.Time
}

type Unsubscribe struct {
	ContactID      string
	UnsubscribedAt time.Time
}

// MemberNewsletter is a newsletter reached through a membership row,
// tagged with the membership role.
type MemberNewsletter struct {
	Newsletter
	Role string
}
