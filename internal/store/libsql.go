package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"
)

type SQLStore struct {
	db *sql.DB
}

// Local sqlite: "file:./data/mininews.db" or ":memory:"
// TursoDB: "libsql://[db-name]-[org].turso.io?authToken=..."
func NewSQLStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// enable foreign keys for SQLite; the unsubscribes cascade depends on it
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		// Ignore error for remote TursoDB (may not support PRAGMA)
		_ = err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// returns the database connection for migrations and tests
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Init(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// --- User operations ---

func (s *SQLStore) CreateUser(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, created_at) VALUES (?, ?)`
	_, err := s.db.ExecContext(ctx, query, user.ID, user.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT id, created_at FROM users WHERE id = ?`
	var user User
	var createdAt string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &user, nil
}

// --- Newsletter operations ---

func (s *SQLStore) CreateNewsletter(ctx context.Context, n *Newsletter) error {
	query := `
		INSERT INTO newsletters (id, owner_id, name, description, drive_folder_id, status, created_at, last_sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID,
		n.OwnerID,
		n.Name,
		n.Description,
		n.DriveFolderID,
		string(n.Status),
		n.CreatedAt.Format(time.RFC3339),
		formatNullableTime(n.LastSentAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert newsletter: %w", err)
	}
	return nil
}

func (s *SQLStore) GetNewsletterByID(ctx context.Context, id string) (*Newsletter, error) {
	query := `
		SELECT id, owner_id, name, description, drive_folder_id, status, created_at, last_sent_at
		FROM newsletters WHERE id = ?
	`
	return s.scanNewsletter(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLStore) UpdateNewsletter(ctx context.Context, n *Newsletter) error {
	query := `
		UPDATE newsletters
		SET name = ?, description = ?, drive_folder_id = ?, status = ?, last_sent_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		n.Name,
		n.Description,
		n.DriveFolderID,
		string(n.Status),
		formatNullableTime(n.LastSentAt),
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("update newsletter: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListNewslettersByOwnerID(ctx context.Context, ownerID string) ([]Newsletter, error) {
	query := `
		SELECT id, owner_id, name, description, drive_folder_id, status, created_at, last_sent_at
		FROM newsletters WHERE owner_id = ? ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query newsletters: %w", err)
	}
	defer rows.Close()

	var newsletters []Newsletter
	for rows.Next() {
		n, err := scanNewsletterFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		newsletters = append(newsletters, *n)
	}
	return newsletters, rows.Err()
}

func (s *SQLStore) ListMemberNewsletters(ctx context.Context, userID string) ([]MemberNewsletter, error) {
	query := `
		SELECT n.id, n.owner_id, n.name, n.description, n.drive_folder_id, n.status, n.created_at, n.last_sent_at, nu.role
		FROM newsletter_users nu
		JOIN newsletters n ON n.id = nu.newsletter_id
		WHERE nu.user_id = ? ORDER BY n.created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query member newsletters: %w", err)
	}
	defer rows.Close()

	var newsletters []MemberNewsletter
	for rows.Next() {
		var mn MemberNewsletter
		var description sql.NullString
		var createdAt string
		var lastSentAt sql.NullString
		err := rows.Scan(
			&mn.ID,
			&mn.OwnerID,
			&mn.Name,
			&description,
			&mn.DriveFolderID,
			&mn.Status,
			&createdAt,
			&lastSentAt,
			&mn.Role,
		)
		if err != nil {
			return nil, fmt.Errorf("scan member newsletter: %w", err)
		}
		if description.Valid {
			mn.Description = &description.String
		}
		mn.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		mn.LastSentAt = parseNullableTime(lastSentAt)
		newsletters = append(newsletters, mn)
	}
	return newsletters, rows.Err()
}

func (s *SQLStore) CountNewslettersByOwnerID(ctx context.Context, ownerID string) (int, error) {
	query := `SELECT COUNT(*) FROM newsletters WHERE owner_id = ?`
	var count int
	err := s.db.QueryRowContext(ctx, query, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count newsletters: %w", err)
	}
	return count, nil
}

func (s *SQLStore) scanNewsletter(row *sql.Row) (*Newsletter, error) {
	n, err := scanNewsletterFields(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return n, err
}

func scanNewsletterFields(scan func(dest ...any) error) (*Newsletter, error) {
	var n Newsletter
	var description sql.NullString
	var createdAt string
	var lastSentAt sql.NullString

	err := scan(
		&n.ID,
		&n.OwnerID,
		&n.Name,
		&description,
		&n.DriveFolderID,
		&n.Status,
		&createdAt,
		&lastSentAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan newsletter: %w", err)
	}

	if description.Valid {
		n.Description = &description.String
	}
	n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	n.LastSentAt = parseNullableTime(lastSentAt)
	return &n, nil
}

// --- Membership operations ---

func (s *SQLStore) CreateMembership(ctx context.Context, m *Membership) error {
	query := `INSERT INTO newsletter_users (newsletter_id, user_id, role) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, m.NewsletterID, m.UserID, m.Role)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (s *SQLStore) GetMembership(ctx context.Context, newsletterID, userID string) (*Membership, error) {
	query := `SELECT newsletter_id, user_id, role FROM newsletter_users WHERE newsletter_id = ? AND user_id = ?`
	var m Membership
	err := s.db.QueryRowContext(ctx, query, newsletterID, userID).Scan(&m.NewsletterID, &m.UserID, &m.Role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan membership: %w", err)
	}
	return &m, nil
}

func (s *SQLStore) DeleteMembership(ctx context.Context, newsletterID, userID string) error {
	query := `DELETE FROM newsletter_users WHERE newsletter_id = ? AND user_id = ?`
	result, err := s.db.ExecContext(ctx, query, newsletterID, userID)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListMemberships(ctx context.Context, newsletterID string) ([]Membership, error) {
	query := `SELECT newsletter_id, user_id, role FROM newsletter_users WHERE newsletter_id = ?`
	rows, err := s.db.QueryContext(ctx, query, newsletterID)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	var memberships []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.NewsletterID, &m.UserID, &m.Role); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// --- Contact operations ---

func (s *SQLStore) CreateContact(ctx context.Context, c *Contact) error {
	query := `
		INSERT INTO contacts (id, newsletter_id, email, first_name, last_name, subscribed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.NewsletterID,
		c.Email,
		c.FirstName,
		c.LastName,
		c.SubscribedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (s *SQLStore) GetContactByID(ctx context.Context, newsletterID, contactID string) (*Contact, error) {
	query := `
		SELECT id, newsletter_id, email, first_name, last_name, subscribed_at
		FROM contacts WHERE id = ? AND newsletter_id = ?
	`
	return s.scanContact(s.db.QueryRowContext(ctx, query, contactID, newsletterID))
}

func (s *SQLStore) GetContactByEmail(ctx context.Context, newsletterID, email string) (*Contact, error) {
	query := `
		SELECT id, newsletter_id, email, first_name, last_name, subscribed_at
		FROM contacts WHERE newsletter_id = ? AND email = ?
	`
	return s.scanContact(s.db.QueryRowContext(ctx, query, newsletterID, email))
}

func (s *SQLStore) DeleteContact(ctx context.Context, contactID string) error {
	query := `DELETE FROM contacts WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, contactID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListContacts(ctx context.Context, newsletterID string) ([]ContactWithStatus, error) {
	query := `
		SELECT c.id, c.newsletter_id, c.email, c.first_name, c.last_name, c.subscribed_at, u.unsubscribed_at
		FROM contacts c
		LEFT JOIN unsubscribes u ON u.contact_id = c.id
		WHERE c.newsletter_id = ? ORDER BY c.email ASC
	`
	rows, err := s.db.QueryContext(ctx, query, newsletterID)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []ContactWithStatus
	for rows.Next() {
		var cs ContactWithStatus
		var firstName, lastName sql.NullString
		var subscribedAt string
		var unsubscribedAt sql.NullString
		err := rows.Scan(
			&cs.ID,
			&cs.NewsletterID,
			&cs.Email,
			&firstName,
			&lastName,
			&subscribedAt,
			&unsubscribedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		if firstName.Valid {
			cs.FirstName = &firstName.String
		}
		if lastName.Valid {
			cs.LastName = &lastName.String
		}
		cs.SubscribedAt, _ = time.Parse(time.RFC3339, subscribedAt)
		cs.UnsubscribedAt = parseNullableTime(unsubscribedAt)
		contacts = append(contacts, cs)
	}
	return contacts, rows.Err()
}

func (s *SQLStore) scanContact(row *sql.Row) (*Contact, error) {
	var c Contact
	var firstName, lastName sql.NullString
	var subscribedAt string
	err := row.Scan(
		&c.ID,
		&c.NewsletterID,
		&c.Email,
		&firstName,
		&lastName,
		&subscribedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	if firstName.Valid {
		c.FirstName = &firstName.String
	}
	if lastName.Valid {
		c.LastName = &lastName.String
	}
	c.SubscribedAt, _ = time.Parse(time.RFC3339, subscribedAt)
	return &c, nil
}

// --- Unsubscribe operations ---

func (s *SQLStore) GetUnsubscribe(ctx context.Context, contactID string) (*Unsubscribe, error) {
	query := `SELECT contact_id, unsubscribed_at FROM unsubscribes WHERE contact_id = ?`
	var u Unsubscribe
	var unsubscribedAt string
	err := s.db.QueryRowContext(ctx, query, contactID).Scan(&u.ContactID, &unsubscribedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan unsubscribe: %w", err)
	}
	u.UnsubscribedAt, _ = time.Parse(time.RFC3339, unsubscribedAt)
	return &u, nil
}

func (s *SQLStore) CreateUnsubscribe(ctx context.Context, u *Unsubscribe) error {
	query := `INSERT INTO unsubscribes (contact_id, unsubscribed_at) VALUES (?, ?)`
	_, err := s.db.ExecContext(ctx, query, u.ContactID, u.UnsubscribedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert unsubscribe: %w", err)
	}
	return nil
}

// DeleteUnsubscribe is a no-op when no row exists; resubscribe relies on
// that for idempotency.
func (s *SQLStore) DeleteUnsubscribe(ctx context.Context, contactID string) error {
	query := `DELETE FROM unsubscribes WHERE contact_id = ?`
	_, err := s.db.ExecContext(ctx, query, contactID)
	if err != nil {
		return fmt.Errorf("delete unsubscribe: %w", err)
	}
	return nil
}

// --- helpers ---

func formatNullableTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// isUniqueConstraintError checks if the error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed")
}
