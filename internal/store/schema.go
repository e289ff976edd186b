package store

// Schema bootstrap for both backends. send_queue, send_log and open_events
// are reserved for the send pipeline and are not touched by any query yet.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS newsletters (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		description TEXT,
		drive_folder_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TEXT NOT NULL,
		last_sent_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS newsletter_users (
		newsletter_id TEXT NOT NULL REFERENCES newsletters(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		role TEXT NOT NULL,
		PRIMARY KEY (newsletter_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		newsletter_id TEXT NOT NULL REFERENCES newsletters(id) ON DELETE CASCADE,
		email TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		subscribed_at TEXT NOT NULL,
		UNIQUE (newsletter_id, email)
	)`,
	`CREATE TABLE IF NOT EXISTS unsubscribes (
		contact_id TEXT PRIMARY KEY REFERENCES contacts(id) ON DELETE CASCADE,
		unsubscribed_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS send_queue (
		id TEXT PRIMARY KEY,
		newsletter_id TEXT NOT NULL REFERENCES newsletters(id) ON DELETE CASCADE,
		doc_id TEXT NOT NULL,
		scheduled_for TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS send_log (
		id TEXT PRIMARY KEY,
		queue_id TEXT NOT NULL REFERENCES send_queue(id) ON DELETE CASCADE,
		contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
		status TEXT NOT NULL,
		sent_at TEXT,
		error_message TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS open_events (
		id TEXT PRIMARY KEY,
		send_log_id TEXT NOT NULL REFERENCES send_log(id) ON DELETE CASCADE,
		opened_at TEXT NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS newsletters (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		description TEXT,
		drive_folder_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMPTZ NOT NULL,
		last_sent_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS newsletter_users (
		newsletter_id TEXT NOT NULL REFERENCES newsletters(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		role TEXT NOT NULL,
		PRIMARY KEY (newsletter_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		newsletter_id TEXT NOT NULL REFERENCES newsletters(id) ON DELETE CASCADE,
		email TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		subscribed_at TIMESTAMPTZ NOT NULL,
		UNIQUE (newsletter_id, email)
	)`,
	`CREATE TABLE IF NOT EXISTS unsubscribes (
		contact_id TEXT PRIMARY KEY REFERENCES contacts(id) ON DELETE CASCADE,
		unsubscribed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS send_queue (
		id TEXT PRIMARY KEY,
		newsletter_id TEXT NOT NULL REFERENCES newsletters(id) ON DELETE CASCADE,
		doc_id TEXT NOT NULL,
		scheduled_for TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS send_log (
		id TEXT PRIMARY KEY,
		queue_id TEXT NOT NULL REFERENCES send_queue(id) ON DELETE CASCADE,
		contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
		status TEXT NOT NULL,
		sent_at TIMESTAMPTZ,
		error_message TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS open_events (
		id TEXT PRIMARY KEY,
		send_log_id TEXT NOT NULL REFERENCES send_log(id) ON DELETE CASCADE,
		opened_at TIMESTAMPTZ NOT NULL
	)`,
}
