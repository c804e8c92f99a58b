package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS app_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS notifications (
	id           INTEGER PRIMARY KEY,
	title        TEXT NOT NULL,
	message      TEXT NOT NULL DEFAULT '',
	url          TEXT NOT NULL DEFAULT '',
	cta          TEXT NOT NULL DEFAULT '',
	read         INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL,
	type         TEXT NOT NULL DEFAULT '',
	origin       TEXT NOT NULL DEFAULT '',
	reference_id INTEGER NOT NULL DEFAULT 0,
	data_ref     TEXT NOT NULL DEFAULT '',
	fetched_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
