// Package storage opens the SQLite database shared by the trained
// response store and the analytics store.
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS trained_responses (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	persona    TEXT NOT NULL,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	priority   INTEGER NOT NULL DEFAULT 1,
	origin     TEXT NOT NULL DEFAULT 'manual',
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(persona, question)
);
CREATE INDEX IF NOT EXISTS idx_trained_persona ON trained_responses(persona);

CREATE TABLE IF NOT EXISTS conversations (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	persona      TEXT NOT NULL,
	user_message TEXT NOT NULL,
	response     TEXT NOT NULL,
	turn         INTEGER NOT NULL,
	is_semi      INTEGER NOT NULL DEFAULT 0,
	is_last      INTEGER NOT NULL DEFAULT 0,
	emotion      TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_conversations_persona ON conversations(persona);

CREATE TABLE IF NOT EXISTS ratings (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	persona    TEXT NOT NULL,
	message    TEXT NOT NULL,
	response   TEXT NOT NULL,
	rating     INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_ratings_persona ON ratings(persona);
`

// Open connects to the SQLite database at path, enables WAL mode and
// creates the tables if they do not exist. Use ":memory:" in tests.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("could not connect to sqlite at %s: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create schema: %w", err)
	}
	return db, nil
}
