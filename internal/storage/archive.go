// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the on-demand transcript archive for inkwell.
//
// A session's chat history lives in memory and vanishes when inkwell exits;
// the archive is written only when the user explicitly saves a snapshot.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/morganforge/inkwell-tui/internal/model"
)

// ErrSessionNotFound is returned when the requested archive entry does not
// exist.
var ErrSessionNotFound = errors.New("archived session not found")

// =============================================================================
// ARCHIVED SESSION TYPES
// =============================================================================

// ArchivedSession is one saved snapshot of a chat session.
type ArchivedSession struct {
	ID        string
	Title     string
	Context   string // persisted retrieval context at save time
	CreatedAt time.Time
	Messages  []model.ChatMessage
}

// SessionMeta is the listing view of an archived session.
type SessionMeta struct {
	ID           string
	Title        string
	CreatedAt    time.Time
	MessageCount int
}

// =============================================================================
// ARCHIVE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	context    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	PRIMARY KEY (session_id, position)
);

CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at DESC);
`

// Archive is a SQLite-backed store of saved session snapshots.
type Archive struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the archive database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save stores one snapshot and returns its ID. An empty title falls back to
// a preview of the first user message.
func (a *Archive) Save(transcript *model.Transcript, context, title string) (string, error) {
	if title == "" {
		title = transcript.Preview()
	}
	id := uuid.NewString()

	tx, err := a.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO sessions (id, title, context, created_at) VALUES (?, ?, ?, ?)",
		id, title, context, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO messages (session_id, position, role, content) VALUES (?, ?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range transcript.Messages() {
		if _, err := stmt.Exec(id, i, string(msg.Role), msg.Content); err != nil {
			return "", fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return id, nil
}

// List returns the metadata of all snapshots, newest first.
func (a *Archive) List() ([]SessionMeta, error) {
	rows, err := a.db.Query(`
		SELECT s.id, s.title, s.created_at, COUNT(m.position)
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.CreatedAt, &meta.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// Load retrieves one snapshot with its full message list.
func (a *Archive) Load(id string) (*ArchivedSession, error) {
	session := &ArchivedSession{ID: id}

	err := a.db.QueryRow(
		"SELECT title, context, created_at FROM sessions WHERE id = ?", id,
	).Scan(&session.Title, &session.Context, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	rows, err := a.db.Query(
		"SELECT role, content FROM messages WHERE session_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		session.Messages = append(session.Messages, model.ChatMessage{
			Role:    model.Role(role),
			Content: content,
		})
	}
	return session, rows.Err()
}

// Delete removes one snapshot and its messages.
func (a *Archive) Delete(id string) error {
	res, err := a.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders one snapshot as a markdown document.
func (a *Archive) ExportMarkdown(id string) (string, error) {
	session, err := a.Load(id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", session.Title)
	fmt.Fprintf(&b, "Saved: %s\n\n", session.CreatedAt.Format("2006-01-02 15:04 MST"))

	for _, msg := range session.Messages {
		switch msg.Role {
		case model.RoleUser:
			b.WriteString("## You\n\n")
		case model.RoleAssistant:
			b.WriteString("## Inkwell\n\n")
		default:
			fmt.Fprintf(&b, "## %s\n\n", msg.Role)
		}
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}

	if strings.TrimSpace(session.Context) != "" {
		b.WriteString("---\n\n## Retrieved context\n\n")
		b.WriteString(session.Context)
		b.WriteString("\n")
	}
	return b.String(), nil
}
