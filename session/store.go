// Package session persists the operator's working state — selected articles
// and the script — keyed by an operator-chosen session ID, so a roundup can be
// resumed later. Derived entities (captions, audio, video) are never stored;
// they are regenerated from the script.
package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"aiml-news-pipeline/types"
)

// Record is one saved session.
type Record struct {
	ID        string          `json:"id"`
	Articles  []types.Article `json:"articles"`
	Script    *types.Script   `json:"script,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Info is the listing view of a saved session.
type Info struct {
	ID        string    `json:"id"`
	Articles  int       `json:"articles"`
	HasScript bool      `json:"has_script"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store provides SQLite-backed persistence for sessions.
type Store struct {
	db *sql.DB
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	articles TEXT NOT NULL,
	script TEXT,
	updated_at INTEGER NOT NULL
);
`

// Open opens (or creates) the session database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("session: open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: set WAL mode: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: create table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a session document.
func (s *Store) Save(id string, articles []types.Article, script *types.Script) error {
	if id == "" {
		return fmt.Errorf("session: empty session id")
	}

	articlesJSON, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("session: marshal articles: %w", err)
	}

	var scriptJSON sql.NullString
	if script != nil {
		data, err := json.Marshal(script)
		if err != nil {
			return fmt.Errorf("session: marshal script: %w", err)
		}
		scriptJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO sessions (id, articles, script, updated_at) VALUES (?, ?, ?, ?)`,
		id, string(articlesJSON), scriptJSON, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("session: save %q: %w", id, err)
	}
	return nil
}

// Load returns the saved session, or nil when no session has that ID.
func (s *Store) Load(id string) (*Record, error) {
	var (
		articlesJSON string
		scriptJSON   sql.NullString
		updatedAt    int64
	)
	err := s.db.QueryRow(
		`SELECT articles, script, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&articlesJSON, &scriptJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load %q: %w", id, err)
	}

	rec := &Record{ID: id, UpdatedAt: time.Unix(updatedAt, 0)}
	if err := json.Unmarshal([]byte(articlesJSON), &rec.Articles); err != nil {
		return nil, fmt.Errorf("session: unmarshal articles for %q: %w", id, err)
	}
	if scriptJSON.Valid {
		rec.Script = &types.Script{}
		if err := json.Unmarshal([]byte(scriptJSON.String), rec.Script); err != nil {
			return nil, fmt.Errorf("session: unmarshal script for %q: %w", id, err)
		}
	}
	return rec, nil
}

// List returns summaries of all saved sessions, most recently updated first.
func (s *Store) List() ([]Info, error) {
	rows, err := s.db.Query(
		`SELECT id, articles, script IS NOT NULL, updated_at FROM sessions ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("session: list: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var (
			info         Info
			articlesJSON string
			updatedAt    int64
		)
		if err := rows.Scan(&info.ID, &articlesJSON, &info.HasScript, &updatedAt); err != nil {
			return nil, fmt.Errorf("session: scan: %w", err)
		}
		var articles []types.Article
		if err := json.Unmarshal([]byte(articlesJSON), &articles); err == nil {
			info.Articles = len(articles)
		}
		info.UpdatedAt = time.Unix(updatedAt, 0)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete removes a saved session. Deleting a missing session is not an error.
func (s *Store) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("session: delete %q: %w", id, err)
	}
	return nil
}
