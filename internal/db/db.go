package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tutor/internal/models"
)

// OpenSessionDB opens a private in-memory database for the transcript. It is
// gone when the process exits.
func OpenSessionDB() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			mode TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session_id ON turns(session_id, id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

func CreateSession(db *sql.DB, nowUnix int64) (string, error) {
	id := uuid.NewString()
	if _, err := db.Exec("INSERT INTO sessions(id, created_at) VALUES(?, ?)", id, nowUnix); err != nil {
		return "", err
	}
	return id, nil
}

func InsertTurn(db *sql.DB, sessionID, role, content string, nowUnix int64) (int64, error) {
	return insertTurn(db, models.ChatTurn{Role: role, Content: content, CreatedAtUnix: nowUnix}, sessionID)
}

// InsertReply stores an assistant turn together with the mode it was asked in
// and the dispatch outcome, so it can be redrawn the same way later.
func InsertReply(db *sql.DB, sessionID, content, mode, kind string, nowUnix int64) (int64, error) {
	return insertTurn(db, models.ChatTurn{
		Role:          models.RoleAssistant,
		Content:       content,
		Mode:          mode,
		Kind:          kind,
		CreatedAtUnix: nowUnix,
	}, sessionID)
}

func insertTurn(db *sql.DB, t models.ChatTurn, sessionID string) (int64, error) {
	if t.Role != models.RoleUser && t.Role != models.RoleAssistant {
		return 0, fmt.Errorf("invalid turn role %q", t.Role)
	}
	res, err := db.Exec(
		"INSERT INTO turns(session_id, role, content, mode, kind, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		sessionID,
		t.Role,
		t.Content,
		t.Mode,
		t.Kind,
		t.CreatedAtUnix,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetTurns returns the session's turns in the order they were inserted.
func GetTurns(db *sql.DB, sessionID string) ([]models.ChatTurn, error) {
	rows, err := db.Query(
		"SELECT id, role, content, mode, kind, created_at FROM turns WHERE session_id = ? ORDER BY id ASC",
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []models.ChatTurn{}
	for rows.Next() {
		var t models.ChatTurn
		if err := rows.Scan(&t.ID, &t.Role, &t.Content, &t.Mode, &t.Kind, &t.CreatedAtUnix); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return turns, nil
}

func CountTurns(db *sql.DB, sessionID string) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM turns WHERE session_id = ?", sessionID).Scan(&count)
	return count, err
}

func ClearTurns(db *sql.DB, sessionID string) error {
	_, err := db.Exec("DELETE FROM turns WHERE session_id = ?", sessionID)
	return err
}
