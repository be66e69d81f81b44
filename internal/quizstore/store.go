// Package quizstore provides SQLite-backed, append-only persistence
// for generated quiz records.
package quizstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lectio/lectio/internal/apperr"
	"github.com/lectio/lectio/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS quizzes (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at    DATETIME NOT NULL,
	source_type   TEXT NOT NULL,
	reference     TEXT NOT NULL DEFAULT '{}',
	num_questions INTEGER NOT NULL,
	difficulty    TEXT NOT NULL DEFAULT '',
	questions     TEXT NOT NULL DEFAULT '[]',
	notes         TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_quizzes_created_at ON quizzes(created_at);
`

// DB wraps a sql.DB with quiz-record operations. The table is
// append-only: records are inserted and read, never updated.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("quizstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("quizstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("quizstore: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// AddRecord appends a quiz record and returns it with the generated id.
func (db *DB) AddRecord(q *models.Quiz) (*models.Quiz, error) {
	refJSON, _ := json.Marshal(q.Reference)
	questionsJSON, _ := json.Marshal(q.Questions)
	notes := q.Notes
	if notes == nil {
		notes = []string{}
	}
	notesJSON, _ := json.Marshal(notes)

	res, err := db.conn.Exec(`
		INSERT INTO quizzes (created_at, source_type, reference, num_questions, difficulty, questions, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, q.CreatedAt, q.SourceType, string(refJSON), q.NumQuestions, q.Difficulty, string(questionsJSON), string(notesJSON))
	if err != nil {
		return nil, fmt.Errorf("quizstore: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("quizstore: last insert id: %w", err)
	}

	out := *q
	out.ID = id
	out.Notes = notes
	return &out, nil
}

// GetRecord returns one quiz record by id.
func (db *DB) GetRecord(id int64) (*models.Quiz, error) {
	row := db.conn.QueryRow(`
		SELECT id, created_at, source_type, reference, num_questions, difficulty, questions, notes
		FROM quizzes WHERE id = ?
	`, id)
	q, err := scanQuiz(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("quizstore: get %d: %w", id, err)
	}
	return q, nil
}

// ListRecords returns quiz records newest first, with the total count.
func (db *DB) ListRecords(limit, offset int) ([]models.Quiz, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM quizzes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("quizstore: count: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT id, created_at, source_type, reference, num_questions, difficulty, questions, notes
		FROM quizzes ORDER BY id DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("quizstore: list: %w", err)
	}
	defer rows.Close()

	out := make([]models.Quiz, 0, limit)
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("quizstore: scan: %w", err)
		}
		out = append(out, *q)
	}
	return out, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (*models.Quiz, error) {
	var (
		q             models.Quiz
		createdAt     time.Time
		refJSON       string
		questionsJSON string
		notesJSON     string
	)
	err := row.Scan(&q.ID, &createdAt, &q.SourceType, &refJSON, &q.NumQuestions, &q.Difficulty, &questionsJSON, &notesJSON)
	if err != nil {
		return nil, err
	}
	q.CreatedAt = createdAt.UTC()
	_ = json.Unmarshal([]byte(refJSON), &q.Reference)
	_ = json.Unmarshal([]byte(questionsJSON), &q.Questions)
	_ = json.Unmarshal([]byte(notesJSON), &q.Notes)
	return &q, nil
}
