package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"adaptive-quiz-service/internal/domain"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS question_collections (
		collection_key TEXT PRIMARY KEY,
		subject        TEXT NOT NULL,
		tier           INTEGER NOT NULL,
		questions      TEXT NOT NULL,
		updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS leaderboard_buckets (
		subject    TEXT NOT NULL,
		tier       INTEGER NOT NULL,
		entries    TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (subject, tier)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id    TEXT PRIMARY KEY,
		record     TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Store implements the collection, leaderboard and user repositories on a
// single SQLite database. JSON columns hold the documents.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn, applies pragmas and creates tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// pragmas below are per connection
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// OpenFile creates the parent directory of path and opens it.
func OpenFile(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return Open(path)
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) LoadCollection(ctx context.Context, key domain.CollectionKey) ([]domain.Question, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT questions FROM question_collections WHERE collection_key = ?`, key.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.Question{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", key, err)
	}
	questions := []domain.Question{}
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", key, err)
	}
	return questions, nil
}

func (s *Store) SaveCollection(ctx context.Context, key domain.CollectionKey, questions []domain.Question) error {
	if questions == nil {
		questions = []domain.Question{}
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO question_collections (collection_key, subject, tier, questions, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (collection_key) DO UPDATE SET questions = excluded.questions, updated_at = CURRENT_TIMESTAMP`,
		key.String(), key.Subject, int(key.Tier), string(raw))
	if err != nil {
		return fmt.Errorf("save collection %s: %w", key, err)
	}
	return nil
}

func (s *Store) LoadBucket(ctx context.Context, subject string, tier domain.Tier) ([]domain.LeaderboardEntry, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT entries FROM leaderboard_buckets WHERE subject = ? AND tier = ?`, subject, int(tier)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.LeaderboardEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query leaderboard %s/%s: %w", subject, tier, err)
	}
	entries := []domain.LeaderboardEntry{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode leaderboard %s/%s: %w", subject, tier, err)
	}
	return entries, nil
}

func (s *Store) SaveBucket(ctx context.Context, subject string, tier domain.Tier, entries []domain.LeaderboardEntry) error {
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leaderboard_buckets (subject, tier, entries, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (subject, tier) DO UPDATE SET entries = excluded.entries, updated_at = CURRENT_TIMESTAMP`,
		subject, int(tier), string(raw))
	if err != nil {
		return fmt.Errorf("save leaderboard %s/%s: %w", subject, tier, err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (domain.UserRecord, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM users WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("query user %s: %w", userID, err)
	}
	var user domain.UserRecord
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return domain.UserRecord{}, fmt.Errorf("decode user %s: %w", userID, err)
	}
	return user, nil
}

func (s *Store) SaveUser(ctx context.Context, user domain.UserRecord) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, record, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET record = excluded.record, updated_at = CURRENT_TIMESTAMP`,
		user.UserID, string(raw))
	if err != nil {
		return fmt.Errorf("save user %s: %w", user.UserID, err)
	}
	return nil
}

// applyPragmas configures SQLite for a single local process.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
