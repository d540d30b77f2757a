// Package file persists collections and the root game document as JSON files:
//
//	{dir}/game_data.json                   users and leaderboard buckets
//	{dir}/questions/{subject}_evaluation.json
//	{dir}/questions/{subject}_grade_{n}.json
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"adaptive-quiz-service/internal/domain"
)

const (
	rootDocument  = "game_data.json"
	questionsDir  = "questions"
	fileMode      = 0o644
	directoryMode = 0o755
)

// Store implements the collection, leaderboard and user repositories on top of
// a directory of JSON documents. Writes go to a temp file and are renamed into
// place so a crash never leaves a half-written document.
type Store struct {
	dir string

	mu sync.Mutex // guards read-modify-write of the root document
}

// Open prepares dir and creates a pre-seeded root document if none exists.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, questionsDir), directoryMode); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{dir: dir}
	if _, err := os.Stat(s.rootPath()); errors.Is(err, fs.ErrNotExist) {
		if err := writeJSON(s.rootPath(), domain.NewDatabase()); err != nil {
			return nil, fmt.Errorf("seed %s: %w", rootDocument, err)
		}
	} else if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) LoadCollection(_ context.Context, key domain.CollectionKey) ([]domain.Question, error) {
	questions := []domain.Question{}
	err := readJSON(s.collectionPath(key), &questions)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Question{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", key, err)
	}
	return questions, nil
}

func (s *Store) SaveCollection(_ context.Context, key domain.CollectionKey, questions []domain.Question) error {
	if questions == nil {
		questions = []domain.Question{}
	}
	return writeJSON(s.collectionPath(key), questions)
}

func (s *Store) LoadBucket(_ context.Context, subject string, tier domain.Tier) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.loadRoot()
	if err != nil {
		return nil, err
	}
	return append([]domain.LeaderboardEntry{}, db.Leaderboard[subject][tier.Name()]...), nil
}

func (s *Store) SaveBucket(_ context.Context, subject string, tier domain.Tier, entries []domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.loadRoot()
	if err != nil {
		return err
	}
	if db.Leaderboard[subject] == nil {
		db.Leaderboard[subject] = make(map[string][]domain.LeaderboardEntry)
	}
	db.Leaderboard[subject][tier.Name()] = append([]domain.LeaderboardEntry{}, entries...)
	return writeJSON(s.rootPath(), db)
}

func (s *Store) GetUser(_ context.Context, userID string) (domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.loadRoot()
	if err != nil {
		return domain.UserRecord{}, err
	}
	user, ok := db.Users[userID]
	if !ok {
		return domain.UserRecord{}, domain.ErrNotFound
	}
	return user, nil
}

func (s *Store) SaveUser(_ context.Context, user domain.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.loadRoot()
	if err != nil {
		return err
	}
	db.Users[user.UserID] = user
	return writeJSON(s.rootPath(), db)
}

// Snapshot returns the whole root document.
func (s *Store) Snapshot() (domain.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadRoot()
}

func (s *Store) loadRoot() (domain.Database, error) {
	db := domain.NewDatabase()
	if err := readJSON(s.rootPath(), &db); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.Database{}, fmt.Errorf("read %s: %w", rootDocument, err)
	}
	if db.Users == nil {
		db.Users = make(map[string]domain.UserRecord)
	}
	if db.Leaderboard == nil {
		db.Leaderboard = make(map[string]map[string][]domain.LeaderboardEntry)
	}
	return db, nil
}

func (s *Store) rootPath() string {
	return filepath.Join(s.dir, rootDocument)
}

func (s *Store) collectionPath(key domain.CollectionKey) string {
	return filepath.Join(s.dir, questionsDir, key.String()+".json")
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
