package memory

import (
	"context"
	"sync"

	"adaptive-quiz-service/internal/domain"
)

// CollectionRepository keeps question collections in process memory, keyed
// by the normalized collection name like the file and database backends.
type CollectionRepository struct {
	mu          sync.RWMutex
	collections map[string][]domain.Question
}

func NewCollectionRepository() *CollectionRepository {
	return &CollectionRepository{collections: make(map[string][]domain.Question)}
}

func (r *CollectionRepository) LoadCollection(_ context.Context, key domain.CollectionKey) ([]domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyQuestions(r.collections[key.String()]), nil
}

func (r *CollectionRepository) SaveCollection(_ context.Context, key domain.CollectionKey, questions []domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[key.String()] = copyQuestions(questions)
	return nil
}

// StateStore keeps users and leaderboard buckets in a domain.Database document.
type StateStore struct {
	mu sync.RWMutex
	db domain.Database
}

func NewStateStore() *StateStore {
	return &StateStore{db: domain.NewDatabase()}
}

func (s *StateStore) LoadBucket(_ context.Context, subject string, tier domain.Tier) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.LeaderboardEntry{}, s.db.Leaderboard[subject][tier.Name()]...), nil
}

func (s *StateStore) SaveBucket(_ context.Context, subject string, tier domain.Tier, entries []domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db.Leaderboard[subject] == nil {
		s.db.Leaderboard[subject] = make(map[string][]domain.LeaderboardEntry)
	}
	s.db.Leaderboard[subject][tier.Name()] = append([]domain.LeaderboardEntry{}, entries...)
	return nil
}

func (s *StateStore) GetUser(_ context.Context, userID string) (domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.db.Users[userID]
	if !ok {
		return domain.UserRecord{}, domain.ErrNotFound
	}
	return user.Clone(), nil
}

func (s *StateStore) SaveUser(_ context.Context, user domain.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db.Users[user.UserID] = user.Clone()
	return nil
}

// Snapshot returns a deep copy of the whole document.
func (s *StateStore) Snapshot() domain.Database {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := domain.Database{
		Users:       make(map[string]domain.UserRecord, len(s.db.Users)),
		Leaderboard: make(map[string]map[string][]domain.LeaderboardEntry, len(s.db.Leaderboard)),
	}
	for id, u := range s.db.Users {
		out.Users[id] = u.Clone()
	}
	for subject, tiers := range s.db.Leaderboard {
		out.Leaderboard[subject] = make(map[string][]domain.LeaderboardEntry, len(tiers))
		for name, entries := range tiers {
			out.Leaderboard[subject][name] = append([]domain.LeaderboardEntry{}, entries...)
		}
	}
	return out
}

func copyQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
