package app

import (
	"context"

	"adaptive-quiz-service/internal/domain"
)

// CollectionRepository persists question collections, one document per key.
// LoadCollection returns an empty slice (not an error) for unknown keys.
type CollectionRepository interface {
	LoadCollection(ctx context.Context, key domain.CollectionKey) ([]domain.Question, error)
	SaveCollection(ctx context.Context, key domain.CollectionKey, questions []domain.Question) error
}

// LeaderboardRepository persists leaderboard buckets already sorted by the caller.
// LoadBucket returns an empty slice for unknown buckets.
type LeaderboardRepository interface {
	LoadBucket(ctx context.Context, subject string, tier domain.Tier) ([]domain.LeaderboardEntry, error)
	SaveBucket(ctx context.Context, subject string, tier domain.Tier, entries []domain.LeaderboardEntry) error
}

// UserRepository persists user records. GetUser returns domain.ErrNotFound for unknown ids.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (domain.UserRecord, error)
	SaveUser(ctx context.Context, user domain.UserRecord) error
}

// SessionRepository abstracts where in-flight quiz sessions live (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// BatchRequest asks the content generator for a batch of candidate questions.
type BatchRequest struct {
	Subject string
	Level   string
	Count   int
}

// Generator is the external content source. Returned records are untrusted:
// they may be malformed, duplicated or fewer than requested.
type Generator interface {
	GenerateBatch(ctx context.Context, req BatchRequest) ([]domain.Question, error)
}
