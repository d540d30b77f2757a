package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"adaptive-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Keys used by the Redis backend:
//
//	quiz:collection:{subject}_grade_{n}        JSON array of questions
//	quiz:leaderboard:{subject}:{tier}          JSON array of entries, already ranked
//	quiz:users                                 hash of user id -> JSON user record
const (
	collectionPrefix  = "quiz:collection:"
	leaderboardPrefix = "quiz:leaderboard:"
	usersKey          = "quiz:users"
)

// CollectionRepository stores question collections durably in Redis.
type CollectionRepository struct {
	client *redis.Client
}

func NewCollectionRepository(client *redis.Client) *CollectionRepository {
	return &CollectionRepository{client: client}
}

func (r *CollectionRepository) LoadCollection(ctx context.Context, key domain.CollectionKey) ([]domain.Question, error) {
	raw, err := r.client.Get(ctx, collectionPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Question{}, nil
	}
	if err != nil {
		return nil, err
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", key, err)
	}
	return questions, nil
}

func (r *CollectionRepository) SaveCollection(ctx context.Context, key domain.CollectionKey, questions []domain.Question) error {
	raw, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, collectionPrefix+key.String(), raw, 0).Err()
}

// StateStore keeps leaderboard buckets and user records in Redis.
type StateStore struct {
	client *redis.Client
}

func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

func (s *StateStore) LoadBucket(ctx context.Context, subject string, tier domain.Tier) ([]domain.LeaderboardEntry, error) {
	raw, err := s.client.Get(ctx, bucketKey(subject, tier)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.LeaderboardEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	entries := []domain.LeaderboardEntry{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode leaderboard %s/%s: %w", subject, tier, err)
	}
	return entries, nil
}

func (s *StateStore) SaveBucket(ctx context.Context, subject string, tier domain.Tier, entries []domain.LeaderboardEntry) error {
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, bucketKey(subject, tier), raw, 0).Err()
}

func (s *StateStore) GetUser(ctx context.Context, userID string) (domain.UserRecord, error) {
	raw, err := s.client.HGet(ctx, usersKey, userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.UserRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserRecord{}, err
	}
	var user domain.UserRecord
	if err := json.Unmarshal(raw, &user); err != nil {
		return domain.UserRecord{}, fmt.Errorf("decode user %s: %w", userID, err)
	}
	return user, nil
}

func (s *StateStore) SaveUser(ctx context.Context, user domain.UserRecord) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, usersKey, user.UserID, raw).Err()
}

func bucketKey(subject string, tier domain.Tier) string {
	return fmt.Sprintf("%s%s:%d", leaderboardPrefix, subject, int(tier))
}
