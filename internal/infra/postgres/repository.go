package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"adaptive-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store keeps collections, leaderboard buckets and users as JSONB rows.
// Tables are created by the bun migrations in ./migrations.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) LoadCollection(ctx context.Context, key domain.CollectionKey) ([]domain.Question, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT questions FROM question_collections WHERE collection_key=$1`, key.String()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []domain.Question{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}
	questions := []domain.Question{}
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal collection: %w", err)
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
	_, err = s.pool.Exec(ctx, `
		INSERT INTO question_collections (collection_key, subject, tier, questions, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, now())
		ON CONFLICT (collection_key) DO UPDATE SET questions=EXCLUDED.questions, updated_at=now()`,
		key.String(), key.Subject, int(key.Tier), string(raw))
	if err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}

func (s *Store) LoadBucket(ctx context.Context, subject string, tier domain.Tier) ([]domain.LeaderboardEntry, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT entries FROM leaderboard_buckets WHERE subject=$1 AND tier=$2`, subject, int(tier)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []domain.LeaderboardEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	entries := []domain.LeaderboardEntry{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal leaderboard: %w", err)
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
	_, err = s.pool.Exec(ctx, `
		INSERT INTO leaderboard_buckets (subject, tier, entries, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (subject, tier) DO UPDATE SET entries=EXCLUDED.entries, updated_at=now()`,
		subject, int(tier), string(raw))
	if err != nil {
		return fmt.Errorf("save leaderboard: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (domain.UserRecord, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT record FROM quiz_users WHERE user_id=$1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("load user: %w", err)
	}
	var user domain.UserRecord
	if err := json.Unmarshal(raw, &user); err != nil {
		return domain.UserRecord{}, fmt.Errorf("unmarshal user: %w", err)
	}
	return user, nil
}

func (s *Store) SaveUser(ctx context.Context, user domain.UserRecord) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_users (user_id, name, record, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (user_id) DO UPDATE SET name=EXCLUDED.name, record=EXCLUDED.record, updated_at=now()`,
		user.UserID, user.Name, string(raw))
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
