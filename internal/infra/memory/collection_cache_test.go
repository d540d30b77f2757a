package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"adaptive-quiz-service/internal/domain"
)

func TestCollectionCacheCaches(t *testing.T) {
	inner := &countingRepository{CollectionRepository: NewCollectionRepository()}
	key := domain.QuizKey("Biology", domain.TierSeniorSchool)
	if err := inner.CollectionRepository.SaveCollection(context.Background(), key, sampleQuestions(2)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cache := NewCollectionCache(inner, time.Minute)

	if _, err := cache.LoadCollection(context.Background(), key); err != nil {
		t.Fatalf("load: %v", err)
	}
	if inner.loads != 1 {
		t.Fatalf("expected loader once, got %d", inner.loads)
	}
	got, err := cache.LoadCollection(context.Background(), key)
	if err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if inner.loads != 1 {
		t.Fatalf("expected cache hit, loader calls %d", inner.loads)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
}

func TestCollectionCacheExpires(t *testing.T) {
	inner := &countingRepository{CollectionRepository: NewCollectionRepository()}
	cache := NewCollectionCache(inner, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }
	key := domain.EvaluationKey("Mathematics")

	if _, err := cache.LoadCollection(context.Background(), key); err != nil {
		t.Fatalf("load: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.LoadCollection(context.Background(), key); err != nil {
		t.Fatalf("load after ttl: %v", err)
	}
	if inner.loads != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", inner.loads)
	}
}

func TestCollectionCacheWritesThrough(t *testing.T) {
	inner := &countingRepository{CollectionRepository: NewCollectionRepository()}
	cache := NewCollectionCache(inner, time.Minute)
	key := domain.QuizKey("History", domain.TierMaster)

	if err := cache.SaveCollection(context.Background(), key, sampleQuestions(4)); err != nil {
		t.Fatalf("save: %v", err)
	}
	stored, _ := inner.CollectionRepository.LoadCollection(context.Background(), key)
	if len(stored) != 4 {
		t.Fatalf("expected write-through, inner has %d", len(stored))
	}
	got, err := cache.LoadCollection(context.Background(), key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 4 || inner.loads != 0 {
		t.Fatalf("expected cached copy after save, got %d questions and %d loads", len(got), inner.loads)
	}

	inner.failSave = errors.New("disk full")
	if err := cache.SaveCollection(context.Background(), key, sampleQuestions(5)); err == nil {
		t.Fatalf("expected save error")
	}
	got, _ = cache.LoadCollection(context.Background(), key)
	if len(got) != 4 || inner.loads != 1 {
		t.Fatalf("expected failed save to drop the cached entry, got %d questions and %d loads", len(got), inner.loads)
	}
}

type countingRepository struct {
	*CollectionRepository
	loads    int
	failSave error
}

func (r *countingRepository) LoadCollection(ctx context.Context, key domain.CollectionKey) ([]domain.Question, error) {
	r.loads++
	return r.CollectionRepository.LoadCollection(ctx, key)
}

func (r *countingRepository) SaveCollection(ctx context.Context, key domain.CollectionKey, questions []domain.Question) error {
	if r.failSave != nil {
		return r.failSave
	}
	return r.CollectionRepository.SaveCollection(ctx, key, questions)
}
