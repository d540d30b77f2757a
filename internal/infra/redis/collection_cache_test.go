package redis

import (
	"context"
	"testing"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/memory"
)

func TestCollectionCacheCachesInRedis(t *testing.T) {
	ctx := context.Background()
	mr := startMiniredis(t)
	inner := &countingRepository{CollectionRepository: memory.NewCollectionRepository()}
	key := domain.QuizKey("History", domain.TierSeniorSchool)
	_ = inner.CollectionRepository.SaveCollection(ctx, key, sampleQuestions(2))

	cache := NewCollectionCache(newClient(mr), inner, time.Minute)
	if _, err := cache.LoadCollection(ctx, key); err != nil {
		t.Fatalf("load: %v", err)
	}
	if inner.loads != 1 {
		t.Fatalf("expected loader called once, got %d", inner.loads)
	}

	// Second call should hit cache, loader not incremented.
	got, err := cache.LoadCollection(ctx, key)
	if err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if inner.loads != 1 || len(got) != 2 {
		t.Fatalf("expected cache hit with 2 questions, loads=%d len=%d", inner.loads, len(got))
	}
	if !mr.Exists("quiz:cache:history_grade_2") {
		t.Fatalf("expected cache key")
	}
	if ttl := mr.TTL("quiz:cache:history_grade_2"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with jitter, got %s", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := cache.LoadCollection(ctx, key); err != nil {
		t.Fatalf("load after expiry: %v", err)
	}
	if inner.loads != 2 {
		t.Fatalf("expected reload after expiry, loads=%d", inner.loads)
	}
}

func TestCollectionCacheWritesThrough(t *testing.T) {
	ctx := context.Background()
	mr := startMiniredis(t)
	inner := &countingRepository{CollectionRepository: memory.NewCollectionRepository()}
	cache := NewCollectionCache(newClient(mr), inner, time.Minute)
	key := domain.EvaluationKey("Economics")

	if err := cache.SaveCollection(ctx, key, sampleQuestions(4)); err != nil {
		t.Fatalf("save: %v", err)
	}
	stored, _ := inner.CollectionRepository.LoadCollection(ctx, key)
	if len(stored) != 4 {
		t.Fatalf("expected write-through, inner has %d", len(stored))
	}
	got, err := cache.LoadCollection(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 4 || inner.loads != 0 {
		t.Fatalf("expected cached copy after save, got %d questions and %d loads", len(got), inner.loads)
	}
}

type countingRepository struct {
	*memory.CollectionRepository
	loads int
}

func (r *countingRepository) LoadCollection(ctx context.Context, key domain.CollectionKey) ([]domain.Question, error) {
	r.loads++
	return r.CollectionRepository.LoadCollection(ctx, key)
}
