package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"adaptive-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCollectionRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := startMiniredis(t)
	repo := NewCollectionRepository(newClient(mr))
	key := domain.QuizKey("Physics", domain.TierCollege)

	empty, err := repo.LoadCollection(ctx, key)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty collection, got %v %v", empty, err)
	}

	if err := repo.SaveCollection(ctx, key, sampleQuestions(3)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:collection:physics_grade_3") {
		t.Fatalf("expected collection key")
	}
	got, err := repo.LoadCollection(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 || got[2].Difficulty != 3 {
		t.Fatalf("unexpected collection %+v", got)
	}
}

func TestStateStoreBucketsAndUsers(t *testing.T) {
	ctx := context.Background()
	mr := startMiniredis(t)
	store := NewStateStore(newClient(mr))

	if _, err := store.GetUser(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	user := domain.NewUserRecord("u-1", "Ada")
	user.RecordAttempt("History", domain.TierMaster, 95)
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("save user: %v", err)
	}
	got, err := store.GetUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Name != "Ada" || got.Scores["History"] != 95 || got.Grades["History"] != "Master" {
		t.Fatalf("unexpected user %+v", got)
	}

	bucket, err := store.LoadBucket(ctx, "History", domain.TierMaster)
	if err != nil || bucket == nil || len(bucket) != 0 {
		t.Fatalf("expected empty non-nil bucket, got %#v %v", bucket, err)
	}
	entries := []domain.LeaderboardEntry{{UserID: "u-1", Name: "Ada", Score: 95}, {UserID: "u-2", Name: "Bob", Score: 40}}
	if err := store.SaveBucket(ctx, "History", domain.TierMaster, entries); err != nil {
		t.Fatalf("save bucket: %v", err)
	}
	bucket, _ = store.LoadBucket(ctx, "History", domain.TierMaster)
	if len(bucket) != 2 || bucket[0].UserID != "u-1" || bucket[1].Score != 40 {
		t.Fatalf("expected stored order preserved, got %+v", bucket)
	}
}

func sampleQuestions(n int) []domain.Question {
	out := make([]domain.Question, n)
	for i := range out {
		out[i] = domain.Question{
			Text:          fmt.Sprintf("Question %d?", i),
			Options:       []string{fmt.Sprintf("a%d", i), fmt.Sprintf("b%d", i), fmt.Sprintf("c%d", i), fmt.Sprintf("d%d", i)},
			CorrectAnswer: fmt.Sprintf("a%d", i),
			Explanation:   "because",
			Difficulty:    domain.Difficulty(i + 1),
			Concept:       "basics",
		}
	}
	return out
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
