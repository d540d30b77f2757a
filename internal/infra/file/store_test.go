package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"adaptive-quiz-service/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestOpenSeedsRootDocument(t *testing.T) {
	s := openTestStore(t)

	data, err := os.ReadFile(filepath.Join(s.Dir(), "game_data.json"))
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	var db domain.Database
	if err := json.Unmarshal(data, &db); err != nil {
		t.Fatalf("decode root: %v", err)
	}
	for _, subject := range domain.DefaultSubjects {
		if len(db.Leaderboard[subject]) != 5 {
			t.Fatalf("expected 5 tier buckets for %s, got %d", subject, len(db.Leaderboard[subject]))
		}
	}
}

func TestCollectionFilesNamedByKey(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	key := domain.QuizKey("World History", domain.TierProfessional)

	got, err := s.LoadCollection(ctx, key)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty collection for missing file, got %v %v", got, err)
	}
	if err := s.SaveCollection(ctx, key, sampleQuestions(2)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "questions", "world_history_grade_4.json")); err != nil {
		t.Fatalf("expected collection file: %v", err)
	}
	got, err = s.LoadCollection(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[1].CorrectAnswer != "a1" {
		t.Fatalf("unexpected collection %+v", got)
	}

	if err := s.SaveCollection(ctx, domain.EvaluationKey("History"), sampleQuestions(1)); err != nil {
		t.Fatalf("save evaluation: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "questions", "history_evaluation.json")); err != nil {
		t.Fatalf("expected evaluation file: %v", err)
	}
}

func TestUsersAndBucketsPersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := s.GetUser(ctx, "u-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	user := domain.NewUserRecord("u-1", "Ada")
	user.RecordAttempt("Physics", domain.TierCollege, 70)
	if err := s.SaveUser(ctx, user); err != nil {
		t.Fatalf("save user: %v", err)
	}
	entries := []domain.LeaderboardEntry{{UserID: "u-1", Name: "Ada", Score: 70}}
	if err := s.SaveBucket(ctx, "Physics", domain.TierCollege, entries); err != nil {
		t.Fatalf("save bucket: %v", err)
	}
	if err := s.SaveBucket(ctx, "Robotics", domain.TierMaster, entries); err != nil {
		t.Fatalf("save new subject bucket: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.GetUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Grades["Physics"] != "College" || got.Scores["Physics"] != 70 {
		t.Fatalf("unexpected user %+v", got)
	}
	bucket, _ := reopened.LoadBucket(ctx, "Robotics", domain.TierMaster)
	if len(bucket) != 1 || bucket[0].Score != 70 {
		t.Fatalf("unexpected bucket %+v", bucket)
	}
	snap, err := reopened.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Leaderboard["Physics"]["College"]) != 1 {
		t.Fatalf("expected physics college bucket in snapshot")
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
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
