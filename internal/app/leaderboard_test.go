package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/memory"
)

func TestLeaderboardLatestScoreWins(t *testing.T) {
	ctx := context.Background()
	board := app.NewLeaderboard(memory.NewStateStore())

	if _, err := board.Record(ctx, "History", domain.TierCollege, "u1", "Ada", 40); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := board.Record(ctx, "History", domain.TierCollege, "u2", "Grace", 60); err != nil {
		t.Fatalf("record: %v", err)
	}
	entries, err := board.Record(ctx, "History", domain.TierCollege, "u1", "Ada", 90)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(entries) != 2 || entries[0].UserID != "u1" || entries[0].Score != 90 {
		t.Fatalf("expected Ada to lead with 90, got %+v", entries)
	}

	entries, _ = board.Record(ctx, "History", domain.TierCollege, "u1", "Ada", 10)
	if len(entries) != 2 || entries[1].UserID != "u1" || entries[1].Score != 10 {
		t.Fatalf("expected lower re-take to replace the entry, got %+v", entries)
	}
}

func TestLeaderboardTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	board := app.NewLeaderboard(memory.NewStateStore())

	for _, id := range []string{"a", "b", "c"} {
		if _, err := board.Record(ctx, "Physics", domain.TierMaster, id, id, 70); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}
	entries, err := board.Top(ctx, "Physics", domain.TierMaster)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	got := entries[0].UserID + entries[1].UserID + entries[2].UserID
	if got != "abc" {
		t.Fatalf("expected tie order abc, got %s", got)
	}
}

func TestLeaderboardBucketsAreIndependent(t *testing.T) {
	ctx := context.Background()
	board := app.NewLeaderboard(memory.NewStateStore())

	_, _ = board.Record(ctx, "Physics", domain.TierCollege, "u1", "Ada", 50)
	other, err := board.Top(ctx, "Physics", domain.TierMaster)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if other == nil || len(other) != 0 {
		t.Fatalf("expected empty non-nil bucket, got %#v", other)
	}
	fresh, err := board.Top(ctx, "Astronomy", domain.TierCollege)
	if err != nil || len(fresh) != 0 {
		t.Fatalf("expected empty bucket for unseen subject, got %v %v", fresh, err)
	}
}

func TestLeaderboardValidation(t *testing.T) {
	ctx := context.Background()
	board := app.NewLeaderboard(memory.NewStateStore())

	cases := []struct {
		name    string
		subject string
		tier    domain.Tier
		user    string
		score   int
	}{
		{name: "empty subject", subject: " ", tier: domain.TierCollege, user: "u", score: 10},
		{name: "bad tier", subject: "History", tier: 0, user: "u", score: 10},
		{name: "empty user", subject: "History", tier: domain.TierCollege, user: "", score: 10},
		{name: "score too high", subject: "History", tier: domain.TierCollege, user: "u", score: 101},
		{name: "negative score", subject: "History", tier: domain.TierCollege, user: "u", score: -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := board.Record(ctx, tc.subject, tc.tier, tc.user, "n", tc.score); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLeaderboardConcurrentRecords(t *testing.T) {
	ctx := context.Background()
	board := app.NewLeaderboard(memory.NewStateStore())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", i%10)
			if _, err := board.Record(ctx, "English", domain.TierProfessional, user, user, i); err != nil {
				t.Errorf("record: %v", err)
			}
		}(i)
	}
	wg.Wait()

	entries, _ := board.Top(ctx, "English", domain.TierProfessional)
	if len(entries) != 10 {
		t.Fatalf("expected one entry per user, got %d", len(entries))
	}
	seen := make(map[string]bool)
	for i, e := range entries {
		if seen[e.UserID] {
			t.Fatalf("user %s listed twice", e.UserID)
		}
		seen[e.UserID] = true
		if i > 0 && entries[i-1].Score < e.Score {
			t.Fatalf("bucket not sorted at %d", i)
		}
	}
}
