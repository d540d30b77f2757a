package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"adaptive-quiz-service/internal/domain"
)

// Leaderboard owns the ranked (subject, tier) buckets.
type Leaderboard struct {
	repo  LeaderboardRepository
	locks keyedLocks
}

func NewLeaderboard(repo LeaderboardRepository) *Leaderboard {
	return &Leaderboard{repo: repo}
}

// Record upserts the user's latest score into the bucket and returns the new ordering.
// A re-take replaces the previous line even when the new score is lower.
func (l *Leaderboard) Record(ctx context.Context, subject string, tier domain.Tier, userID, name string, score int) ([]domain.LeaderboardEntry, error) {
	if err := validateBucket(subject, tier); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, &domain.ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if score < 0 || score > 100 {
		return nil, &domain.ValidationError{Field: "score", Reason: fmt.Sprintf("%d is outside 0-100", score)}
	}

	lock := l.locks.get(bucketKey(subject, tier))
	lock.Lock()
	defer lock.Unlock()

	current, err := l.repo.LoadBucket(ctx, subject, tier)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard %s/%s: %w", subject, tier, err)
	}

	next := make([]domain.LeaderboardEntry, 0, len(current)+1)
	for _, e := range current {
		if e.UserID != userID {
			next = append(next, e)
		}
	}
	next = append(next, domain.LeaderboardEntry{UserID: userID, Name: name, Score: score})
	rankEntries(next)

	if err := l.repo.SaveBucket(ctx, subject, tier, next); err != nil {
		return nil, fmt.Errorf("save leaderboard %s/%s: %w", subject, tier, err)
	}
	return append([]domain.LeaderboardEntry(nil), next...), nil
}

// Top returns the bucket's current ordering.
func (l *Leaderboard) Top(ctx context.Context, subject string, tier domain.Tier) ([]domain.LeaderboardEntry, error) {
	if err := validateBucket(subject, tier); err != nil {
		return nil, err
	}
	lock := l.locks.get(bucketKey(subject, tier))
	lock.RLock()
	defer lock.RUnlock()

	entries, err := l.repo.LoadBucket(ctx, subject, tier)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard %s/%s: %w", subject, tier, err)
	}
	return append([]domain.LeaderboardEntry{}, entries...), nil
}

// rankEntries orders by score descending; equal scores keep insertion order,
// so earlier records stay ahead of a newly appended tie.
func rankEntries(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}

func validateBucket(subject string, tier domain.Tier) error {
	if strings.TrimSpace(subject) == "" {
		return &domain.ValidationError{Field: "subject", Reason: "must not be empty"}
	}
	if _, err := domain.ParseTier(int(tier)); err != nil {
		return err
	}
	return nil
}

func bucketKey(subject string, tier domain.Tier) string {
	return fmt.Sprintf("%s/%d", subject, int(tier))
}
