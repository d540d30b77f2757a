package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"adaptive-quiz-service/internal/domain"
)

// Users is the registry of known users and their latest attempt per subject.
type Users struct {
	repo  UserRepository
	locks keyedLocks
}

func NewUsers(repo UserRepository) *Users {
	return &Users{repo: repo}
}

// Upsert creates the user, renames it, or does nothing when the name is unchanged.
func (u *Users) Upsert(ctx context.Context, userID, name string) error {
	if strings.TrimSpace(userID) == "" {
		return &domain.ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	lock := u.locks.get(userID)
	lock.Lock()
	defer lock.Unlock()

	record, err := u.repo.GetUser(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		record = domain.NewUserRecord(userID, name)
	case err != nil:
		return fmt.Errorf("get user %s: %w", userID, err)
	case record.Name == name:
		return nil
	default:
		record.Name = name
	}
	if err := u.repo.SaveUser(ctx, record); err != nil {
		return fmt.Errorf("save user %s: %w", userID, err)
	}
	return nil
}

// RecordAttempt overwrites the user's grade and score for subject.
func (u *Users) RecordAttempt(ctx context.Context, userID, subject string, tier domain.Tier, score int) error {
	if _, err := domain.ParseTier(int(tier)); err != nil {
		return err
	}
	lock := u.locks.get(userID)
	lock.Lock()
	defer lock.Unlock()

	record, err := u.repo.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", userID, domain.ErrUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("get user %s: %w", userID, err)
	}
	record.RecordAttempt(subject, tier, score)
	if err := u.repo.SaveUser(ctx, record); err != nil {
		return fmt.Errorf("save user %s: %w", userID, err)
	}
	return nil
}

func (u *Users) Get(ctx context.Context, userID string) (domain.UserRecord, error) {
	lock := u.locks.get(userID)
	lock.RLock()
	defer lock.RUnlock()

	record, err := u.repo.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.UserRecord{}, fmt.Errorf("%s: %w", userID, domain.ErrUserNotFound)
	}
	if err != nil {
		return domain.UserRecord{}, err
	}
	return record.Clone(), nil
}
