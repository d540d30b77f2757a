package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"adaptive-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// InventoryPolicy bounds how hard EnsureInventory tries to reach its target.
type InventoryPolicy struct {
	// BatchSize is the number of candidates requested per generator call.
	BatchSize int
	// MaxEmptyBatches stops generation after this many consecutive batches added nothing.
	MaxEmptyBatches int
	// MaxBatches caps generator calls for a single EnsureInventory call.
	MaxBatches int
	// Pause is the minimum spacing between generator calls.
	Pause time.Duration
	// FillTimeout bounds one shared fill. Fills run detached from the caller
	// that started them, so a cancelled caller does not cut short the others.
	FillTimeout time.Duration
}

func DefaultInventoryPolicy() InventoryPolicy {
	return InventoryPolicy{
		BatchSize:       10,
		MaxEmptyBatches: 3,
		MaxBatches:      10,
		Pause:           2 * time.Second,
		FillTimeout:     5 * time.Minute,
	}
}

func (p InventoryPolicy) withDefaults() InventoryPolicy {
	def := DefaultInventoryPolicy()
	if p.BatchSize <= 0 {
		p.BatchSize = def.BatchSize
	}
	if p.MaxEmptyBatches <= 0 {
		p.MaxEmptyBatches = def.MaxEmptyBatches
	}
	if p.MaxBatches <= 0 {
		p.MaxBatches = def.MaxBatches
	}
	if p.Pause < 0 {
		p.Pause = 0
	}
	if p.FillTimeout <= 0 {
		p.FillTimeout = def.FillTimeout
	}
	return p
}

// Inventory is the outcome of EnsureInventory. Shortfall > 0 means the
// collection is smaller than requested; callers should expect shorter quizzes.
type Inventory struct {
	Key        domain.CollectionKey
	Questions  []domain.Question
	Requested  int
	Shortfall  int
	Batches    int
	Rejected   int
	Duplicates int
	Failures   int
}

// QuestionStore owns the persisted question collections and grows them on demand.
type QuestionStore struct {
	repo    CollectionRepository
	gen     Generator
	policy  InventoryPolicy
	limiter *rate.Limiter
	sf      singleflight.Group
	locks   keyedLocks
}

func NewQuestionStore(repo CollectionRepository, gen Generator, policy InventoryPolicy) *QuestionStore {
	policy = policy.withDefaults()
	return &QuestionStore{
		repo:    repo,
		gen:     gen,
		policy:  policy,
		limiter: rate.NewLimiter(rate.Every(policy.Pause), 1),
	}
}

// EnsureInventory makes sure the collection for key holds at least minCount
// questions, generating and deduplicating new batches as needed. Generator
// failures are absorbed; an error is returned only for bad arguments,
// storage failures, or when the collection is still empty.
func (s *QuestionStore) EnsureInventory(ctx context.Context, key domain.CollectionKey, minCount int) (Inventory, error) {
	if minCount <= 0 {
		return Inventory{}, &domain.PreconditionError{Op: "ensure inventory", Reason: fmt.Sprintf("min count %d must be positive", minCount)}
	}
	if err := key.Validate(); err != nil {
		return Inventory{}, err
	}

	// Concurrent callers asking for the same target share one fill. Each
	// caller stops waiting when its own context ends.
	ch := s.sf.DoChan(fmt.Sprintf("%s/%d", key, minCount), func() (interface{}, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.policy.FillTimeout)
		defer cancel()
		return s.fill(fillCtx, key, minCount)
	})
	select {
	case <-ctx.Done():
		return Inventory{}, ctx.Err()
	case res := <-ch:
		inv, _ := res.Val.(Inventory)
		inv.Questions = cloneQuestions(inv.Questions)
		return inv, res.Err
	}
}

// Collection returns a snapshot of the stored collection without generating anything.
func (s *QuestionStore) Collection(ctx context.Context, key domain.CollectionKey) ([]domain.Question, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	lock := s.locks.get(key.String())
	lock.RLock()
	defer lock.RUnlock()

	questions, err := s.repo.LoadCollection(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return cloneQuestions(questions), nil
}

func (s *QuestionStore) fill(ctx context.Context, key domain.CollectionKey, minCount int) (Inventory, error) {
	lock := s.locks.get(key.String())
	lock.Lock()
	defer lock.Unlock()

	questions, err := s.repo.LoadCollection(ctx, key)
	if err != nil {
		return Inventory{}, fmt.Errorf("load %s: %w", key, err)
	}
	questions = cloneQuestions(questions)
	inv := Inventory{Key: key, Requested: minCount}

	emptyStreak := 0
	for len(questions) < minCount && emptyStreak < s.policy.MaxEmptyBatches && inv.Batches < s.policy.MaxBatches {
		if err := s.limiter.Wait(ctx); err != nil {
			log.Printf("inventory %s: stopping generation: %v", key, err)
			break
		}
		inv.Batches++

		candidates, err := s.gen.GenerateBatch(ctx, BatchRequest{
			Subject: key.Subject,
			Level:   key.Level(),
			Count:   s.policy.BatchSize,
		})
		if err != nil {
			inv.Failures++
			emptyStreak++
			log.Printf("inventory %s: batch %d failed: %v", key, inv.Batches, err)
			continue
		}

		var added int
		questions, added = mergeCandidates(questions, candidates, &inv)
		log.Printf("inventory %s: batch %d added %d of %d candidates (%d/%d)", key, inv.Batches, added, len(candidates), len(questions), minCount)
		if added == 0 {
			emptyStreak++
			continue
		}
		emptyStreak = 0

		if err := s.repo.SaveCollection(ctx, key, questions); err != nil {
			return Inventory{}, fmt.Errorf("save %s: %w", key, err)
		}
	}

	inv.Questions = questions
	if short := minCount - len(questions); short > 0 {
		inv.Shortfall = short
		log.Printf("inventory %s: shortfall of %d questions after %d batches", key, short, inv.Batches)
	}
	if len(questions) == 0 {
		return inv, fmt.Errorf("%s: %w", key, domain.ErrNoQuestions)
	}
	return inv, nil
}

// mergeCandidates appends every valid candidate not similar to a question
// already present, including ones accepted earlier in the same batch.
func mergeCandidates(existing, candidates []domain.Question, inv *Inventory) ([]domain.Question, int) {
	added := 0
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			inv.Rejected++
			continue
		}
		if containsSimilar(existing, c) {
			inv.Duplicates++
			continue
		}
		existing = append(existing, cloneQuestion(c))
		added++
	}
	return existing, added
}

func containsSimilar(questions []domain.Question, candidate domain.Question) bool {
	for _, q := range questions {
		if q.SimilarTo(candidate) {
			return true
		}
	}
	return false
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

func cloneQuestions(questions []domain.Question) []domain.Question {
	if questions == nil {
		return nil
	}
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		out[i] = cloneQuestion(q)
	}
	return out
}
