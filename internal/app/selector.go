package app

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"adaptive-quiz-service/internal/domain"
)

const (
	// EvaluationCount is the size of a subject-only placement quiz.
	EvaluationCount = 10
	// MainQuizCount is the size of a tiered quiz.
	MainQuizCount = 20
)

// Sample is the question sequence for one session.
type Sample struct {
	Questions []domain.Question
	Shortfall int
}

// Selector draws quiz samples with its own random source.
type Selector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSelector seeds the selector; a fixed seed gives reproducible samples.
func NewSelector(seed int64) *Selector {
	return &Selector{rnd: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededSelector is the production constructor.
func NewTimeSeededSelector() *Selector {
	return NewSelector(time.Now().UnixNano())
}

// Sample returns count questions chosen uniformly without replacement, in the
// order they were drawn. Smaller collections are returned whole with a shortfall.
func (s *Selector) Sample(questions []domain.Question, count int) (Sample, error) {
	if count <= 0 {
		return Sample{}, &domain.PreconditionError{Op: "sample", Reason: fmt.Sprintf("count %d must be positive", count)}
	}
	if len(questions) < count {
		return Sample{
			Questions: cloneQuestions(questions),
			Shortfall: count - len(questions),
		}, nil
	}

	idx := make([]int, len(questions))
	for i := range idx {
		idx[i] = i
	}

	s.mu.Lock()
	// partial Fisher-Yates: the first count slots end up uniformly chosen
	for i := 0; i < count; i++ {
		j := i + s.rnd.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	s.mu.Unlock()

	out := make([]domain.Question, count)
	for i := 0; i < count; i++ {
		out[i] = cloneQuestion(questions[idx[i]])
	}
	return Sample{Questions: out}, nil
}
