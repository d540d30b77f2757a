package app

import (
	"fmt"
	"sync"

	"adaptive-quiz-service/internal/domain"
)

// SessionState tracks where a session is in its lifecycle.
type SessionState int

const (
	StateNotStarted SessionState = iota
	StateInProgress
	StateComplete
)

func (s SessionState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// AnswerResult is the outcome of one Advance call.
type AnswerResult struct {
	Index        int
	Question     domain.Question
	Chosen       string
	Correct      bool
	CorrectCount int
	Complete     bool
}

// Progress is a read-only view of a session.
type Progress struct {
	State   SessionState
	Index   int
	Total   int
	Correct int
}

// Session walks one user through a fixed sequence of questions and scores it.
type Session struct {
	id     string
	userID string
	name   string
	key    domain.CollectionKey

	mu        sync.Mutex
	questions []domain.Question
	index     int
	correct   int
	state     SessionState
}

// NewSession rejects empty question sequences up front so scoring can never divide by zero.
func NewSession(id, userID, name string, key domain.CollectionKey, questions []domain.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, &domain.PreconditionError{Op: "new session", Reason: "a session needs at least one question"}
	}
	return &Session{
		id:        id,
		userID:    userID,
		name:      name,
		key:       key,
		questions: cloneQuestions(questions),
		state:     StateNotStarted,
	}, nil
}

func (s *Session) ID() string                { return s.id }
func (s *Session) UserID() string            { return s.userID }
func (s *Session) Name() string              { return s.name }
func (s *Session) Key() domain.CollectionKey { return s.key }

// Questions returns a copy of the session's question sequence.
func (s *Session) Questions() []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneQuestions(s.questions)
}

// Current returns the question awaiting an answer; ok is false once complete.
func (s *Session) Current() (q domain.Question, index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateComplete {
		return domain.Question{}, s.index, false
	}
	return cloneQuestion(s.questions[s.index]), s.index, true
}

// Advance scores option against the current question and moves to the next one.
func (s *Session) Advance(option string) (AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateComplete {
		return AnswerResult{}, domain.ErrSessionComplete
	}
	s.state = StateInProgress

	q := s.questions[s.index]
	correct := q.IsCorrect(option)
	if correct {
		s.correct++
	}
	result := AnswerResult{
		Index:    s.index,
		Question: cloneQuestion(q),
		Chosen:   option,
		Correct:  correct,
	}

	s.index++
	if s.index == len(s.questions) {
		s.state = StateComplete
	}
	result.CorrectCount = s.correct
	result.Complete = s.state == StateComplete
	return result, nil
}

// Finalize returns the percentage score of a completed session.
func (s *Session) Finalize() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateComplete {
		return 0, &domain.PreconditionError{
			Op:     "finalize",
			Reason: fmt.Sprintf("session answered %d of %d questions", s.index, len(s.questions)),
		}
	}
	return Percentage(s.correct, len(s.questions))
}

func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{
		State:   s.state,
		Index:   s.index,
		Total:   len(s.questions),
		Correct: s.correct,
	}
}

// Percentage is floor(correct*100/total).
func Percentage(correct, total int) (int, error) {
	if total < 1 {
		return 0, &domain.PreconditionError{Op: "percentage", Reason: "total questions must be at least 1"}
	}
	if correct < 0 || correct > total {
		return 0, &domain.PreconditionError{Op: "percentage", Reason: fmt.Sprintf("correct count %d outside 0..%d", correct, total)}
	}
	return correct * 100 / total, nil
}
