package app

import (
	"context"
	"log"

	"adaptive-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// QuizCounts sets how many questions each kind of session draws.
type QuizCounts struct {
	Evaluation int
	Main       int
}

// QuizService contains the quiz use cases driven by the presentation layer.
type QuizService struct {
	questions *QuestionStore
	selector  *Selector
	board     *Leaderboard
	users     *Users
	sessions  SessionRepository
	counts    QuizCounts
	newID     func() string
}

func NewQuizService(questions *QuestionStore, selector *Selector, board *Leaderboard, users *Users, sessions SessionRepository, counts QuizCounts) *QuizService {
	if counts.Evaluation <= 0 {
		counts.Evaluation = EvaluationCount
	}
	if counts.Main <= 0 {
		counts.Main = MainQuizCount
	}
	return &QuizService{
		questions: questions,
		selector:  selector,
		board:     board,
		users:     users,
		sessions:  sessions,
		counts:    counts,
		newID:     uuid.NewString,
	}
}

// Started is returned when a session begins. Shortfall > 0 means the
// session holds fewer questions than a full quiz.
type Started struct {
	Session   *Session
	Shortfall int
}

// Result summarizes a finished session.
type Result struct {
	SessionID string
	Key       domain.CollectionKey
	Score     int
	Correct   int
	Total     int
	// RecommendedTier is set for evaluation sessions only.
	RecommendedTier domain.Tier
	// Leaderboard is the bucket after recording a tiered quiz.
	Leaderboard []domain.LeaderboardEntry
}

// StartEvaluation begins a subject-only placement quiz.
func (s *QuizService) StartEvaluation(ctx context.Context, userID, name, subject string) (Started, error) {
	return s.start(ctx, userID, name, domain.EvaluationKey(subject), s.counts.Evaluation)
}

// StartQuiz begins a tiered quiz whose result goes on the leaderboard.
func (s *QuizService) StartQuiz(ctx context.Context, userID, name, subject string, tier domain.Tier) (Started, error) {
	if _, err := domain.ParseTier(int(tier)); err != nil {
		return Started{}, err
	}
	return s.start(ctx, userID, name, domain.QuizKey(subject, tier), s.counts.Main)
}

func (s *QuizService) start(ctx context.Context, userID, name string, key domain.CollectionKey, count int) (Started, error) {
	if err := key.Validate(); err != nil {
		return Started{}, err
	}
	inv, err := s.questions.EnsureInventory(ctx, key, count)
	if err != nil {
		return Started{}, err
	}
	sample, err := s.selector.Sample(inv.Questions, count)
	if err != nil {
		return Started{}, err
	}
	if sample.Shortfall > 0 {
		log.Printf("session for %s: only %d of %d questions available", key, len(sample.Questions), count)
	}
	if err := s.users.Upsert(ctx, userID, name); err != nil {
		return Started{}, err
	}

	session, err := NewSession(s.newID(), userID, name, key, sample.Questions)
	if err != nil {
		return Started{}, err
	}
	s.sessions.Put(session)
	return Started{Session: session, Shortfall: sample.Shortfall}, nil
}

// Answer submits the chosen option for the session's current question.
func (s *QuizService) Answer(_ context.Context, sessionID, option string) (AnswerResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return AnswerResult{}, domain.ErrSessionNotFound
	}
	return session.Advance(option)
}

// Finish scores a completed session. Tiered quizzes update the user's record
// and the leaderboard; evaluations only suggest a tier.
func (s *QuizService) Finish(ctx context.Context, sessionID string) (Result, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Result{}, domain.ErrSessionNotFound
	}
	score, err := session.Finalize()
	if err != nil {
		return Result{}, err
	}

	progress := session.Progress()
	key := session.Key()
	res := Result{
		SessionID: sessionID,
		Key:       key,
		Score:     score,
		Correct:   progress.Correct,
		Total:     progress.Total,
	}

	if key.IsEvaluation() {
		res.RecommendedTier = RecommendTier(score)
	} else {
		if err := s.users.Upsert(ctx, session.UserID(), session.Name()); err != nil {
			return Result{}, err
		}
		if err := s.users.RecordAttempt(ctx, session.UserID(), key.Subject, key.Tier, score); err != nil {
			return Result{}, err
		}
		board, err := s.board.Record(ctx, key.Subject, key.Tier, session.UserID(), session.Name(), score)
		if err != nil {
			return Result{}, err
		}
		res.Leaderboard = board
	}

	s.sessions.Delete(sessionID)
	return res, nil
}

// Leave abandons a session without recording anything.
func (s *QuizService) Leave(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}

func (s *QuizService) Leaderboard(ctx context.Context, subject string, tier domain.Tier) ([]domain.LeaderboardEntry, error) {
	return s.board.Top(ctx, subject, tier)
}

func (s *QuizService) User(ctx context.Context, userID string) (domain.UserRecord, error) {
	return s.users.Get(ctx, userID)
}

// RecommendTier maps an evaluation score to a starting tier in bands of 20 points.
func RecommendTier(score int) domain.Tier {
	switch {
	case score < 20:
		return domain.TierPrimarySchool
	case score < 40:
		return domain.TierSeniorSchool
	case score < 60:
		return domain.TierCollege
	case score < 80:
		return domain.TierProfessional
	default:
		return domain.TierMaster
	}
}
