package app_test

import (
	"context"
	"fmt"
	"sync"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
)

// scriptedGenerator replays batches in order, then falls back to fresh
// unique questions (or errors when exhausted is set).
type scriptedGenerator struct {
	mu        sync.Mutex
	batches   [][]domain.Question
	errs      []error
	exhausted error
	calls     int
	requests  []app.BatchRequest
	next      int
}

func (g *scriptedGenerator) GenerateBatch(_ context.Context, req app.BatchRequest) ([]domain.Question, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.requests = append(g.requests, req)

	i := g.calls - 1
	if i < len(g.errs) && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	if i < len(g.batches) {
		return g.batches[i], nil
	}
	if g.exhausted != nil {
		return nil, g.exhausted
	}
	out := make([]domain.Question, req.Count)
	for j := range out {
		out[j] = question(fmt.Sprintf("gen-%d", g.next))
		g.next++
	}
	return out, nil
}

func (g *scriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// question builds a valid question whose text and answer are derived from id.
func question(id string) domain.Question {
	return domain.Question{
		Text:          "What is " + id + "?",
		Options:       []string{"answer " + id, "wrong a " + id, "wrong b " + id, "wrong c " + id},
		CorrectAnswer: "answer " + id,
		Explanation:   "It is " + id + ".",
		Difficulty:    5,
		Concept:       "testing",
	}
}

func questions(prefix string, n int) []domain.Question {
	out := make([]domain.Question, n)
	for i := range out {
		out[i] = question(fmt.Sprintf("%s-%d", prefix, i))
	}
	return out
}

func noPause() app.InventoryPolicy {
	p := app.DefaultInventoryPolicy()
	p.Pause = 0
	return p
}
