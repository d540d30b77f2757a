package questiongen

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// BankGenerator serves questions from a hand-written YAML bank. It lets the
// quiz run offline and seeds collections deterministically:
//
//	collections:
//	  - subject: History
//	    level: College            # a tier name, or "evaluation"
//	    questions:
//	      - question: Who ...?
//	        options: [a, b, c, d]
//	        correct_answer: a
//	        explanation: ...
//	        difficulty: 4
//	        concept: ...
//
// Each call returns the next Count questions of the matching collection and
// wraps around, so repeated calls eventually only yield duplicates.
type BankGenerator struct {
	mu      sync.Mutex
	banks   map[string][]domain.Question
	cursors map[string]int
}

type bankFile struct {
	Collections []bankCollection `yaml:"collections"`
}

type bankCollection struct {
	Subject   string         `yaml:"subject"`
	Level     string         `yaml:"level"`
	Questions []bankQuestion `yaml:"questions"`
}

type bankQuestion struct {
	Question      string   `yaml:"question"`
	Options       []string `yaml:"options"`
	CorrectAnswer string   `yaml:"correct_answer"`
	Explanation   string   `yaml:"explanation"`
	Difficulty    int      `yaml:"difficulty"`
	Concept       string   `yaml:"concept"`
}

// LoadBank reads a YAML bank from path.
func LoadBank(path string) (*BankGenerator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBank(data)
}

func ParseBank(data []byte) (*BankGenerator, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}

	g := &BankGenerator{
		banks:   make(map[string][]domain.Question),
		cursors: make(map[string]int),
	}
	for _, c := range f.Collections {
		level, err := bankLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", c.Subject, err)
		}
		key := bankKey(c.Subject, level)
		for _, q := range c.Questions {
			g.banks[key] = append(g.banks[key], domain.Question{
				Text:          q.Question,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
				Difficulty:    domain.Difficulty(q.Difficulty),
				Concept:       q.Concept,
			})
		}
	}
	return g, nil
}

func (g *BankGenerator) GenerateBatch(_ context.Context, req app.BatchRequest) ([]domain.Question, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := bankKey(req.Subject, req.Level)
	bank := g.banks[key]
	if len(bank) == 0 {
		return nil, fmt.Errorf("question bank has no %s questions at %s level", req.Subject, req.Level)
	}

	out := make([]domain.Question, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		q := bank[g.cursors[key]%len(bank)]
		q.Options = append([]string(nil), q.Options...)
		out = append(out, q)
		g.cursors[key]++
	}
	return out, nil
}

// Size reports how many questions the bank holds for subject and level.
func (g *BankGenerator) Size(subject, level string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.banks[bankKey(subject, level)])
}

// bankLevel maps the YAML level onto the level string the question store requests.
func bankLevel(level string) (string, error) {
	if strings.EqualFold(strings.TrimSpace(level), "evaluation") {
		return domain.EvaluationLevel, nil
	}
	tier, err := domain.TierFromName(level)
	if err != nil {
		return "", err
	}
	return tier.Name(), nil
}

func bankKey(subject, level string) string {
	return strings.ToLower(strings.TrimSpace(subject)) + "|" + strings.ToLower(strings.TrimSpace(level))
}
