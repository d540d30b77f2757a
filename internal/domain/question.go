package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// Question is an immutable multiple-choice item. JSON names follow the stored document format.
type Question struct {
	Text          string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
	Explanation   string     `json:"explanation"`
	Difficulty    Difficulty `json:"difficulty"`
	Concept       string     `json:"concept"`
}

// Difficulty is a 1-10 rating. Generators sometimes emit it as a string ("7"),
// so decoding accepts both numbers and numeric strings and truncates fractions.
type Difficulty int

func (d *Difficulty) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*d = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("difficulty %s is not a number", string(data))
	}
	*d = Difficulty(int(f))
	return nil
}

func (d Difficulty) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(d))
}

// Stars is the 1-5 star rating shown next to a question.
func (d Difficulty) Stars() int {
	return (int(d) + 1) / 2
}

// Validate checks that every field is present and the options are consistent.
func (q Question) Validate() error {
	switch {
	case strings.TrimSpace(q.Text) == "":
		return &ValidationError{Field: "question", Reason: "missing"}
	case strings.TrimSpace(q.CorrectAnswer) == "":
		return &ValidationError{Field: "correct_answer", Reason: "missing"}
	case strings.TrimSpace(q.Explanation) == "":
		return &ValidationError{Field: "explanation", Reason: "missing"}
	case strings.TrimSpace(q.Concept) == "":
		return &ValidationError{Field: "concept", Reason: "missing"}
	case q.Difficulty < 1 || q.Difficulty > 10:
		return &ValidationError{Field: "difficulty", Reason: fmt.Sprintf("%d is outside 1-10", q.Difficulty)}
	case len(q.Options) != OptionCount:
		return &ValidationError{Field: "options", Reason: fmt.Sprintf("want %d options, got %d", OptionCount, len(q.Options))}
	}

	seen := make(map[string]struct{}, len(q.Options))
	hasAnswer := false
	for _, opt := range q.Options {
		n := normalize(opt)
		if n == "" {
			return &ValidationError{Field: "options", Reason: "empty option"}
		}
		if _, dup := seen[n]; dup {
			return &ValidationError{Field: "options", Reason: fmt.Sprintf("duplicate option %q", opt)}
		}
		seen[n] = struct{}{}
		if opt == q.CorrectAnswer {
			hasAnswer = true
		}
	}
	if !hasAnswer {
		return &ValidationError{Field: "correct_answer", Reason: "not one of the options"}
	}
	return nil
}

// SimilarTo reports whether two questions count as duplicates: same normalized
// text, or same normalized correct answer.
func (q Question) SimilarTo(other Question) bool {
	return normalize(q.Text) == normalize(other.Text) ||
		normalize(q.CorrectAnswer) == normalize(other.CorrectAnswer)
}

// IsCorrect compares a chosen option to the answer by exact string equality.
func (q Question) IsCorrect(option string) bool {
	return option == q.CorrectAnswer
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
