package domain

import (
	"fmt"
	"strings"
)

// Tier is one of the five skill levels a quiz is generated for.
type Tier int

const (
	TierPrimarySchool Tier = iota + 1
	TierSeniorSchool
	TierCollege
	TierProfessional
	TierMaster
)

var tierNames = map[Tier]string{
	TierPrimarySchool: "Primary School",
	TierSeniorSchool:  "Senior School",
	TierCollege:       "College",
	TierProfessional:  "Professional",
	TierMaster:        "Master",
}

// EvaluationLevel is the level name sent to generators for evaluation collections,
// which have no tier of their own.
const EvaluationLevel = "Mixed (Primary School to Master)"

// Tiers returns every valid tier in ascending order.
func Tiers() []Tier {
	return []Tier{TierPrimarySchool, TierSeniorSchool, TierCollege, TierProfessional, TierMaster}
}

// ParseTier maps the integer form of a tier, rejecting anything outside 1..5.
func ParseTier(n int) (Tier, error) {
	t := Tier(n)
	if !t.Valid() {
		return 0, &ValidationError{Field: "tier", Reason: fmt.Sprintf("%d is not between 1 and 5", n)}
	}
	return t, nil
}

// TierFromName is the inverse of Tier.Name. Matching ignores case and surrounding space.
func TierFromName(name string) (Tier, error) {
	want := normalize(name)
	for _, t := range Tiers() {
		if normalize(tierNames[t]) == want {
			return t, nil
		}
	}
	return 0, &ValidationError{Field: "tier", Reason: fmt.Sprintf("unknown tier name %q", name)}
}

func (t Tier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

// Name returns the display name, or "" for invalid tiers.
func (t Tier) Name() string {
	return tierNames[t]
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// CollectionKey identifies one persisted question collection.
// A zero Tier means the subject's evaluation collection.
type CollectionKey struct {
	Subject string
	Tier    Tier
}

func EvaluationKey(subject string) CollectionKey {
	return CollectionKey{Subject: subject}
}

func QuizKey(subject string, tier Tier) CollectionKey {
	return CollectionKey{Subject: subject, Tier: tier}
}

func (k CollectionKey) IsEvaluation() bool {
	return k.Tier == 0
}

// Level is the difficulty label handed to content generators.
func (k CollectionKey) Level() string {
	if k.IsEvaluation() {
		return EvaluationLevel
	}
	return k.Tier.Name()
}

// String renders the storage stem, e.g. "history_evaluation" or "history_grade_3".
func (k CollectionKey) String() string {
	subject := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k.Subject)), " ", "_")
	if k.IsEvaluation() {
		return subject + "_evaluation"
	}
	return fmt.Sprintf("%s_grade_%d", subject, int(k.Tier))
}

func (k CollectionKey) Validate() error {
	if strings.TrimSpace(k.Subject) == "" {
		return &ValidationError{Field: "subject", Reason: "must not be empty"}
	}
	if !k.IsEvaluation() && !k.Tier.Valid() {
		_, err := ParseTier(int(k.Tier))
		return err
	}
	return nil
}
