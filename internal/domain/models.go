package domain

// DefaultSubjects are the subjects offered by the quiz and pre-seeded in new databases.
var DefaultSubjects = []string{"History", "Physics", "Mathematics", "Economics", "English"}

// LeaderboardEntry is one user's line in a (subject, tier) bucket.
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

// UserRecord keeps a user's display name and their latest attempt per subject.
type UserRecord struct {
	UserID   string            `json:"user_id"`
	Name     string            `json:"name"`
	Subjects []string          `json:"subjects"`
	Grades   map[string]string `json:"grades"`
	Scores   map[string]int    `json:"scores"`
}

func NewUserRecord(userID, name string) UserRecord {
	return UserRecord{
		UserID:   userID,
		Name:     name,
		Subjects: []string{},
		Grades:   make(map[string]string),
		Scores:   make(map[string]int),
	}
}

// RecordAttempt overwrites the grade and score kept for subject.
func (u *UserRecord) RecordAttempt(subject string, tier Tier, score int) {
	if !u.HasSubject(subject) {
		u.Subjects = append(u.Subjects, subject)
	}
	if u.Grades == nil {
		u.Grades = make(map[string]string)
	}
	if u.Scores == nil {
		u.Scores = make(map[string]int)
	}
	u.Grades[subject] = tier.Name()
	u.Scores[subject] = score
}

func (u UserRecord) HasSubject(subject string) bool {
	for _, s := range u.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stored records are never shared with callers.
func (u UserRecord) Clone() UserRecord {
	out := u
	out.Subjects = append([]string{}, u.Subjects...)
	out.Grades = make(map[string]string, len(u.Grades))
	for k, v := range u.Grades {
		out.Grades[k] = v
	}
	out.Scores = make(map[string]int, len(u.Scores))
	for k, v := range u.Scores {
		out.Scores[k] = v
	}
	return out
}

// Database is the root persisted document: users by id and leaderboard
// buckets by subject, then tier name.
type Database struct {
	Users       map[string]UserRecord                    `json:"users"`
	Leaderboard map[string]map[string][]LeaderboardEntry `json:"leaderboard"`
}

// NewDatabase returns an empty document with a bucket for every default subject and tier.
func NewDatabase() Database {
	db := Database{
		Users:       make(map[string]UserRecord),
		Leaderboard: make(map[string]map[string][]LeaderboardEntry),
	}
	for _, subject := range DefaultSubjects {
		db.Leaderboard[subject] = make(map[string][]LeaderboardEntry)
		for _, tier := range Tiers() {
			db.Leaderboard[subject][tier.Name()] = []LeaderboardEntry{}
		}
	}
	return db
}
