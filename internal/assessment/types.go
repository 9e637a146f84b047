// Package assessment implements the fatigue assessment core: answer
// validation, score derivation, fatigue-type classification, and the
// repository contract for persisted assessments.
package assessment

import (
	"errors"
	"time"
)

// Likert answer bounds. Every persisted or scored answer is in [AnswerMin, AnswerMax].
const (
	AnswerMin = 1
	AnswerMax = 4
)

// Fixed section lengths of the question set.
const (
	Section1Len = 6
	Section2Len = 6
	Section3Len = 4
	TotalLen    = Section1Len + Section2Len + Section3Len
)

var (
	// ErrInvalidAnswer reports a single answer outside {1,2,3,4}.
	ErrInvalidAnswer = errors.New("answer must be an integer between 1 and 4")
	// ErrInvalidAssessmentInput reports a malformed answer set (wrong section
	// lengths or out-of-range entries) rejected before any computation.
	ErrInvalidAssessmentInput = errors.New("invalid assessment input")
	// ErrNotFound reports a lookup miss for a public identifier.
	ErrNotFound = errors.New("assessment not found")
)

// FatigueType is one of the nine fixed archetype labels.
type FatigueType string

const (
	TypeMild        FatigueType = "軽疲労"
	TypeInsensitive FatigueType = "鈍感疲労"
	TypeBlind       FatigueType = "盲目疲労"
	TypeSensitive   FatigueType = "敏感疲労"
	TypeBalanced    FatigueType = "バランス疲労"
	TypeOverlooked  FatigueType = "見過ごし疲労"
	TypeHyper       FatigueType = "過敏疲労"
	TypeAmplified   FatigueType = "拡大疲労"
	TypeCritical    FatigueType = "限界疲労"
)

// ScoreSet holds the four derived metrics, each in [0,100], plus the
// classified fatigue type. Immutable once attached to an Assessment.
type ScoreSet struct {
	FatigueType   FatigueType `json:"fatigue_type"`
	BrainFatigue  float64     `json:"brain_fatigue"`
	MentalFatigue float64     `json:"mental_fatigue"`
	FatigueSource float64     `json:"fatigue_source"`
	Resilience    float64     `json:"resilience"`
}

// Assessment is one completed, persisted questionnaire submission.
type Assessment struct {
	PublicID      string    `json:"public_id"`
	RespondentRef string    `json:"respondent_ref,omitempty"`
	Section1      []int     `json:"section1_responses"`
	Section2      []int     `json:"section2_responses"`
	Section3      []int     `json:"section3_responses"`
	Scores        ScoreSet  `json:"scores"`
	Advice        string    `json:"advice,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewAssessment carries the fields of an assessment about to be persisted.
// The public identifier and creation timestamp are assigned by the repository.
type NewAssessment struct {
	RespondentRef string
	Section1      []int
	Section2      []int
	Section3      []int
	Scores        ScoreSet
}

// ValidAnswer reports whether v is an acceptable Likert answer.
func ValidAnswer(v int) bool {
	return v >= AnswerMin && v <= AnswerMax
}

func validAnswers(answers []int) bool {
	for _, v := range answers {
		if !ValidAnswer(v) {
			return false
		}
	}
	return true
}
