// Package intake tracks a respondent's progress through the questionnaire:
// a per-session state machine that accumulates validated answers in prompt
// order across the three sections.
package intake

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"yoxo/internal/assessment"
	"yoxo/internal/questionnaire"
)

var (
	// ErrSessionNotFound reports an unknown or expired intake token.
	ErrSessionNotFound = errors.New("intake session not found")
	// ErrSessionComplete reports an answer submitted after the final section.
	ErrSessionComplete = errors.New("intake session already complete")
	// ErrSectionMismatch reports a whole-section commit that does not line up
	// with the session's progress.
	ErrSectionMismatch = errors.New("section does not match session progress")
)

// Event describes the state transition caused by an accepted submission.
type Event int

const (
	// EventAdvanced means the session moved to the next prompt within the
	// current section.
	EventAdvanced Event = iota
	// EventSectionComplete means the current section finished and the session
	// advanced to the next one.
	EventSectionComplete
	// EventAllComplete means the final section finished; the full answer
	// sequence is ready for scoring.
	EventAllComplete
	// EventAlreadyCommitted means a duplicate commit for an already-completed
	// section was ignored. Nothing was appended.
	EventAlreadyCommitted
)

// Session is the canonical intake accumulation state. Answers are appended
// strictly in prompt order and never mutated or reordered; their count never
// exceeds the total prompt count.
//
// The store hands out one shared *Session per token, so all methods are safe
// for concurrent use. The exported fields exist for inspection in tests;
// request handlers read state through Progress instead.
type Session struct {
	Token         string    `json:"token"`
	RespondentRef string    `json:"respondentRef,omitempty"`
	Section       int       `json:"section"`
	Question      int       `json:"question"`
	Answers       []int     `json:"answers"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	mu         sync.Mutex
	submitting bool
}

// Progress is a read-consistent view of a session's position, safe to take
// while other requests for the same token are in flight.
type Progress struct {
	Token    string
	Section  int
	Question int
	Answered int
	Complete bool
}

// Start opens a new intake session at the first prompt of the first section.
func Start(respondentRef string) *Session {
	now := time.Now()
	return &Session{
		Token:         ksuid.New().String(),
		RespondentRef: respondentRef,
		Answers:       make([]int, 0, questionnaire.TotalPrompts()),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Complete reports whether every section has been answered.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete()
}

func (s *Session) complete() bool {
	return s.Section >= questionnaire.SectionCount()
}

// Progress returns a snapshot of the session's position.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{
		Token:    s.Token,
		Section:  s.Section,
		Question: s.Question,
		Answered: len(s.Answers),
		Complete: s.complete(),
	}
}

// SubmitAnswer accepts the answer for the current prompt and advances the
// session. An out-of-range value is rejected with ErrInvalidAnswer and the
// session is left unchanged.
func (s *Session) SubmitAnswer(value int) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.complete() {
		return 0, ErrSessionComplete
	}
	if !assessment.ValidAnswer(value) {
		return 0, fmt.Errorf("%w: got %d", assessment.ErrInvalidAnswer, value)
	}

	s.Answers = append(s.Answers, value)
	s.Question++
	s.UpdatedAt = time.Now()

	if s.Question < questionnaire.PromptCount(s.Section) {
		return EventAdvanced, nil
	}

	s.Section++
	s.Question = 0
	if s.complete() {
		return EventAllComplete, nil
	}
	return EventSectionComplete, nil
}

// CommitSection accepts all answers for one section at once. This is the
// reload/resubmission path: committing a section the session has already
// completed is ignored rather than appended twice, and a commit ahead of the
// session's progress is rejected. Invalid answers leave the session unchanged.
func (s *Session) CommitSection(index int, answers []int) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= questionnaire.SectionCount() {
		return 0, fmt.Errorf("%w: no section %d", ErrSectionMismatch, index)
	}
	if index < s.Section {
		return EventAlreadyCommitted, nil
	}
	if index > s.Section {
		return 0, fmt.Errorf("%w: section %d submitted while section %d is in progress",
			ErrSectionMismatch, index, s.Section)
	}
	if s.Question != 0 {
		return 0, fmt.Errorf("%w: section %d is partially answered", ErrSectionMismatch, index)
	}
	if want := questionnaire.PromptCount(index); len(answers) != want {
		return 0, fmt.Errorf("%w: expected %d answers for section %d, got %d",
			assessment.ErrInvalidAssessmentInput, want, index, len(answers))
	}
	for _, v := range answers {
		if !assessment.ValidAnswer(v) {
			return 0, fmt.Errorf("%w: got %d", assessment.ErrInvalidAnswer, v)
		}
	}

	s.Answers = append(s.Answers, answers...)
	s.Section++
	s.UpdatedAt = time.Now()

	if s.complete() {
		return EventAllComplete, nil
	}
	return EventSectionComplete, nil
}

// Responses returns a copy of the full ordered answer sequence once the
// session is complete.
func (s *Session) Responses() ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.complete() {
		return nil, fmt.Errorf("intake session incomplete: %d of %d answers",
			len(s.Answers), questionnaire.TotalPrompts())
	}
	return append([]int(nil), s.Answers...), nil
}

// TryBeginSubmission marks the completed session as having a persistence
// attempt in flight, so concurrent completion requests cannot persist the
// same answer sequence twice. It reports false when the session is incomplete
// or another attempt is already running.
func (s *Session) TryBeginSubmission() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.complete() || s.submitting {
		return false
	}
	s.submitting = true
	return true
}

// EndSubmission clears the in-flight mark after a failed persistence attempt
// so a later request can retry. A successful attempt deletes the session
// instead.
func (s *Session) EndSubmission() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}
