// Package memstore provides an in-memory assessment repository used by tests
// and database-less local runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"yoxo/internal/assessment"
)

const createAttempts = 25

// Store is a threadsafe in-memory assessment.Repository.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*record
	seq   int64
	now   func() time.Time
	newID func(time.Time) string
}

type record struct {
	assessment assessment.Assessment
	seq        int64
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		byID:  make(map[string]*record),
		now:   time.Now,
		newID: assessment.NewPublicID,
	}
}

// Create assigns a public identifier and persists the assessment. Identifier
// collisions are retried with a fresh id; the stored record is never
// overwritten.
func (s *Store) Create(ctx context.Context, rec assessment.NewAssessment) (*assessment.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for attempt := 0; attempt < createAttempts; attempt++ {
		publicID := s.newID(now)
		if _, exists := s.byID[publicID]; exists {
			continue
		}

		s.seq++
		stored := assessment.Assessment{
			PublicID:      publicID,
			RespondentRef: rec.RespondentRef,
			Section1:      append([]int(nil), rec.Section1...),
			Section2:      append([]int(nil), rec.Section2...),
			Section3:      append([]int(nil), rec.Section3...),
			Scores:        rec.Scores,
			CreatedAt:     now,
		}
		s.byID[publicID] = &record{assessment: stored, seq: s.seq}

		result := stored
		return &result, nil
	}

	return nil, fmt.Errorf("failed to allocate unique public ID")
}

// GetByPublicID returns a copy of the stored assessment.
func (s *Store) GetByPublicID(ctx context.Context, publicID string) (*assessment.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[publicID]
	if !ok {
		return nil, assessment.ErrNotFound
	}
	result := rec.assessment
	return &result, nil
}

// FindRecentByRespondent returns up to limit assessments for the respondent,
// most recent first.
func (s *Store) FindRecentByRespondent(ctx context.Context, respondentRef string, limit int) ([]*assessment.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if respondentRef == "" || limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*record
	for _, rec := range s.byID {
		if rec.assessment.RespondentRef == respondentRef {
			matched = append(matched, rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].assessment.CreatedAt.Equal(matched[j].assessment.CreatedAt) {
			return matched[i].assessment.CreatedAt.After(matched[j].assessment.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	results := make([]*assessment.Assessment, 0, len(matched))
	for _, rec := range matched {
		result := rec.assessment
		results = append(results, &result)
	}
	return results, nil
}

// SaveAdvice attaches advice text to an existing assessment.
func (s *Store) SaveAdvice(ctx context.Context, publicID, advice string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[publicID]
	if !ok {
		return assessment.ErrNotFound
	}
	rec.assessment.Advice = advice
	return nil
}

// Len returns the number of stored assessments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
