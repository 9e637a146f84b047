package intake

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yoxo/internal/assessment"
	"yoxo/internal/questionnaire"
)

func TestSubmitAnswerProgression(t *testing.T) {
	s := Start("")

	// Walk every prompt of every section and check the emitted events.
	for section := 0; section < questionnaire.SectionCount(); section++ {
		count := questionnaire.PromptCount(section)
		for q := 0; q < count; q++ {
			assert.Equal(t, section, s.Section)
			assert.Equal(t, q, s.Question)

			event, err := s.SubmitAnswer(2)
			require.NoError(t, err)

			switch {
			case q < count-1:
				assert.Equal(t, EventAdvanced, event)
			case section < questionnaire.SectionCount()-1:
				assert.Equal(t, EventSectionComplete, event)
			default:
				assert.Equal(t, EventAllComplete, event)
			}
		}
	}

	require.True(t, s.Complete())
	responses, err := s.Responses()
	require.NoError(t, err)
	assert.Len(t, responses, questionnaire.TotalPrompts())
}

func TestSubmitAnswerRejectsInvalidValue(t *testing.T) {
	s := Start("user-1")
	_, err := s.SubmitAnswer(2)
	require.NoError(t, err)

	for _, bad := range []int{0, 5, -1, 42} {
		_, err := s.SubmitAnswer(bad)
		require.Error(t, err)
		assert.True(t, errors.Is(err, assessment.ErrInvalidAnswer))
	}

	// State is untouched by rejected answers.
	assert.Equal(t, 0, s.Section)
	assert.Equal(t, 1, s.Question)
	assert.Equal(t, []int{2}, s.Answers)
}

func TestSubmitAnswerAfterCompletion(t *testing.T) {
	s := completedSession(t)
	_, err := s.SubmitAnswer(3)
	assert.True(t, errors.Is(err, ErrSessionComplete))
	assert.Len(t, s.Answers, questionnaire.TotalPrompts())
}

func TestCommitSectionProgression(t *testing.T) {
	s := Start("")

	event, err := s.CommitSection(0, []int{1, 2, 3, 4, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, EventSectionComplete, event)

	event, err = s.CommitSection(1, []int{2, 2, 2, 2, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, EventSectionComplete, event)

	event, err = s.CommitSection(2, []int{3, 3, 3, 3})
	require.NoError(t, err)
	assert.Equal(t, EventAllComplete, event)

	responses, err := s.Responses()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 1, 2, 2, 2, 2, 2, 2, 2, 3, 3, 3, 3}, responses)
}

func TestCommitSectionDuplicateIgnored(t *testing.T) {
	s := Start("")
	_, err := s.CommitSection(0, []int{1, 2, 3, 4, 1, 2})
	require.NoError(t, err)

	// A page reload resubmits section 0; the answers must not double up.
	event, err := s.CommitSection(0, []int{4, 4, 4, 4, 4, 4})
	require.NoError(t, err)
	assert.Equal(t, EventAlreadyCommitted, event)
	assert.Equal(t, []int{1, 2, 3, 4, 1, 2}, s.Answers)
	assert.Equal(t, 1, s.Section)
}

func TestCommitSectionOutOfOrder(t *testing.T) {
	s := Start("")
	_, err := s.CommitSection(2, []int{1, 1, 1, 1})
	assert.True(t, errors.Is(err, ErrSectionMismatch))

	_, err = s.CommitSection(3, []int{1})
	assert.True(t, errors.Is(err, ErrSectionMismatch))

	_, err = s.CommitSection(-1, nil)
	assert.True(t, errors.Is(err, ErrSectionMismatch))
}

func TestCommitSectionAfterPartialAnswers(t *testing.T) {
	s := Start("")
	_, err := s.SubmitAnswer(2)
	require.NoError(t, err)

	_, err = s.CommitSection(0, []int{1, 2, 3, 4, 1, 2})
	assert.True(t, errors.Is(err, ErrSectionMismatch))
	assert.Equal(t, []int{2}, s.Answers)
}

func TestCommitSectionValidation(t *testing.T) {
	s := Start("")

	_, err := s.CommitSection(0, []int{1, 2, 3})
	assert.True(t, errors.Is(err, assessment.ErrInvalidAssessmentInput))

	_, err = s.CommitSection(0, []int{1, 2, 3, 4, 5, 1})
	assert.True(t, errors.Is(err, assessment.ErrInvalidAnswer))
	assert.Empty(t, s.Answers)
}

func TestResponsesBeforeCompletion(t *testing.T) {
	s := Start("")
	_, err := s.Responses()
	assert.Error(t, err)
}

// The store hands every request the same *Session, so answers arriving in
// parallel (double-clicks, duplicated requests) must not corrupt the
// sequence, and exactly one of them may observe completion.
func TestSubmitAnswerConcurrent(t *testing.T) {
	s := Start("")
	total := questionnaire.TotalPrompts()

	start := make(chan struct{})
	events := make(chan Event, total)
	errs := make(chan error, total)
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ev, err := s.SubmitAnswer(2)
			if err != nil {
				errs <- err
				return
			}
			events <- ev
		}()
	}
	close(start)
	wg.Wait()
	close(events)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent answer rejected: %v", err)
	}

	completions := 0
	for ev := range events {
		if ev == EventAllComplete {
			completions++
		}
	}
	assert.Equal(t, 1, completions)

	require.True(t, s.Complete())
	responses, err := s.Responses()
	require.NoError(t, err)
	assert.Len(t, responses, total)
}

func TestSubmissionSingleFlight(t *testing.T) {
	s := completedSession(t)

	require.True(t, s.TryBeginSubmission())
	// A second completion request while the persist is in flight must not
	// start another one.
	assert.False(t, s.TryBeginSubmission())

	// A failed persist clears the mark so the next request can retry.
	s.EndSubmission()
	assert.True(t, s.TryBeginSubmission())
}

func TestTryBeginSubmissionRequiresCompletion(t *testing.T) {
	s := Start("")
	assert.False(t, s.TryBeginSubmission())
}

func TestSubmissionClaimedOnceAcrossGoroutines(t *testing.T) {
	s := completedSession(t)

	start := make(chan struct{})
	claims := make(chan bool, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			claims <- s.TryBeginSubmission()
		}()
	}
	close(start)
	wg.Wait()
	close(claims)

	won := 0
	for claimed := range claims {
		if claimed {
			won++
		}
	}
	assert.Equal(t, 1, won)
}

func completedSession(t *testing.T) *Session {
	t.Helper()
	s := Start("")
	for i := 0; i < questionnaire.TotalPrompts(); i++ {
		if _, err := s.SubmitAnswer(2); err != nil {
			t.Fatalf("submit answer %d: %v", i, err)
		}
	}
	return s
}
