package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yoxo/internal/assessment"
)

func sampleRecord(respondentRef string) assessment.NewAssessment {
	return assessment.NewAssessment{
		RespondentRef: respondentRef,
		Section1:      []int{2, 2, 2, 2, 2, 2},
		Section2:      []int{3, 3, 3, 3, 3, 3},
		Section3:      []int{2, 2, 2, 2},
		Scores: assessment.ScoreSet{
			FatigueType:   assessment.TypeMild,
			BrainFatigue:  8.333333333333332,
			MentalFatigue: 25,
			FatigueSource: 25,
			Resilience:    60,
		},
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.Create(ctx, sampleRecord("user-1"))
	require.NoError(t, err)
	require.NotEmpty(t, created.PublicID)

	loaded, err := store.GetByPublicID(ctx, created.PublicID)
	require.NoError(t, err)

	// Numeric score fields must round-trip exactly.
	assert.Equal(t, created.Scores, loaded.Scores)
	assert.Equal(t, created.Section1, loaded.Section1)
	assert.Equal(t, created.Section2, loaded.Section2)
	assert.Equal(t, created.Section3, loaded.Section3)
	assert.Equal(t, "user-1", loaded.RespondentRef)
	assert.False(t, loaded.CreatedAt.IsZero())
}

func TestGetUnknownID(t *testing.T) {
	store := New()
	_, err := store.GetByPublicID(context.Background(), "YX2501010000")
	assert.True(t, errors.Is(err, assessment.ErrNotFound))
}

func TestCreateRetriesOnCollision(t *testing.T) {
	store := New()
	ctx := context.Background()

	// Force the first few generated ids to collide.
	ids := []string{"YX2501010001", "YX2501010001", "YX2501010001", "YX2501010002"}
	calls := 0
	store.newID = func(time.Time) string {
		id := ids[calls%len(ids)]
		calls++
		return id
	}

	first, err := store.Create(ctx, sampleRecord(""))
	require.NoError(t, err)
	assert.Equal(t, "YX2501010001", first.PublicID)

	second, err := store.Create(ctx, sampleRecord(""))
	require.NoError(t, err)
	assert.Equal(t, "YX2501010002", second.PublicID)
	assert.NotEqual(t, first.PublicID, second.PublicID)
}

func TestCreateExhaustedCollisions(t *testing.T) {
	store := New()
	ctx := context.Background()
	store.newID = func(time.Time) string { return "YX2501010007" }

	_, err := store.Create(ctx, sampleRecord(""))
	require.NoError(t, err)

	_, err = store.Create(ctx, sampleRecord(""))
	assert.Error(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestConcurrentCreatesUniqueIDs(t *testing.T) {
	store := New()
	ctx := context.Background()

	const n = 500
	var wg sync.WaitGroup
	idsCh := make(chan string, n)
	errsCh := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := store.Create(ctx, sampleRecord(""))
			if err != nil {
				errsCh <- err
				return
			}
			idsCh <- created.PublicID
		}()
	}
	wg.Wait()
	close(idsCh)
	close(errsCh)

	for err := range errsCh {
		t.Fatalf("create failed: %v", err)
	}

	seen := make(map[string]bool, n)
	for id := range idsCh {
		if seen[id] {
			t.Fatalf("duplicate public id %q", id)
		}
		seen[id] = true
	}
	assert.Equal(t, n, len(seen))
}

func TestFindRecentByRespondent(t *testing.T) {
	store := New()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day := 0
	store.now = func() time.Time {
		day++
		return base.AddDate(0, 0, day)
	}

	var createdIDs []string
	for i := 0; i < 7; i++ {
		created, err := store.Create(ctx, sampleRecord("user-1"))
		require.NoError(t, err)
		createdIDs = append(createdIDs, created.PublicID)
	}
	_, err := store.Create(ctx, sampleRecord("user-2"))
	require.NoError(t, err)

	recent, err := store.FindRecentByRespondent(ctx, "user-1", 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)

	// Most recent first.
	for i, a := range recent {
		assert.Equal(t, createdIDs[len(createdIDs)-1-i], a.PublicID)
		assert.Equal(t, "user-1", a.RespondentRef)
	}
}

func TestFindRecentGuestReturnsNothing(t *testing.T) {
	store := New()
	ctx := context.Background()
	_, err := store.Create(ctx, sampleRecord(""))
	require.NoError(t, err)

	recent, err := store.FindRecentByRespondent(ctx, "", 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestSaveAdvice(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.Create(ctx, sampleRecord("user-1"))
	require.NoError(t, err)

	require.NoError(t, store.SaveAdvice(ctx, created.PublicID, "休息を取りましょう。"))

	loaded, err := store.GetByPublicID(ctx, created.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "休息を取りましょう。", loaded.Advice)

	err = store.SaveAdvice(ctx, "YX9901010000", "x")
	assert.True(t, errors.Is(err, assessment.ErrNotFound))
}

func TestStoredRecordIsIsolatedFromCallerMutation(t *testing.T) {
	store := New()
	ctx := context.Background()

	rec := sampleRecord("user-1")
	created, err := store.Create(ctx, rec)
	require.NoError(t, err)

	// Mutating the input or the returned copy must not affect the store.
	rec.Section1[0] = 4
	created.Scores.Resilience = -1

	loaded, err := store.GetByPublicID(ctx, created.PublicID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Section1[0])
	assert.Equal(t, 60.0, loaded.Scores.Resilience)
}

func TestCreateHonorsContextCancellation(t *testing.T) {
	store := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Create(ctx, sampleRecord(""))
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func ExampleStore() {
	store := New()
	created, _ := store.Create(context.Background(), assessment.NewAssessment{
		Section1: []int{1, 1, 1, 1, 1, 1},
		Section2: []int{1, 1, 1, 1, 1, 1},
		Section3: []int{1, 1, 1, 1},
	})
	loaded, _ := store.GetByPublicID(context.Background(), created.PublicID)
	fmt.Println(loaded.PublicID == created.PublicID)
	// Output: true
}
