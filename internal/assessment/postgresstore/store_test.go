package postgresstore

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yoxo/internal/assessment"
)

// newTestPool connects to the database named by YOXO_TEST_DATABASE_URL, or
// skips the test when none is configured.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("YOXO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("YOXO_TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

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

func TestPostgresStoreRoundTrip(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	store := New(pool)

	require.NoError(t, store.EnsureSchema(ctx))

	created, err := store.Create(ctx, sampleRecord("pg-user-1"))
	require.NoError(t, err)

	loaded, err := store.GetByPublicID(ctx, created.PublicID)
	require.NoError(t, err)
	assert.Equal(t, created.Scores, loaded.Scores)
	assert.Equal(t, created.Section1, loaded.Section1)
	assert.Equal(t, created.Section2, loaded.Section2)
	assert.Equal(t, created.Section3, loaded.Section3)
	assert.Equal(t, "pg-user-1", loaded.RespondentRef)
	assert.Empty(t, loaded.Advice)
}

func TestPostgresStoreNotFound(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	store := New(pool)
	require.NoError(t, store.EnsureSchema(ctx))

	_, err := store.GetByPublicID(ctx, "YX0001010000")
	assert.True(t, errors.Is(err, assessment.ErrNotFound))

	// Mistyped identifiers are a normal miss, not a query error.
	_, err = store.GetByPublicID(ctx, "not-an-id'; DROP TABLE x")
	assert.True(t, errors.Is(err, assessment.ErrNotFound))
}

func TestPostgresStoreAdviceAndHistory(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	store := New(pool)
	require.NoError(t, store.EnsureSchema(ctx))

	var last *assessment.Assessment
	for i := 0; i < 3; i++ {
		created, err := store.Create(ctx, sampleRecord("pg-user-2"))
		require.NoError(t, err)
		last = created
	}

	require.NoError(t, store.SaveAdvice(ctx, last.PublicID, "しっかり休みましょう。"))
	loaded, err := store.GetByPublicID(ctx, last.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "しっかり休みましょう。", loaded.Advice)

	recent, err := store.FindRecentByRespondent(ctx, "pg-user-2", 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	err = store.SaveAdvice(ctx, "YX0001010000", "x")
	assert.True(t, errors.Is(err, assessment.ErrNotFound))
}
