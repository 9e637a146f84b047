// Package postgresstore implements the assessment repository on Postgres.
package postgresstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"yoxo/internal/assessment"
	"yoxo/internal/logging"
)

const (
	assessmentTable = "survey_responses"
	createAttempts  = 5
)

// uniqueViolation is the Postgres error code for a unique constraint conflict.
const uniqueViolation = "23505"

var publicIDPattern = regexp.MustCompile(`^YX\d{10}$`)

// Store implements a Postgres-backed assessment repository.
type Store struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// New constructs a Postgres-backed assessment repository.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		logger: logging.NewComponentLogger("AssessmentPostgresStore"),
	}
}

// EnsureSchema creates the assessment table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("assessment store not initialized")
	}

	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id BIGSERIAL PRIMARY KEY,
    yoxo_id TEXT UNIQUE NOT NULL,
    respondent_ref TEXT,
    section1_responses JSONB NOT NULL,
    section2_responses JSONB NOT NULL,
    section3_responses JSONB NOT NULL,
    calculated_scores JSONB NOT NULL,
    advice TEXT,
    created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_survey_responses_respondent ON %s (respondent_ref, created_at DESC);
`, assessmentTable, assessmentTable)

	_, err := s.pool.Exec(ctx, query)
	return err
}

// Create persists a new assessment under a freshly generated public
// identifier. A unique-constraint conflict gets a fresh identifier and
// another attempt; existing rows are never overwritten.
func (s *Store) Create(ctx context.Context, rec assessment.NewAssessment) (*assessment.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("assessment store not initialized")
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		now := time.Now()
		stored := assessment.Assessment{
			PublicID:      assessment.NewPublicID(now),
			RespondentRef: rec.RespondentRef,
			Section1:      rec.Section1,
			Section2:      rec.Section2,
			Section3:      rec.Section3,
			Scores:        rec.Scores,
			CreatedAt:     now,
		}

		if err := s.insert(ctx, &stored); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				s.logger.Warn("Public ID collision on %s, retrying", stored.PublicID)
				continue
			}
			return nil, err
		}
		return &stored, nil
	}

	return nil, fmt.Errorf("failed to allocate unique public ID after %d attempts", createAttempts)
}

// GetByPublicID retrieves an assessment by its public identifier.
func (s *Store) GetByPublicID(ctx context.Context, publicID string) (*assessment.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("assessment store not initialized")
	}
	// Mistyped identifiers are a normal not-found, not an error.
	if !publicIDPattern.MatchString(publicID) {
		return nil, assessment.ErrNotFound
	}

	query := fmt.Sprintf(`
SELECT yoxo_id, respondent_ref, section1_responses, section2_responses, section3_responses, calculated_scores, advice, created_at
FROM %s
WHERE yoxo_id = $1
`, assessmentTable)

	rec, err := scanAssessment(s.pool.QueryRow(ctx, query, publicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, assessment.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// FindRecentByRespondent returns up to limit assessments for the respondent,
// most recent first.
func (s *Store) FindRecentByRespondent(ctx context.Context, respondentRef string, limit int) ([]*assessment.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("assessment store not initialized")
	}
	if respondentRef == "" || limit <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
SELECT yoxo_id, respondent_ref, section1_responses, section2_responses, section3_responses, calculated_scores, advice, created_at
FROM %s
WHERE respondent_ref = $1
ORDER BY created_at DESC
LIMIT $2
`, assessmentTable)

	rows, err := s.pool.Query(ctx, query, respondentRef, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*assessment.Assessment
	for rows.Next() {
		rec, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// SaveAdvice attaches advice text to an existing assessment row.
func (s *Store) SaveAdvice(ctx context.Context, publicID, advice string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.pool == nil {
		return fmt.Errorf("assessment store not initialized")
	}

	query := fmt.Sprintf(`UPDATE %s SET advice = $2 WHERE yoxo_id = $1`, assessmentTable)
	tag, err := s.pool.Exec(ctx, query, publicID, advice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return assessment.ErrNotFound
	}
	return nil
}

func (s *Store) insert(ctx context.Context, rec *assessment.Assessment) error {
	section1, err := json.Marshal(rec.Section1)
	if err != nil {
		return fmt.Errorf("encode section1: %w", err)
	}
	section2, err := json.Marshal(rec.Section2)
	if err != nil {
		return fmt.Errorf("encode section2: %w", err)
	}
	section3, err := json.Marshal(rec.Section3)
	if err != nil {
		return fmt.Errorf("encode section3: %w", err)
	}
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}

	var respondentRef any
	if rec.RespondentRef != "" {
		respondentRef = rec.RespondentRef
	}

	query := fmt.Sprintf(`
INSERT INTO %s (yoxo_id, respondent_ref, section1_responses, section2_responses, section3_responses, calculated_scores, created_at)
VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb, $6::jsonb, $7)
`, assessmentTable)

	_, err = s.pool.Exec(ctx, query,
		rec.PublicID,
		respondentRef,
		section1,
		section2,
		section3,
		scores,
		rec.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*assessment.Assessment, error) {
	var (
		rec           assessment.Assessment
		respondentRef *string
		advice        *string
		section1JSON  []byte
		section2JSON  []byte
		section3JSON  []byte
		scoresJSON    []byte
	)

	err := row.Scan(
		&rec.PublicID,
		&respondentRef,
		&section1JSON,
		&section2JSON,
		&section3JSON,
		&scoresJSON,
		&advice,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if respondentRef != nil {
		rec.RespondentRef = *respondentRef
	}
	if advice != nil {
		rec.Advice = *advice
	}
	if err := json.Unmarshal(section1JSON, &rec.Section1); err != nil {
		return nil, fmt.Errorf("decode section1: %w", err)
	}
	if err := json.Unmarshal(section2JSON, &rec.Section2); err != nil {
		return nil, fmt.Errorf("decode section2: %w", err)
	}
	if err := json.Unmarshal(section3JSON, &rec.Section3); err != nil {
		return nil, fmt.Errorf("decode section3: %w", err)
	}
	if err := json.Unmarshal(scoresJSON, &rec.Scores); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	return &rec, nil
}
