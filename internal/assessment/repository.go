package assessment

import "context"

// Repository is the durable store for completed assessments.
//
// Create is the only mutating operation of the core besides SaveAdvice; it
// assigns the public identifier and creation timestamp, persists the record
// atomically, and retries identifier generation on a uniqueness conflict.
type Repository interface {
	Create(ctx context.Context, rec NewAssessment) (*Assessment, error)

	// GetByPublicID is an exact-match lookup; it returns ErrNotFound for
	// unknown identifiers.
	GetByPublicID(ctx context.Context, publicID string) (*Assessment, error)

	// FindRecentByRespondent returns up to limit assessments for the given
	// respondent reference, most recent first.
	FindRecentByRespondent(ctx context.Context, respondentRef string, limit int) ([]*Assessment, error)

	// SaveAdvice attaches generated advice to an existing assessment. Raw
	// answers and scores are never modified after Create.
	SaveAdvice(ctx context.Context, publicID, advice string) error
}
