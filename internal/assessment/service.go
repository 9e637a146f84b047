package assessment

import (
	"context"
	"time"

	"yoxo/internal/logging"
	"yoxo/internal/observability"
)

const defaultAdviceTimeout = 5 * time.Second

// Enricher produces optional natural-language advice for a score set.
// Implementations are strictly best-effort: they absorb their own failures
// and return "" when no advice is available.
type Enricher interface {
	Enrich(ctx context.Context, scores ScoreSet, respondentRef string) string
}

// Service runs the submission pipeline: validate, score, classify, persist,
// then enrich opportunistically.
type Service struct {
	repo          Repository
	enricher      Enricher
	adviceTimeout time.Duration
	logger        logging.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEnricher attaches an advice enricher. Without one, submissions simply
// carry no advice.
func WithEnricher(e Enricher) ServiceOption {
	return func(s *Service) { s.enricher = e }
}

// WithAdviceTimeout bounds the enrichment call so a slow advice service can
// never stall a submission.
func WithAdviceTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.adviceTimeout = d
		}
	}
}

// NewService constructs the submission service backed by repo.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:          repo,
		adviceTimeout: defaultAdviceTimeout,
		logger:        logging.NewComponentLogger("AssessmentService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput is the canonical submission payload: all 16 answers in prompt
// order (section 1 first), plus an optional respondent reference.
type SubmitInput struct {
	Responses     []int
	RespondentRef string
}

// SubmitResult is returned to the caller after a successful submission.
// Advice is empty when enrichment was unavailable.
type SubmitResult struct {
	PublicID string   `json:"publicId"`
	Scores   ScoreSet `json:"scores"`
	Advice   string   `json:"advice,omitempty"`
}

// Submit validates and scores a completed answer sequence, persists it, and
// opportunistically attaches advice. Validation and persistence errors
// propagate; enrichment failures never do.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	section1, section2, section3, err := SplitResponses(in.Responses)
	if err != nil {
		return nil, err
	}

	scores, err := ComputeScores(section1, section2, section3)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.Create(ctx, NewAssessment{
		RespondentRef: in.RespondentRef,
		Section1:      section1,
		Section2:      section2,
		Section3:      section3,
		Scores:        scores,
	})
	if err != nil {
		return nil, err
	}
	observability.RecordSubmission(string(scores.FatigueType))
	s.logger.Info("Assessment %s created (type=%s)", rec.PublicID, scores.FatigueType)

	result := &SubmitResult{PublicID: rec.PublicID, Scores: scores}
	result.Advice = s.enrich(ctx, rec.PublicID, scores, in.RespondentRef)
	return result, nil
}

// enrich runs the best-effort advice step on its own bounded context. The
// assessment is already durable by the time this runs.
func (s *Service) enrich(ctx context.Context, publicID string, scores ScoreSet, respondentRef string) string {
	if s.enricher == nil {
		return ""
	}

	enrichCtx, cancel := context.WithTimeout(ctx, s.adviceTimeout)
	defer cancel()

	advice := s.enricher.Enrich(enrichCtx, scores, respondentRef)
	if advice == "" {
		return ""
	}

	if err := s.repo.SaveAdvice(ctx, publicID, advice); err != nil {
		s.logger.Warn("Failed to store advice for %s: %v", publicID, err)
	}
	return advice
}

// Result returns the stored assessment for a public identifier.
func (s *Service) Result(ctx context.Context, publicID string) (*Assessment, error) {
	return s.repo.GetByPublicID(ctx, publicID)
}

// HistoryPoint is one past measurement in a respondent's dashboard.
type HistoryPoint struct {
	Date          time.Time `json:"date"`
	BrainFatigue  float64   `json:"brain_fatigue"`
	MentalFatigue float64   `json:"mental_fatigue"`
	FatigueSource float64   `json:"fatigue_source"`
	Resilience    float64   `json:"resilience"`
}

// DashboardStats aggregates a respondent's measurement history.
type DashboardStats struct {
	TotalMeasurements int         `json:"total_measurements"`
	AvgResilience     float64     `json:"avg_resilience"`
	CommonFatigueType FatigueType `json:"common_fatigue_type"`
}

// DashboardData is the trend view for an identified respondent.
type DashboardData struct {
	History []HistoryPoint `json:"history"`
	Stats   DashboardStats `json:"stats"`
}

// dashboardWindow caps how much history the dashboard inspects.
const dashboardWindow = 30

// Dashboard returns recent history (oldest first, for charting) and summary
// stats for a respondent.
func (s *Service) Dashboard(ctx context.Context, respondentRef string) (*DashboardData, error) {
	recent, err := s.repo.FindRecentByRespondent(ctx, respondentRef, dashboardWindow)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{History: make([]HistoryPoint, 0, len(recent))}
	typeCounts := make(map[FatigueType]int)
	var resilienceSum float64

	// recent is most-recent-first; the chart wants chronological order.
	for i := len(recent) - 1; i >= 0; i-- {
		a := recent[i]
		data.History = append(data.History, HistoryPoint{
			Date:          a.CreatedAt,
			BrainFatigue:  a.Scores.BrainFatigue,
			MentalFatigue: a.Scores.MentalFatigue,
			FatigueSource: a.Scores.FatigueSource,
			Resilience:    a.Scores.Resilience,
		})
		typeCounts[a.Scores.FatigueType]++
		resilienceSum += a.Scores.Resilience
	}

	data.Stats.TotalMeasurements = len(recent)
	if len(recent) > 0 {
		data.Stats.AvgResilience = resilienceSum / float64(len(recent))
		best := 0
		for ft, n := range typeCounts {
			if n > best || (n == best && ft < data.Stats.CommonFatigueType) {
				best = n
				data.Stats.CommonFatigueType = ft
			}
		}
	}
	return data, nil
}
