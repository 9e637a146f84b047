package advice

import (
	"context"
	"fmt"
	"strings"

	"yoxo/internal/assessment"
	"yoxo/internal/logging"
	"yoxo/internal/observability"
)

// historyLimit caps how many prior assessments feed the trend summary, to
// keep the enrichment call cheap.
const historyLimit = 5

// trendDelta is the resilience change treated as a real direction rather
// than noise.
const trendDelta = 5.0

// RecentFinder is the slice of the repository the enricher needs for trend
// context.
type RecentFinder interface {
	FindRecentByRespondent(ctx context.Context, respondentRef string, limit int) ([]*assessment.Assessment, error)
}

// Enricher builds the advice prompt and calls the generation service.
type Enricher struct {
	generator Generator
	history   RecentFinder
	logger    logging.Logger
}

// NewEnricher wires a generator and an optional history source. A nil
// history simply disables trend summaries.
func NewEnricher(generator Generator, history RecentFinder) *Enricher {
	return &Enricher{
		generator: generator,
		history:   history,
		logger:    logging.NewComponentLogger("AdviceEnricher"),
	}
}

// Enrich returns advice text for the score set, or "" when none could be
// generated. Errors are logged and absorbed; they never reach the caller.
func (e *Enricher) Enrich(ctx context.Context, scores assessment.ScoreSet, respondentRef string) string {
	if e == nil || e.generator == nil {
		return ""
	}

	prompt := e.buildPrompt(ctx, scores, respondentRef)

	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		observability.RecordEnrichmentFailure()
		e.logger.Warn("Advice generation failed: %v", err)
		return ""
	}
	return text
}

func (e *Enricher) buildPrompt(ctx context.Context, scores assessment.ScoreSet, respondentRef string) string {
	var b strings.Builder
	b.WriteString("以下の測定結果に基づいて、具体的で実践的なアドバイスを提供してください：\n\n")
	fmt.Fprintf(&b, "疲労タイプ: %s\n", scores.FatigueType)
	fmt.Fprintf(&b, "脳疲労指数: %.1f\n", scores.BrainFatigue)
	fmt.Fprintf(&b, "心疲労指数: %.1f\n", scores.MentalFatigue)
	fmt.Fprintf(&b, "疲労源指数: %.1f\n", scores.FatigueSource)
	fmt.Fprintf(&b, "レジリエンス: %.1f\n", scores.Resilience)

	if trend := e.trendSummary(ctx, respondentRef); trend != "" {
		b.WriteString("\n")
		b.WriteString(trend)
	}
	return b.String()
}

// trendSummary describes the respondent's recent history: measurement count,
// average resilience, and whether resilience is improving or declining. A
// guest respondent or a history lookup failure yields no summary.
func (e *Enricher) trendSummary(ctx context.Context, respondentRef string) string {
	if respondentRef == "" || e.history == nil {
		return ""
	}

	prior, err := e.history.FindRecentByRespondent(ctx, respondentRef, historyLimit)
	if err != nil {
		e.logger.Warn("History lookup for trend summary failed: %v", err)
		return ""
	}
	if len(prior) == 0 {
		return ""
	}

	var sum float64
	for _, a := range prior {
		sum += a.Scores.Resilience
	}
	avg := sum / float64(len(prior))

	direction := "横ばい"
	if len(prior) >= 2 {
		// prior is most-recent-first.
		change := prior[0].Scores.Resilience - prior[len(prior)-1].Scores.Resilience
		switch {
		case change > trendDelta:
			direction = "改善傾向"
		case change < -trendDelta:
			direction = "悪化傾向"
		}
	}

	var b strings.Builder
	b.WriteString("参考情報（過去の測定履歴）:\n")
	fmt.Fprintf(&b, "直近の測定回数: %d回\n", len(prior))
	fmt.Fprintf(&b, "平均レジリエンス: %.1f\n", avg)
	fmt.Fprintf(&b, "レジリエンスの傾向: %s\n", direction)
	return b.String()
}
