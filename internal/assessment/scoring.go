package assessment

import "fmt"

// rawScore maps a Likert answer slice onto [0,75]: a mean of 1 scores 0 and
// a mean of 4 scores 75. The zero-sum branch is unreachable for validated
// input but kept as a guard; classification thresholds depend on this exact
// mapping, so the 75 ceiling is intentional.
func rawScore(answers []int) float64 {
	sum := 0
	for _, v := range answers {
		sum += v
	}
	if sum == 0 {
		return 0
	}
	mean := float64(sum) / float64(len(answers))
	return (mean - 1) * 25
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ComputeScores derives the four fatigue metrics from the three answer
// sections and classifies the fatigue type. Section 2 (management behavior)
// is validated and stored but feeds no formula yet.
//
// All arithmetic is float64 and no rounding is applied; display rounding is
// a presentation concern.
func ComputeScores(section1, section2, section3 []int) (ScoreSet, error) {
	if len(section1) != Section1Len || len(section2) != Section2Len || len(section3) != Section3Len {
		return ScoreSet{}, fmt.Errorf("%w: expected section lengths %d/%d/%d, got %d/%d/%d",
			ErrInvalidAssessmentInput, Section1Len, Section2Len, Section3Len,
			len(section1), len(section2), len(section3))
	}
	if !validAnswers(section1) || !validAnswers(section2) || !validAnswers(section3) {
		return ScoreSet{}, fmt.Errorf("%w: answers must be integers between %d and %d",
			ErrInvalidAssessmentInput, AnswerMin, AnswerMax)
	}

	fatigueSource := rawScore(section1)
	mentalFatigue := rawScore(section3)
	brainFatigue := clamp(0, 100, (mentalFatigue-50)*(50.0/30.0)+50)

	var resilience float64
	if fatigueSource != 0 {
		resilience = 100 * (2 * fatigueSource) / (2*fatigueSource + mentalFatigue + brainFatigue)
	}

	return ScoreSet{
		FatigueType:   Classify(mentalFatigue, brainFatigue),
		BrainFatigue:  brainFatigue,
		MentalFatigue: mentalFatigue,
		FatigueSource: fatigueSource,
		Resilience:    resilience,
	}, nil
}

// SplitResponses splits a full 16-answer submission into the three fixed
// sections. It validates length and answer range, returning
// ErrInvalidAssessmentInput on any violation.
func SplitResponses(responses []int) (section1, section2, section3 []int, err error) {
	if len(responses) != TotalLen {
		return nil, nil, nil, fmt.Errorf("%w: expected %d responses, got %d",
			ErrInvalidAssessmentInput, TotalLen, len(responses))
	}
	if !validAnswers(responses) {
		return nil, nil, nil, fmt.Errorf("%w: answers must be integers between %d and %d",
			ErrInvalidAssessmentInput, AnswerMin, AnswerMax)
	}
	section1 = append([]int(nil), responses[:Section1Len]...)
	section2 = append([]int(nil), responses[Section1Len:Section1Len+Section2Len]...)
	section3 = append([]int(nil), responses[Section1Len+Section2Len:]...)
	return section1, section2, section3, nil
}
