package engine

import (
	"fmt"
	"math"
)

// ScoreResponse computes per-section and overall scores from weighted answers.
// Only answered scale questions contribute; a section with none is omitted.
// The overall score is the ratio of summed scores to summed maxima, not the
// mean of section percentages.
func ScoreResponse(answers Answers, sections []Section) (Result, error) {
	result := Result{SectionScores: make(map[string]SectionScore)}

	var totalSum, maxSum float64
	for _, section := range sections {
		var total, max float64
		for _, q := range section.Questions {
			if q.Type != QuestionScale {
				continue
			}
			a, ok := answers[q.ID]
			if !ok {
				continue
			}
			if !a.IsScale() {
				return Result{}, fmt.Errorf("%w: question %s expects a scale value", ErrInvalidAnswer, q.ID)
			}
			if a.Scale < 1 || a.Scale > ScaleMax {
				return Result{}, fmt.Errorf("%w: question %s value %d outside 1-%d", ErrInvalidAnswer, q.ID, a.Scale, ScaleMax)
			}
			w := q.EffectiveWeight()
			total += float64(a.Scale) * w
			max += ScaleMax * w
		}
		if max == 0 {
			continue
		}
		result.SectionScores[section.Key] = SectionScore{
			Score:      total,
			Max:        max,
			Percentage: percentOf(total, max),
		}
		totalSum += total
		maxSum += max
	}

	if maxSum == 0 {
		return Result{}, ErrInsufficientAnswers
	}
	result.OverallScore = percentOf(totalSum, maxSum)
	return result, nil
}

func percentOf(score, max float64) int {
	return int(math.Round(100 * score / max))
}
