package quiz

import (
	"slices"

	"skincare/internal/domain"
)

// Selection is an answer resolved against the stored quiz: the question
// and, when one was picked, the chosen option.
type Selection struct {
	Question domain.QuizQuestion
	Option   *domain.QuizOption
}

// Recommend returns the union of recommended service ids over all
// selections, sorted and without duplicates. Free text never contributes.
func Recommend(selections []Selection) []int64 {
	seen := make(map[int64]struct{})
	for _, s := range selections {
		for _, id := range s.Question.RecommendedServiceIDs {
			seen[id] = struct{}{}
		}
		if s.Option != nil {
			for _, id := range s.Option.RecommendedServiceIDs {
				seen[id] = struct{}{}
			}
		}
	}

	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
