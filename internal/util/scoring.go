package util

import "github.com/sahilm/fuzzy"

// ScoreCompletions returns the top n fuzzy matches for input among
// candidates, best first. An empty input returns candidates unchanged.
func ScoreCompletions(input string, candidates []string, n int) []string {
	idx := RankFuzzy(input, candidates, n)
	if idx == nil {
		if input == "" {
			return candidates
		}
		return nil
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = candidates[j]
	}
	return out
}

// RankFuzzy returns the indexes of the top n candidates matching input,
// best first. It returns nil for an empty input or no match.
func RankFuzzy(input string, candidates []string, n int) []int {
	if input == "" {
		return nil
	}
	matches := fuzzy.Find(input, candidates)
	if len(matches) == 0 {
		return nil
	}

	limit := n
	if n <= 0 || len(matches) < limit {
		limit = len(matches)
	}

	out := make([]int, limit)
	for i := 0; i < limit; i++ {
		out[i] = matches[i].Index
	}
	return out
}
