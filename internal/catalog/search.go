package catalog

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

type scoredIndex struct {
	index int
	score float64
}

// Find returns the absolute indices of tracks whose title matches query,
// best match first. An empty query matches nothing.
func (c *Catalog) Find(query string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	queryLower := strings.ToLower(query)
	var scored []scoredIndex

	for i, t := range c.tracks {
		title := strings.ToLower(t.Title)
		score := 0.0

		if strings.Contains(title, queryLower) {
			score += 10.0
		}

		if fuzzy.MatchFold(queryLower, title) {
			score += 5.0
		}

		distance := fuzzy.LevenshteinDistance(queryLower, title)
		if distance <= len(queryLower)/2 {
			score += float64(len(queryLower) - distance)
		}

		if score > 0 {
			scored = append(scored, scoredIndex{index: i, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	result := make([]int, 0, len(scored))
	for _, s := range scored {
		result = append(result, s.index)
	}
	return result
}
