package resolution

import (
	"strings"

	"gfnpresence/internal/steam"
	"gfnpresence/internal/textutil"
)

// MinScore is the lowest score SelectBest accepts.
const MinScore = 25.0

const (
	scoreExact         = 100.0
	scoreTitleContains = 85.0
	scoreQueryContains = 70.0
	scoreWordOverlap   = 50.0
)

// Match is the accepted search result and its score.
type Match struct {
	Result steam.Result
	Score  float64
}

// Score rates how well title matches query on normalized text: 100 for
// equality, 85 when title contains query, 70 when query contains title,
// otherwise the share of query words (longer than two runes) found in the
// title scaled to 50.
func Score(query, title string) float64 {
	return scoreNormalized(textutil.Normalize(query), textutil.Normalize(title))
}

func scoreNormalized(query, title string) float64 {
	if query == "" || title == "" {
		return 0
	}
	switch {
	case title == query:
		return scoreExact
	case strings.Contains(title, query):
		return scoreTitleContains
	case strings.Contains(query, title):
		return scoreQueryContains
	}

	queryWords := textutil.Words(query)
	if len(queryWords) == 0 {
		return 0
	}
	titleWords := make(map[string]struct{})
	for _, word := range textutil.Words(title) {
		titleWords[word] = struct{}{}
	}
	common := 0
	for _, word := range queryWords {
		if _, ok := titleWords[word]; ok {
			common++
		}
	}
	return float64(common) / float64(len(queryWords)) * scoreWordOverlap
}

// SelectBest scores every result against query and returns the first one
// with the highest score. Ties keep the earlier result, zero never wins, and
// a best score under MinScore is rejected.
func SelectBest(results []steam.Result, query string) (Match, bool) {
	best, ok := bestOf(results, query)
	if !ok || best.Score < MinScore {
		return best, false
	}
	return best, true
}

func bestOf(results []steam.Result, query string) (Match, bool) {
	normalizedQuery := textutil.Normalize(query)
	if normalizedQuery == "" {
		return Match{}, false
	}
	var best Match
	found := false
	for _, result := range results {
		score := scoreNormalized(normalizedQuery, textutil.Normalize(result.Title))
		if score > best.Score {
			best = Match{Result: result, Score: score}
			found = true
		}
	}
	return best, found
}
