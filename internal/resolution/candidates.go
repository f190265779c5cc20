package resolution

import (
	"regexp"
	"strings"
)

// qualifierPattern matches release-stage words that storefront search
// usually does not index ("ARC Raiders Playtest" is sold as "ARC Raiders").
var qualifierPattern = regexp.MustCompile(`(?i)\b(playtest|play test|demo|alpha|beta|test|internal)\b`)

// BuildQueryCandidates returns the search queries to try for title, most
// specific first: the title itself, the title without qualifier words, then
// ever shorter word prefixes. The list is finite and free of duplicates.
func BuildQueryCandidates(title string) []string {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	candidates := []string{title}
	seen := map[string]struct{}{title: {}}
	add := func(query string) {
		if query == "" {
			return
		}
		if _, ok := seen[query]; ok {
			return
		}
		seen[query] = struct{}{}
		candidates = append(candidates, query)
	}

	add(collapseSpaces(qualifierPattern.ReplaceAllString(title, "")))

	words := strings.Fields(title)
	for n := len(words) - 1; n >= 1; n-- {
		add(strings.Join(words[:n], " "))
	}
	return candidates
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
