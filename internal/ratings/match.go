package ratings

import "strings"

// BestMatch selects the candidate whose title best matches name.
//
// Two passes over candidates in their given order: the first candidate whose
// normalized title equals the normalized name wins; failing that, the first
// whose normalized title contains the normalized name or vice versa. The
// candidate order comes from the upstream search API and is assumed
// relevance-ranked, so no re-ranking happens here. Returns nil when neither
// pass matches.
func BestMatch(name string, candidates []SearchResult) *SearchResult {
	target := Normalize(name)

	for i := range candidates {
		if Normalize(candidates[i].Title) == target {
			return &candidates[i]
		}
	}

	for i := range candidates {
		title := Normalize(candidates[i].Title)
		if strings.Contains(title, target) || strings.Contains(target, title) {
			return &candidates[i]
		}
	}

	return nil
}
