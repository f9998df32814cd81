package validate

// suggestionThreshold is the minimum bigram Jaccard score for a repair
// suggestion to be offered.
const suggestionThreshold = 0.5

// suggest proposes a likely-intended slug for an unresolved target, or the
// empty string when nothing scores above the threshold. Ties between equal
// scores break on map iteration order; callers must not rely on which of
// several equally good candidates wins.
func (v *Validator) suggest(target string) string {
	best := ""
	bestScore := suggestionThreshold
	for slug := range v.known {
		if score := Similarity(target, slug); score > bestScore {
			bestScore = score
			best = slug
		}
	}
	if best == "" {
		return ""
	}
	return "did you mean '" + best + "'?"
}

// Similarity computes Jaccard similarity over the adjacent-character bigram
// sets of a and b. Strings shorter than two runes have an empty bigram set;
// two empty sets are defined as fully similar. Similarity is symmetric and
// Similarity(s, s) == 1 for every s.
func Similarity(a, b string) float64 {
	ba := bigrams(a)
	bb := bigrams(b)

	if len(ba) == 0 && len(bb) == 0 {
		return 1.0
	}

	intersection := 0
	for g := range ba {
		if _, ok := bb[g]; ok {
			intersection++
		}
	}
	union := len(ba) + len(bb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func bigrams(s string) map[string]struct{} {
	runes := []rune(s)
	out := make(map[string]struct{}, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		out[string(runes[i:i+2])] = struct{}{}
	}
	return out
}
