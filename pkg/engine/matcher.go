package engine

// IdentityMatcher resolves a client name against the set of known activity
// subject keys when neither the direct nor the reversed-word strategy finds
// anything. Implementations must be deterministic for a given candidate set.
type IdentityMatcher interface {
	// BestMatch returns the closest candidate to name and its similarity
	// score in [0, 1]. With no candidates it returns ("", 0).
	BestMatch(name string, candidates []string) (string, float64)
}

// LevenshteinMatcher scores candidates by normalized Levenshtein similarity:
// 1 - distance/max(len). Ties on score are broken by lexicographic order so
// repeated runs pick the same candidate.
type LevenshteinMatcher struct{}

func (LevenshteinMatcher) BestMatch(name string, candidates []string) (string, float64) {
	best := ""
	bestScore := -1.0
	for _, candidate := range candidates {
		score := similarity(name, candidate)
		if score > bestScore || (score == bestScore && candidate < best) {
			best = candidate
			bestScore = score
		}
	}
	if bestScore < 0 {
		return "", 0
	}
	return best, bestScore
}

// similarity computes a normalized similarity score between two strings,
// 0.0 (completely different) to 1.0 (identical):
// 1.0 - levenshteinDistance(a, b) / max(len(a), len(b)).
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	aLen := len([]rune(a))
	bLen := len([]rune(b))

	maxLen := aLen
	if bLen > maxLen {
		maxLen = bLen
	}
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshteinDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// levenshteinDistance computes the minimum number of single-character edits
// (insertions, deletions, or substitutions) required to transform a into b.
func levenshteinDistance(a, b string) int {
	aRunes := []rune(a)
	bRunes := []rune(b)
	aLen := len(aRunes)
	bLen := len(bRunes)

	if aLen == 0 {
		return bLen
	}
	if bLen == 0 {
		return aLen
	}

	// Two rows instead of a full matrix for O(min(m,n)) space; iterate over
	// the shorter string in the inner loop.
	if aLen > bLen {
		aRunes, bRunes = bRunes, aRunes
		aLen, bLen = bLen, aLen
	}

	prevRow := make([]int, aLen+1)
	currRow := make([]int, aLen+1)

	for i := 0; i <= aLen; i++ {
		prevRow[i] = i
	}

	for j := 1; j <= bLen; j++ {
		currRow[0] = j
		for i := 1; i <= aLen; i++ {
			cost := 1
			if aRunes[i-1] == bRunes[j-1] {
				cost = 0
			}

			deletion := prevRow[i] + 1
			insertion := currRow[i-1] + 1
			substitution := prevRow[i-1] + cost

			currRow[i] = min3(deletion, insertion, substitution)
		}
		prevRow, currRow = currRow, prevRow
	}

	return prevRow[aLen]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
