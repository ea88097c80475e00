package extract

import (
	"unicode/utf8"

	"eduparser/internal/scraper"
	"eduparser/lib/textutil"

	"github.com/antzucaro/matchr"
)

// DefaultMinSimilarity is the lowest similarity a label may have to be
// considered the same program. It tolerates punctuation and spacing drift but
// not a different program name.
const DefaultMinSimilarity = 0.85

// Similarity is the normalized edit distance ratio of the two labels after
// normalization, 1 means equal and 0 means nothing in common.
func Similarity(a, b string) float64 {
	a = textutil.NormalizeLabel(a)
	b = textutil.NormalizeLabel(b)
	if a == b {
		return 1
	}

	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	distance := matchr.Levenshtein(a, b)
	return 1 - float64(distance)/float64(longest)
}

// MatchLabel returns the index of the candidate most similar to target. ties
// go to the earliest candidate. if the best score is below minScore the result is
// an ExtractionError of kind row_not_found.
func MatchLabel(target string, candidates []string, minScore float64) (int, float64, error) {
	if minScore <= 0 {
		minScore = DefaultMinSimilarity
	}

	best := -1
	var bestScore float64
	for i, c := range candidates {
		if textutil.CollapseSpace(c) == "" {
			continue
		}
		score := Similarity(target, c)
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 || bestScore < minScore {
		return -1, bestScore, scraper.Extraction(
			scraper.ExtractRowNotFound,
			"no label similar to %q (best %.2f, need %.2f)",
			target, bestScore, minScore,
		)
	}
	return best, bestScore, nil
}
