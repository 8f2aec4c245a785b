package stock

import "strings"

// DefaultMatchThreshold is the confidence a fuzzy match must exceed before
// a scanned or typed name is treated as an existing item.
const DefaultMatchThreshold = 0.80

// MatchResult is the outcome of a fuzzy lookup. Item is nil when the
// candidate list is empty or the query is blank; Score is then 0.
type MatchResult struct {
	Item  *StockItem
	Score float64
}

// FindBestMatch scores free text against the identifying fields (title and
// SKU) of every candidate and returns the best-scoring item. Ties keep the
// first-encountered candidate. The threshold decision is left to callers.
func FindBestMatch(query string, candidates []StockItem) MatchResult {
	query = strings.TrimSpace(query)
	if query == "" || len(candidates) == 0 {
		return MatchResult{}
	}

	best := MatchResult{}
	for idx := range candidates {
		c := &candidates[idx]
		score := Similarity(query, c.Title)
		if s := Similarity(query, c.SKU); s > score {
			score = s
		}
		if best.Item == nil || score > best.Score {
			best = MatchResult{Item: c, Score: score}
		}
	}
	return best
}

// Similarity computes the Sørensen-Dice coefficient over character bigrams
// of the case-folded, whitespace-stripped inputs. Identical strings score
// 1.0, strings sharing no bigram score 0, and the score degrades
// monotonically as the strings drift apart.
func Similarity(a, b string) float64 {
	a = normalizeForMatch(a)
	b = normalizeForMatch(b)

	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	runesA := []rune(a)
	runesB := []rune(b)
	if len(runesA) < 2 || len(runesB) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(runesA)-1)
	for i := 0; i < len(runesA)-1; i++ {
		bigrams[string(runesA[i:i+2])]++
	}

	matches := 0
	for i := 0; i < len(runesB)-1; i++ {
		g := string(runesB[i : i+2])
		if bigrams[g] > 0 {
			bigrams[g]--
			matches++
		}
	}

	return 2.0 * float64(matches) / float64(len(runesA)-1+len(runesB)-1)
}

func normalizeForMatch(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}
