// Package fuzzy scores string similarity on a 0-100 scale. Scores follow the
// Indel-normalized family (ratio, partial, token sort/set and the weighted WRatio
// combination) so thresholds tuned against those scorers carry over unchanged.
package fuzzy

import (
	"sort"
	"strings"
)

const (
	unbaseScale = 0.95
	partialHigh = 0.9
	partialLow  = 0.6
)

// Scorer compares two strings and returns a score in [0, 100]
type Scorer func(a, b string) float64

// Ratio is the normalized Indel similarity: 2*LCS / (len(a)+len(b)) * 100
func Ratio(a, b string) float64 {
	return ratioRunes([]rune(a), []rune(b))
}

func ratioRunes(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 100 * float64(2*lcsLength(a, b)) / float64(total)
}

// lcsLength returns the length of the longest common subsequence using two DP rows
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// PartialRatio is the best Ratio between the shorter string and any window of the
// longer one, including windows clipped at either end.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		if len(ra) == len(rb) {
			return 100
		}
		return 0
	}
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	best := partialWindows(ra, rb)
	if best < 100 && len(ra) == len(rb) {
		if swapped := partialWindows(rb, ra); swapped > best {
			best = swapped
		}
	}
	return best
}

func partialWindows(needle, hay []rune) float64 {
	n, m := len(needle), len(hay)
	best := 0.0
	consider := func(window []rune) bool {
		if score := ratioRunes(needle, window); score > best {
			best = score
		}
		return best == 100
	}
	for i := 1; i < n; i++ {
		if consider(hay[:i]) {
			return best
		}
	}
	for i := 0; i <= m-n; i++ {
		if consider(hay[i : i+n]) {
			return best
		}
	}
	for i := m - n + 1; i < m; i++ {
		if consider(hay[i:]) {
			return best
		}
	}
	return best
}

// TokenSortRatio compares the strings after sorting their whitespace-separated tokens
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedJoin(strings.Fields(a)), sortedJoin(strings.Fields(b)))
}

// TokenSetRatio compares the shared tokens against each side's shared+remaining tokens
func TokenSetRatio(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter, diffAB, diffBA := splitSets(sa, sb)
	if len(inter) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	sect := sortedJoin(inter)
	combAB := strings.TrimSpace(sect + " " + sortedJoin(diffAB))
	combBA := strings.TrimSpace(sect + " " + sortedJoin(diffBA))

	result := Ratio(combAB, combBA)
	if sect != "" {
		result = max(result, Ratio(sect, combAB), Ratio(sect, combBA))
	}
	return result
}

// TokenRatio is the better of TokenSortRatio and TokenSetRatio
func TokenRatio(a, b string) float64 {
	return max(TokenSortRatio(a, b), TokenSetRatio(a, b))
}

// PartialTokenRatio applies PartialRatio to sorted tokens and to the non-shared tokens.
// Any shared token scores 100.
func PartialTokenRatio(a, b string) float64 {
	fa, fb := strings.Fields(a), strings.Fields(b)
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter, diffAB, diffBA := splitSets(sa, sb)
	if len(inter) > 0 {
		return 100
	}

	result := PartialRatio(sortedJoin(fa), sortedJoin(fb))
	if len(diffAB) == len(fa) && len(diffBA) == len(fb) {
		return result
	}
	return max(result, PartialRatio(sortedJoin(diffAB), sortedJoin(diffBA)))
}

// WRatio weighs Ratio, token and partial scorers by the length ratio of the inputs
func WRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}

	lenRatio := float64(la) / float64(lb)
	if lb > la {
		lenRatio = float64(lb) / float64(la)
	}

	end := Ratio(a, b)
	if lenRatio < 1.5 {
		return max(end, TokenRatio(a, b)*unbaseScale)
	}

	partialScale := partialHigh
	if lenRatio >= 8.0 {
		partialScale = partialLow
	}
	end = max(end, PartialRatio(a, b)*partialScale)
	return max(end, PartialTokenRatio(a, b)*unbaseScale*partialScale)
}

// ExtractOne returns the index and score of the best-scoring choice for query.
// The first choice wins ties. It returns -1 when choices is empty.
func ExtractOne(query string, choices []string, scorer Scorer) (int, float64) {
	if scorer == nil {
		scorer = WRatio
	}
	bestIdx, bestScore := -1, -1.0
	for i, choice := range choices {
		score := scorer(query, choice)
		if score > bestScore {
			bestIdx, bestScore = i, score
			if score == 100 {
				break
			}
		}
	}
	if bestIdx < 0 {
		return -1, 0
	}
	return bestIdx, bestScore
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

func splitSets(a, b map[string]struct{}) (inter, diffAB, diffBA []string) {
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter = append(inter, tok)
		} else {
			diffAB = append(diffAB, tok)
		}
	}
	for tok := range b {
		if _, ok := a[tok]; !ok {
			diffBA = append(diffBA, tok)
		}
	}
	return inter, diffAB, diffBA
}

func sortedJoin(tokens []string) string {
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}
