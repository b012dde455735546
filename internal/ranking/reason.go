package ranking

import (
	"fmt"
	"strings"
)

const reasonSeparator = " · "

// MatchReason renders the strongest signal behind a score followed by the
// walk time and the price tier, for example "High protein · 10 min walk · $$".
//
// Signals are compared by how much of their own weight they earned. Keyword
// credit only counts when a keyword actually matched and social credit only
// when a friend loved the place. When proximity is the strongest signal the
// walk time alone leads. Ties go to keyword, social, rating, distance in that
// order.
func MatchReason(sc ScoredCandidate, walkMinutes int, w Weights) string {
	b := sc.Breakdown
	walk := fmt.Sprintf("%d min walk", walkMinutes)

	lead := ""
	best := strength(b.Distance, w.Distance)
	if s := strength(b.Rating, w.Rating); s > 0 && s >= best {
		lead, best = fmt.Sprintf("★ %.1f", sc.Vendor.Rating), s
	}
	if n := sc.Vendor.FriendsLoved(); n > 0 {
		if s := strength(b.Social, w.Social); s > 0 && s >= best {
			lead, best = friendsPhrase(n), s
		}
	}
	if b.MatchedLabel != "" {
		if s := strength(b.Keyword, w.Keyword); s > 0 && s >= best {
			lead = capitalize(b.MatchedLabel)
		}
	}

	parts := make([]string, 0, 3)
	if lead != "" {
		parts = append(parts, lead)
	}
	parts = append(parts, walk)
	if sc.Vendor.PriceTier.Valid() {
		parts = append(parts, sc.Vendor.PriceTier.String())
	}
	return strings.Join(parts, reasonSeparator)
}

// strength is the fraction of the dimension's maximum that was earned.
func strength(points, weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	return points / (100 * weight)
}

func friendsPhrase(n int) string {
	if n == 1 {
		return "1 friend loved it"
	}
	return fmt.Sprintf("%d friends loved it", n)
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
