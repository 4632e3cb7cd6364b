package reconcile

import (
	"log/slog"
	"strconv"

	"github.com/libwrapup/wrapup/internal/harvest"
)

// DefaultThreshold is the minimum similarity a fuzzy candidate must reach.
// Empirically chosen: it corresponds to near-identical modulo minor
// formatting differences, not loose resemblance. Tune against
// representative title pairs before trusting it for a new collection.
const DefaultThreshold = 0.9

// NoRating is the rendered rating for an item with no confident match.
const NoRating = "NR"

// MatchKind records how an item's rating was resolved.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchFuzzy
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchFuzzy:
		return "fuzzy"
	}
	return "none"
}

// LogRow is one reading-log row as the matcher sees it: a title and the
// personal rating attached to it.
type LogRow struct {
	Title  string
	Rating float64
}

// AnnotatedItem extends a harvested item with its resolved rating. The
// original item fields are never mutated.
type AnnotatedItem struct {
	harvest.Item
	Rating float64
	Kind   MatchKind
}

// RatingLabel renders the rating for output: the number, or NoRating when
// no confident match was found.
func (a AnnotatedItem) RatingLabel() string {
	if a.Kind == MatchNone {
		return NoRating
	}
	return strconv.FormatFloat(a.Rating, 'f', -1, 64)
}

// Result is the annotated table plus the match-rate diagnostic.
type Result struct {
	Rows      []AnnotatedItem
	Matched   int
	Total     int
	Unmatched []string
}

// Matcher reconciles harvested items against a reading log.
type Matcher struct {
	// Threshold for accepting a fuzzy candidate. Zero means DefaultThreshold.
	Threshold float64
}

// Reconcile annotates every item with the best-available rating. Exact
// lookup on the normalized key runs first; items still unmatched get one
// conservative fuzzy pass over the distinct log keys.
func (m Matcher) Reconcile(items []harvest.Item, log []LogRow) Result {
	threshold := m.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	// Last occurrence wins on key collisions; exact collisions after
	// normalization are rare and benign here.
	ratings := make(map[string]float64, len(log))
	keys := make([]string, 0, len(log))
	for _, row := range log {
		key := Normalize(row.Title)
		if key == "" {
			continue
		}
		if _, seen := ratings[key]; !seen {
			keys = append(keys, key)
		}
		ratings[key] = row.Rating
	}

	res := Result{
		Rows:  make([]AnnotatedItem, 0, len(items)),
		Total: len(items),
	}

	for _, item := range items {
		row := AnnotatedItem{Item: item}
		key := Normalize(item.Title)

		if rating, ok := ratings[key]; ok {
			row.Rating = rating
			row.Kind = MatchExact
		} else if cand, score := closest(key, keys); cand != "" && score >= threshold {
			row.Rating = ratings[cand]
			row.Kind = MatchFuzzy
			slog.Debug("fuzzy rating match",
				"title", item.Title, "candidate", cand, "similarity", score)
		} else {
			row.Kind = MatchNone
			res.Unmatched = append(res.Unmatched, item.Title)
		}

		if row.Kind != MatchNone {
			res.Matched++
		}
		res.Rows = append(res.Rows, row)
	}

	return res
}

// closest returns the highest-similarity candidate. Ties keep the first
// candidate in scan order; no semantic disambiguation is attempted.
func closest(key string, keys []string) (string, float64) {
	if key == "" {
		return "", 0
	}
	best := ""
	bestScore := 0.0
	for _, cand := range keys {
		if score := similarity(key, cand); score > bestScore {
			best, bestScore = cand, score
		}
	}
	return best, bestScore
}
