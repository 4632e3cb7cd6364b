package readinglog

import "sort"

// Stats are descriptive aggregates over a year's reading-log rows.
type Stats struct {
	BookCount    int
	AvgRating    float64
	TotalPages   int
	LongestTitle string
	LongestPages int
	TopAuthors   []string
}

// topAuthorCount bounds the TopAuthors list.
const topAuthorCount = 5

// ComputeStats aggregates the given entries. Unrated rows (rating 0) are
// excluded from the rating average but still count everywhere else.
func ComputeStats(entries []Entry) Stats {
	stats := Stats{BookCount: len(entries)}
	if len(entries) == 0 {
		return stats
	}

	ratingSum := 0.0
	rated := 0
	authorCounts := make(map[string]int)

	for _, e := range entries {
		if e.MyRating > 0 {
			ratingSum += e.MyRating
			rated++
		}
		stats.TotalPages += e.NumPages
		if e.NumPages > stats.LongestPages {
			stats.LongestPages = e.NumPages
			stats.LongestTitle = e.Title
		}
		if e.Author != "" {
			authorCounts[e.Author]++
		}
	}

	if rated > 0 {
		stats.AvgRating = ratingSum / float64(rated)
	}

	authors := make([]string, 0, len(authorCounts))
	for a := range authorCounts {
		authors = append(authors, a)
	}
	sort.Slice(authors, func(i, j int) bool {
		if authorCounts[authors[i]] != authorCounts[authors[j]] {
			return authorCounts[authors[i]] > authorCounts[authors[j]]
		}
		return authors[i] < authors[j]
	})
	if len(authors) > topAuthorCount {
		authors = authors[:topAuthorCount]
	}
	stats.TopAuthors = authors

	return stats
}
