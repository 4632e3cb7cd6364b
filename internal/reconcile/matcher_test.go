package reconcile

import (
	"testing"

	"github.com/libwrapup/wrapup/internal/harvest"
)

func items(titles ...string) []harvest.Item {
	out := make([]harvest.Item, 0, len(titles))
	for _, title := range titles {
		out = append(out, harvest.Item{Title: title, Author: "Someone", CheckoutYear: 2025})
	}
	return out
}

func TestExactMatchAfterNormalization(t *testing.T) {
	result := Matcher{}.Reconcile(
		items("Dune"),
		[]LogRow{{Title: "Dune ", Rating: 5}},
	)

	row := result.Rows[0]
	if row.Kind != MatchExact {
		t.Errorf("Expected exact match, got %s", row.Kind)
	}
	if row.Rating != 5 {
		t.Errorf("Expected rating 5, got %v", row.Rating)
	}
	if result.Matched != 1 {
		t.Errorf("Expected 1 matched, got %d", result.Matched)
	}
}

func TestExactMatchWinsOverFuzzyCandidate(t *testing.T) {
	result := Matcher{}.Reconcile(
		items("Dune"),
		[]LogRow{
			{Title: "Dunes", Rating: 2}, // near-identical but not exact
			{Title: "Dune", Rating: 5},
		},
	)

	row := result.Rows[0]
	if row.Kind != MatchExact {
		t.Errorf("Expected exact match to take priority, got %s", row.Kind)
	}
	if row.Rating != 5 {
		t.Errorf("Expected the exact entry's rating 5, got %v", row.Rating)
	}
}

func TestFuzzyMatchNearIdentical(t *testing.T) {
	result := Matcher{}.Reconcile(
		items("The Hobbitt"),
		[]LogRow{{Title: "The Hobbit", Rating: 4}},
	)

	row := result.Rows[0]
	if row.Kind != MatchFuzzy {
		t.Fatalf("Expected fuzzy match, got %s", row.Kind)
	}
	if row.Rating != 4 {
		t.Errorf("Expected rating 4, got %v", row.Rating)
	}
}

func TestReorderedTitleStaysUnmatched(t *testing.T) {
	result := Matcher{}.Reconcile(
		items("The Martian Chronicles"),
		[]LogRow{{Title: "Martian Chronicles, The", Rating: 4}},
	)

	row := result.Rows[0]
	if row.Kind != MatchNone {
		t.Errorf("Expected no match for reordered title, got %s", row.Kind)
	}
	if row.RatingLabel() != NoRating {
		t.Errorf("Expected %s, got %s", NoRating, row.RatingLabel())
	}
	if len(result.Unmatched) != 1 || result.Unmatched[0] != "The Martian Chronicles" {
		t.Errorf("Expected unmatched list to carry the title, got %v", result.Unmatched)
	}
}

func TestEmptyReadingLog(t *testing.T) {
	result := Matcher{}.Reconcile(items("Book A", "Book B", "Book C"), nil)

	if result.Matched != 0 {
		t.Errorf("Expected 0 matches, got %d", result.Matched)
	}
	if result.Total != 3 {
		t.Errorf("Expected total 3, got %d", result.Total)
	}
	for _, row := range result.Rows {
		if row.Kind != MatchNone {
			t.Errorf("Expected no match for %s, got %s", row.Title, row.Kind)
		}
		if row.RatingLabel() != NoRating {
			t.Errorf("Expected %s for %s, got %s", NoRating, row.Title, row.RatingLabel())
		}
	}
}

func TestLastWriteWinsOnKeyCollision(t *testing.T) {
	result := Matcher{}.Reconcile(
		items("Emma"),
		[]LogRow{
			{Title: "Emma", Rating: 3},
			{Title: "Emma (Penguin Classics)", Rating: 5},
		},
	)

	if result.Rows[0].Rating != 5 {
		t.Errorf("Expected later occurrence to win, got rating %v", result.Rows[0].Rating)
	}
}

func TestRatingLabelConsistency(t *testing.T) {
	result := Matcher{}.Reconcile(
		items("Dune", "The Hobbitt", "Something Else Entirely"),
		[]LogRow{
			{Title: "Dune", Rating: 5},
			{Title: "The Hobbit", Rating: 4},
		},
	)

	// NR if and only if the match kind is none.
	for _, row := range result.Rows {
		isNR := row.RatingLabel() == NoRating
		isNone := row.Kind == MatchNone
		if isNR != isNone {
			t.Errorf("%s: label %q inconsistent with kind %s", row.Title, row.RatingLabel(), row.Kind)
		}
	}
	if result.Matched != 2 {
		t.Errorf("Expected 2 matched, got %d", result.Matched)
	}
}

func TestCustomThreshold(t *testing.T) {
	// "the hobbitt" vs "the hobbit" sits at similarity ~0.91: above the
	// default threshold, below a stricter one.
	strict := Matcher{Threshold: 0.95}.Reconcile(
		items("The Hobbitt"),
		[]LogRow{{Title: "The Hobbit", Rating: 4}},
	)
	if strict.Rows[0].Kind != MatchNone {
		t.Errorf("Expected strict threshold to reject, got %s", strict.Rows[0].Kind)
	}
}

func TestItemFieldsNeverMutated(t *testing.T) {
	source := items("Dune")
	source[0].RawText = "Dune\nChecked out on: Dec 1, 2025"

	result := Matcher{}.Reconcile(source, []LogRow{{Title: "Dune", Rating: 5}})

	row := result.Rows[0]
	if row.Title != "Dune" || row.Author != "Someone" || row.RawText != source[0].RawText {
		t.Error("Original item fields must be extended, not mutated")
	}
}
