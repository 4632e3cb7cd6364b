package harvest

// Placeholder values substituted when a sub-field fails to extract.
// The item is still counted; only the field degrades.
const (
	UnknownTitle  = "(unknown title)"
	UnknownAuthor = "(unknown author)"
)

// Item is one borrowed-item record pulled from the listing.
type Item struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	RawText string `json:"raw_text"`
	// CheckoutYear is derived from a substring scan of RawText,
	// not a structured date field. 0 means unknown.
	CheckoutYear int `json:"checkout_year"`
}

// ExtractionMode identifies which strategy produced a page's items.
type ExtractionMode int

const (
	ModeStructured ExtractionMode = iota
	ModeIndexed
)

func (m ExtractionMode) String() string {
	switch m {
	case ModeStructured:
		return "structured"
	case ModeIndexed:
		return "indexed-fallback"
	}
	return "unknown"
}

// StopReason records why a harvest run ended.
type StopReason int

const (
	StopNone StopReason = iota
	// StopPriorYear is the happy path: an item from the year before the
	// target year was observed, so the target range is fully covered.
	StopPriorYear
	// StopNoNextPage means the listing ran out before a prior-year item
	// appeared; the full available history was within range.
	StopNoNextPage
	// StopExhausted means neither extraction strategy produced items on a
	// page. The partial result collected so far is still returned.
	StopExhausted
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopPriorYear:
		return "sentinel-year-found"
	case StopNoNextPage:
		return "no-further-page"
	case StopExhausted:
		return "extraction-exhausted"
	}
	return "unknown"
}

// PageCursor tracks harvest progress across pages.
type PageCursor struct {
	PageIndex int
	Mode      ExtractionMode
	Stop      StopReason
}

// RawItem is an extracted item block before year classification.
type RawItem struct {
	Title  string
	Author string
	Text   string
}

// Result is what a harvest run returns. A run never fails outright:
// whatever was collected is returned along with the final cursor.
type Result struct {
	Items  []Item
	Cursor PageCursor
}
