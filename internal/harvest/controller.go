package harvest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ErrNoNextPage signals that the next-page control is absent or dead.
// It is a normal terminal condition, not a failure.
var ErrNoNextPage = errors.New("no next page control")

// PageSource abstracts the navigable listing so the controller can be
// exercised against a fake in tests. Implementations own a single stateful
// session; pagination is navigation, not independent page addressing.
type PageSource interface {
	// WaitReady blocks until the listing container for the current page is
	// visible, up to timeout.
	WaitReady(timeout time.Duration) error

	// StructuredItems enumerates item blocks via the stable container
	// selector. Sub-field failures degrade to placeholder values inside the
	// returned RawItems rather than producing an error.
	StructuredItems() ([]RawItem, error)

	// IndexedItem probes positional slot idx (1-based). An error means the
	// slot never became visible within timeout.
	IndexedItem(idx int, timeout time.Duration) (RawItem, error)

	// NextPage activates the next-page control and waits for the listing to
	// settle. Returns ErrNoNextPage when the control cannot be located or
	// activated.
	NextPage() error
}

// Controller walks the listing page by page, collecting every item checked
// out in the target year. The listing is reverse-chronological, so the first
// item from the prior year terminates the entire run.
type Controller struct {
	source PageSource
	year   int
	log    *slog.Logger

	// ReadyTimeout bounds the wait for a page's listing container.
	ReadyTimeout time.Duration
	// SlotTimeout bounds each positional probe during indexed fallback.
	SlotTimeout time.Duration
	// MaxSlots is the fixed upper bound of slots probed per page.
	MaxSlots int
	// MissStreak ends the indexed probe early after this many consecutive
	// slot misses.
	MissStreak int
}

// NewController creates a controller over source for targetYear.
func NewController(source PageSource, targetYear int) *Controller {
	return &Controller{
		source:       source,
		year:         targetYear,
		log:          slog.Default(),
		ReadyTimeout: 15 * time.Second,
		SlotTimeout:  time.Second,
		MaxSlots:     50,
		MissStreak:   5,
	}
}

// Run harvests until the prior year is observed, the listing runs out, or
// extraction is exhausted. It never returns an error: the caller gets the
// collected items plus a stop reason and interprets from there. ctx is the
// caller's wall-clock budget; cancellation yields a degraded stop with
// whatever was collected.
func (c *Controller) Run(ctx context.Context) Result {
	cursor := PageCursor{PageIndex: 1, Mode: ModeStructured}
	var items []Item

	for {
		if ctx.Err() != nil {
			c.log.Warn("harvest budget exceeded", "page", cursor.PageIndex, "collected", len(items))
			cursor.Stop = StopExhausted
			break
		}

		raw, mode := c.extractPage(cursor.PageIndex)
		cursor.Mode = mode
		if len(raw) == 0 {
			c.log.Warn("no items extractable on page", "page", cursor.PageIndex)
			cursor.Stop = StopExhausted
			break
		}
		c.log.Info("extracted page", "page", cursor.PageIndex, "items", len(raw), "mode", mode.String())

		stopped := false
		for _, r := range raw {
			switch classifyYear(r.Text, c.year) {
			case c.year:
				items = append(items, Item{
					Title:        r.Title,
					Author:       r.Author,
					RawText:      strings.TrimSpace(r.Text),
					CheckoutYear: c.year,
				})
			case c.year - 1:
				// First prior-year item ends the whole run; the rest of
				// this page and all further pages are skipped.
				stopped = true
			}
			if stopped {
				break
			}
		}
		if stopped {
			cursor.Stop = StopPriorYear
			break
		}

		if err := c.source.NextPage(); err != nil {
			if !errors.Is(err, ErrNoNextPage) {
				c.log.Warn("next page navigation failed", "page", cursor.PageIndex, "err", err)
			}
			cursor.Stop = StopNoNextPage
			break
		}
		cursor.PageIndex++
	}

	c.log.Info("harvest finished",
		"items", len(items),
		"pages", cursor.PageIndex,
		"stop", cursor.Stop.String())

	return Result{Items: items, Cursor: cursor}
}

// extractPage tries each extraction strategy in order until one yields a
// non-empty result. Structured extraction is primary; indexed probing is the
// degradation path for selector mismatch or layout drift.
func (c *Controller) extractPage(pageIndex int) ([]RawItem, ExtractionMode) {
	strategies := []struct {
		mode    ExtractionMode
		extract func() []RawItem
	}{
		{ModeStructured, c.extractStructured},
		{ModeIndexed, func() []RawItem { return c.extractIndexed(pageIndex) }},
	}

	for _, s := range strategies {
		if raw := s.extract(); len(raw) > 0 {
			return raw, s.mode
		}
	}
	return nil, ModeIndexed
}

func (c *Controller) extractStructured() []RawItem {
	if err := c.source.WaitReady(c.ReadyTimeout); err != nil {
		c.log.Warn("listing container not ready", "err", err)
		return nil
	}
	raw, err := c.source.StructuredItems()
	if err != nil {
		c.log.Warn("structured extraction failed, will fall back", "err", err)
		return nil
	}
	return raw
}

func (c *Controller) extractIndexed(pageIndex int) []RawItem {
	c.log.Warn("falling back to indexed extraction", "page", pageIndex)

	var raw []RawItem
	misses := 0
	for idx := 1; idx <= c.MaxSlots; idx++ {
		item, err := c.source.IndexedItem(idx, c.SlotTimeout)
		if err != nil {
			misses++
			if misses >= c.MissStreak {
				break
			}
			continue
		}
		misses = 0
		raw = append(raw, item)
	}
	return raw
}
