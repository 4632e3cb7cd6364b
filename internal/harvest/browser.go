package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/libwrapup/wrapup/internal/config"
)

// Selectors collects every structural query the session issues against the
// listing markup. Defaults target the BiblioCommons layout; they live here so
// markup drift means touching one place.
type Selectors struct {
	// Structured extraction.
	ListItem string
	Title    string
	Author   string

	// Indexed fallback. SlotXPath and SlotTitleXPath take the 1-based slot
	// index; SlotAuthorXPath is relative to the slot element.
	SlotXPath       string
	SlotTitleXPath  string
	SlotAuthorXPath string

	// Navigation.
	NextXPath string

	// Login form.
	LoginUserXPath   string
	LoginPassXPath   string
	LoginSubmitXPath string
}

// DefaultSelectors returns the BiblioCommons selectors.
func DefaultSelectors() Selectors {
	return Selectors{
		ListItem: ".cp-batch-actions-list-item",
		Title:    "h2.cp-title .title-content",
		Author:   ".cp-by-author-block .author-link",

		SlotXPath:       "/html/body/div[1]/div/div/main/div/div/div[2]/div/div/div/div[3]/div/div[2]/div/div[2]/div[%d]",
		SlotTitleXPath:  "/html/body/div[1]/div/div/main/div/div/div[2]/div/div/div/div[3]/div/div[2]/div/div[2]/div[%d]/label/span[2]/span",
		SlotAuthorXPath: `.//span[contains(@class,"author-link")]`,

		NextXPath: "/html/body/div[1]/div/div/main/div/div/div[2]/div/div/div/div[3]/div/div[2]/section/nav/ul[1]/li[9]/a",

		LoginUserXPath:   "/html/body/div[2]/div[2]/main/div/div[2]/div[1]/div/div[2]/div[1]/form/div[2]/input",
		LoginPassXPath:   "/html/body/div[2]/div[2]/main/div/div[2]/div[1]/div/div[2]/div[1]/form/div[3]/input",
		LoginSubmitXPath: "/html/body/div[2]/div[2]/main/div/div[2]/div[1]/div/div[2]/div[1]/form/p[2]/input",
	}
}

// settleIdle is how long the network must be quiet after a pagination click
// before the next page is considered settled.
const settleIdle = 300 * time.Millisecond

// loginWait bounds each login form lookup.
const loginWait = 15 * time.Second

// Session owns the single browser instance for one harvest run. It
// implements PageSource; no other component touches the browser, and Close
// must run on every exit path.
type Session struct {
	cfg      config.Config
	sel      Selectors
	log      *slog.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// SessionOption adjusts a Session before first use.
type SessionOption func(*Session)

// WithSelectors replaces the default selectors, for catalogs whose markup
// diverges from the BiblioCommons layout.
func WithSelectors(sel Selectors) SessionOption {
	return func(s *Session) {
		s.sel = sel
	}
}

// NewSession launches a browser bound to ctx and opens a blank page.
func NewSession(ctx context.Context, cfg config.Config, opts ...SessionOption) (*Session, error) {
	l := launcher.New().Headless(cfg.Headless)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	s := &Session{
		cfg:      cfg,
		sel:      DefaultSelectors(),
		log:      slog.Default(),
		launcher: l,
		browser:  browser,
		page:     page,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login fills the account login form and submits it. This is deliberately
// thin glue: credentials come from the config object, and any failure is
// surfaced to the caller rather than retried.
func (s *Session) Login() error {
	s.log.Info("logging in", "url", s.cfg.LoginURL)

	if err := s.page.Navigate(s.cfg.LoginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	if err := s.page.WaitLoad(); err != nil {
		return fmt.Errorf("login page did not load: %w", err)
	}

	user, err := s.page.Timeout(loginWait).ElementX(s.sel.LoginUserXPath)
	if err != nil {
		return fmt.Errorf("username field not found: %w", err)
	}
	if err := user.Input(s.cfg.Username); err != nil {
		return fmt.Errorf("failed to fill username: %w", err)
	}

	pass, err := s.page.Timeout(loginWait).ElementX(s.sel.LoginPassXPath)
	if err != nil {
		return fmt.Errorf("password field not found: %w", err)
	}
	if err := pass.Input(s.cfg.Password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}

	submit, err := s.page.Timeout(loginWait).ElementX(s.sel.LoginSubmitXPath)
	if err != nil {
		return fmt.Errorf("login button not found: %w", err)
	}

	wait := s.page.WaitRequestIdle(settleIdle, nil, nil, nil)
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click login button: %w", err)
	}
	wait()

	return nil
}

// OpenListing navigates to page 1 of the recently-returned listing.
func (s *Session) OpenListing() error {
	s.log.Info("opening listing", "url", s.cfg.ListingURL)

	if err := s.page.Navigate(s.cfg.ListingURL); err != nil {
		return fmt.Errorf("failed to open listing: %w", err)
	}
	if err := s.page.WaitLoad(); err != nil {
		return fmt.Errorf("listing did not load: %w", err)
	}
	return nil
}

// WaitReady blocks until the listing container is present.
func (s *Session) WaitReady(timeout time.Duration) error {
	if _, err := s.page.Timeout(timeout).Element(s.sel.ListItem); err != nil {
		return fmt.Errorf("listing container not visible: %w", err)
	}
	return nil
}

// StructuredItems enumerates item blocks via the container selector. A
// missing title or author degrades to its placeholder; the item still counts.
func (s *Session) StructuredItems() ([]RawItem, error) {
	els, err := s.page.Elements(s.sel.ListItem)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate item blocks: %w", err)
	}

	items := make([]RawItem, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			continue
		}
		items = append(items, RawItem{
			Title:  s.subText(el, s.sel.Title, UnknownTitle),
			Author: s.subText(el, s.sel.Author, UnknownAuthor),
			Text:   text,
		})
	}
	return items, nil
}

// IndexedItem probes one positional slot directly by XPath.
func (s *Session) IndexedItem(idx int, timeout time.Duration) (RawItem, error) {
	el, err := s.page.Timeout(timeout).ElementX(fmt.Sprintf(s.sel.SlotXPath, idx))
	if err != nil {
		return RawItem{}, fmt.Errorf("slot %d not visible: %w", idx, err)
	}
	text, err := el.Text()
	if err != nil {
		return RawItem{}, fmt.Errorf("slot %d unreadable: %w", idx, err)
	}

	item := RawItem{Title: UnknownTitle, Author: UnknownAuthor, Text: text}

	if titleEl, err := s.page.Timeout(timeout).ElementX(fmt.Sprintf(s.sel.SlotTitleXPath, idx)); err == nil {
		if t, err := titleEl.Text(); err == nil && t != "" {
			item.Title = t
		}
	}
	if authorEl, err := el.Timeout(timeout).ElementX(s.sel.SlotAuthorXPath); err == nil {
		if a, err := authorEl.Text(); err == nil && a != "" {
			item.Author = a
		}
	}
	return item, nil
}

// NextPage clicks the next-page control and waits for the network to settle.
func (s *Session) NextPage() error {
	el, err := s.page.Timeout(5 * time.Second).ElementX(s.sel.NextXPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoNextPage, err)
	}

	wait := s.page.WaitRequestIdle(settleIdle, nil, nil, nil)
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("%w: click failed: %s", ErrNoNextPage, err)
	}
	wait()

	return nil
}

// Close tears the session down. Safe to call on every exit path.
func (s *Session) Close() {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
}

// subText reads a nested element's text, degrading to fallback.
func (s *Session) subText(el *rod.Element, selector, fallback string) string {
	sub, err := el.Timeout(2 * time.Second).Element(selector)
	if err != nil {
		return fallback
	}
	text, err := sub.Text()
	if err != nil || text == "" {
		return fallback
	}
	return text
}
