// Package browser defines the narrow browser-automation capability the
// runner consumes, plus the Playwright-backed implementation. Tasks see
// only these interfaces; the engine behind them is swappable.
package browser

// ScreenshotOptions describe one pixel capture. Path and Type are set
// by the screenshot subsystem and are authoritative.
type ScreenshotOptions struct {
	Path     string
	Type     string // "png" or "jpeg"
	FullPage bool   // pages only
	Quality  int    // jpeg only, 0 = engine default
}

// Target is anything that can be captured: a page or an in-page
// element.
type Target interface {
	Screenshot(opts ScreenshotOptions) error
}

// Element is a handle to an in-page element.
type Element interface {
	Target
}

// Page is a single browser tab.
type Page interface {
	Target

	// Goto navigates to url and waits for the engine's default load
	// state.
	Goto(url string) error
	// QuerySelector returns the first element matching selector, or
	// (nil, nil) when nothing matches.
	QuerySelector(selector string) (Element, error)
	// SetViewport resizes the page viewport.
	SetViewport(width, height int) error
	// URL returns the page's current address.
	URL() string
	Close() error
}

// Browser is a running browser instance shared by all workers in a run.
type Browser interface {
	NewPage() (Page, error)
	Close() error
}
