package browser

import (
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"
)

// LaunchOptions control how the Playwright Chromium instance starts.
type LaunchOptions struct {
	Headless bool
}

// Engine is the Playwright-backed Browser implementation.
type Engine struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// Launch installs the Playwright driver if needed, starts it and
// launches Chromium. Driver output is discarded so it cannot interleave
// with run logging.
func Launch(opts LaunchOptions) (*Engine, error) {
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		pw.Stop() //nolint:errcheck // launch error takes precedence
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Engine{pw: pw, browser: b}, nil
}

// NewPage opens a new tab.
func (e *Engine) NewPage() (Page, error) {
	page, err := e.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	return &playwrightPage{page: page}, nil
}

// Close shuts the browser down and stops the Playwright driver.
func (e *Engine) Close() error {
	browserErr := e.browser.Close()
	if err := e.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	if browserErr != nil {
		return fmt.Errorf("failed to close browser: %w", browserErr)
	}
	return nil
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(url string) error {
	if _, err := p.page.Goto(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (p *playwrightPage) QuerySelector(selector string) (Element, error) {
	handle, err := p.page.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	if handle == nil {
		return nil, nil
	}
	return &playwrightElement{handle: handle}, nil
}

func (p *playwrightPage) SetViewport(width, height int) error {
	if err := p.page.SetViewportSize(width, height); err != nil {
		return fmt.Errorf("viewport resize failed: %w", err)
	}
	return nil
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Screenshot(opts ScreenshotOptions) error {
	pwOpts := playwright.PageScreenshotOptions{
		Path: playwright.String(opts.Path),
		Type: screenshotType(opts.Type),
	}
	if opts.FullPage {
		pwOpts.FullPage = playwright.Bool(true)
	}
	if opts.Quality > 0 {
		pwOpts.Quality = playwright.Int(opts.Quality)
	}
	if _, err := p.page.Screenshot(pwOpts); err != nil {
		return fmt.Errorf("page screenshot failed: %w", err)
	}
	return nil
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}

type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e *playwrightElement) Screenshot(opts ScreenshotOptions) error {
	pwOpts := playwright.ElementHandleScreenshotOptions{
		Path: playwright.String(opts.Path),
		Type: screenshotType(opts.Type),
	}
	if opts.Quality > 0 {
		pwOpts.Quality = playwright.Int(opts.Quality)
	}
	if _, err := e.handle.Screenshot(pwOpts); err != nil {
		return fmt.Errorf("element screenshot failed: %w", err)
	}
	return nil
}

// screenshotType maps the runner's image type names onto Playwright's.
// Unrecognized values fall back to PNG; the screenshot subsystem has
// already validated the type by the time a capture reaches this layer.
func screenshotType(imageType string) *playwright.ScreenshotType {
	if imageType == "jpeg" {
		return playwright.ScreenshotTypeJpeg
	}
	return playwright.ScreenshotTypePng
}
