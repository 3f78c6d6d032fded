package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

type PlaywrightConfig struct {
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string

	FullPage bool

	Timeout time.Duration
	Delay   time.Duration

	Headless                  bool
	ChromeDevtoolsProtocolURL string
	// MaskColor fills masked elements, as a CSS color.
	MaskColor string
}

func DefaultPlaywrightConfig() PlaywrightConfig {
	return PlaywrightConfig{
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		FullPage:       true,
		Timeout:        30 * time.Second,
		Delay:          3 * time.Second,
		Headless:       true,
		MaskColor:      "#000000",
	}
}

// playwrightCapturer shares one browser between captures; every capture gets
// its own browser context.
type playwrightCapturer struct {
	config  PlaywrightConfig
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewPlaywrightCapturer(ctx context.Context, p PlaywrightConfig) (Capturer, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browser playwright.Browser
	if p.ChromeDevtoolsProtocolURL == "" {
		browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(p.Headless),
		})
		if err != nil {
			_ = pw.Stop()
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
	} else {
		browser, err = pw.Chromium.ConnectOverCDP(p.ChromeDevtoolsProtocolURL)
		if err != nil {
			_ = pw.Stop()
			return nil, fmt.Errorf("failed to connect to browser via CDP at %s: %w", p.ChromeDevtoolsProtocolURL, err)
		}
	}

	return &playwrightCapturer{
		config:  p,
		pw:      pw,
		browser: browser,
	}, nil
}

// Capture takes a lossless PNG screenshot of url.
func (c *playwrightCapturer) Capture(ctx context.Context, url string, captureOptions CaptureOptions) (*CaptureResult, error) {
	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  c.config.ViewportWidth,
			Height: c.config.ViewportHeight,
		},
	}
	if c.config.UserAgent != "" {
		contextOptions.UserAgent = playwright.String(c.config.UserAgent)
	}
	if len(captureOptions.Headers) > 0 {
		contextOptions.ExtraHttpHeaders = captureOptions.Headers
	}

	browserContext, err := c.browser.NewContext(contextOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	defer browserContext.Close()

	page, err := browserContext.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = page.Close()
		case <-done:
		}
	}()
	defer close(done)

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(c.config.Timeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if c.config.Delay > 0 {
		select {
		case <-time.After(c.config.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	options := playwright.PageScreenshotOptions{
		FullPage:   playwright.Bool(c.config.FullPage),
		Type:       playwright.ScreenshotTypePng,
		Animations: playwright.ScreenshotAnimationsDisabled,
		Caret:      playwright.ScreenshotCaretHide,
	}
	for _, selector := range captureOptions.MaskSelectors {
		options.Mask = append(options.Mask, page.Locator(selector))
	}
	if len(options.Mask) > 0 && c.config.MaskColor != "" {
		options.MaskColor = playwright.String(c.config.MaskColor)
	}

	screenshot, err := page.Screenshot(options)
	if err != nil {
		return nil, fmt.Errorf("failed to take screenshot: %w", err)
	}

	return &CaptureResult{
		Screenshot: screenshot,
	}, nil
}

func (c *playwrightCapturer) Close() error {
	if err := c.browser.Close(); err != nil {
		_ = c.pw.Stop()
		return fmt.Errorf("failed to close browser: %w", err)
	}
	if err := c.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
