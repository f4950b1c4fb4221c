// Package pdf converts the print document to PDF through headless Chrome
// and caches the rendered bytes.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pri779/Ayurvedic-chatbot/interfaces"
	"github.com/pri779/Ayurvedic-chatbot/logging"
)

// ErrRendererDisabled is returned when PDF rendering is switched off
var ErrRendererDisabled = errors.New("pdf renderer is disabled")

// Compile-time checks
var (
	_ interfaces.PDFRenderer = (*ChromeRenderer)(nil)
	_ interfaces.PDFRenderer = DisabledRenderer{}
)

// ChromeConfig selects how Chrome is reached
type ChromeConfig struct {
	// ControlURL of a running Chrome DevTools endpoint. When empty a
	// headless Chrome is launched.
	ControlURL string
	// Bin is the Chrome executable used when launching. Empty lets the
	// launcher find or download one.
	Bin string
}

// ChromeRenderer prints HTML to PDF with a shared headless browser.
// The browser is started on first use and restarted if it went away.
type ChromeRenderer struct {
	cfg ChromeConfig

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewChromeRenderer creates a renderer; no browser is started yet
func NewChromeRenderer(cfg ChromeConfig) *ChromeRenderer {
	return &ChromeRenderer{cfg: cfg}
}

// RenderPDF loads html into a fresh page and prints it
func (c *ChromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	browser, err := c.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			logging.Debug("Failed to close page", "error", err)
		}
	}()

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("failed to set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed waiting for document load: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}

	doc, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf stream: %w", err)
	}
	if len(doc) == 0 {
		return nil, errors.New("renderer returned an empty pdf")
	}

	return doc, nil
}

// connect returns a live browser, starting or reconnecting as needed
func (c *ChromeRenderer) connect() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		if _, err := c.browser.Version(); err == nil {
			return c.browser, nil
		}
		logging.Warn("Stale browser connection detected, reconnecting")
		c.closeLocked()
	}

	controlURL := c.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true).Leakless(false)
		if c.cfg.Bin != "" {
			l = l.Bin(c.cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch chrome: %w", err)
		}
		c.launcher = l
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	c.browser = browser
	logging.Info("Connected to chrome for pdf rendering", "launched", c.launcher != nil)
	return browser, nil
}

// closeLocked tears down the browser and any launched process (caller holds mu)
func (c *ChromeRenderer) closeLocked() {
	if c.browser != nil {
		if err := c.browser.Close(); err != nil {
			logging.Debug("Failed to close browser", "error", err)
		}
		c.browser = nil
	}
	if c.launcher != nil {
		c.launcher.Kill()
		c.launcher = nil
	}
}

// Close shuts the browser down
func (c *ChromeRenderer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}

// Enabled reports that this renderer produces documents
func (c *ChromeRenderer) Enabled() bool { return true }

// DisabledRenderer refuses every render. Used when PDF_RENDERER=none.
type DisabledRenderer struct{}

// RenderPDF always fails with ErrRendererDisabled
func (DisabledRenderer) RenderPDF(context.Context, string) ([]byte, error) {
	return nil, ErrRendererDisabled
}

// Enabled reports false
func (DisabledRenderer) Enabled() bool { return false }

// renderTimeout bounds a single render
func renderTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
