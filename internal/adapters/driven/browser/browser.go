package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/custodia-labs/starsync/internal/core/ports/driven"
	"github.com/custodia-labs/starsync/internal/logger"
)

// Ensure Browser implements the interface.
var _ driven.Browser = (*Browser)(nil)

// Config holds browser configuration.
type Config struct {
	// Bin is the Chrome/Chromium binary. Empty lets rod find or download one.
	Bin string

	// Headless hides the browser window.
	Headless bool

	// UserDataDir is the profile directory holding the page's login session.
	UserDataDir string

	// ControlURL connects to an already running browser instead of launching one.
	ControlURL string
}

// Browser owns one Chrome instance and opens background tabs in it.
type Browser struct {
	cfg Config

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// New creates a browser. Nothing is launched until the first tab is opened.
func New(cfg Config) *Browser {
	return &Browser{cfg: cfg}
}

// OpenHiddenTab opens a background tab on about:blank.
func (b *Browser) OpenHiddenTab(ctx context.Context) (driven.BrowserTab, error) {
	browser, err := b.ensureStarted(ctx)
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank", Background: true})
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}
	return newTab(&rodPage{page: page.Context(context.Background())}), nil
}

// Close shuts the browser down. Closing a browser that never started is a no-op.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		b.launcher.Cleanup()
		b.launcher = nil
	}
	return err
}

// ensureStarted launches or connects to the browser. Launching, including a
// first-run browser download, is bounded by ctx; the connection it returns is not.
func (b *Browser) ensureStarted(ctx context.Context) (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if b.browser != nil {
		if _, err := b.browser.Version(); err == nil {
			return b.browser, nil
		}
		logger.Debug("Stale browser connection, relaunching")
		_ = b.browser.Close()
		b.browser = nil
		if b.launcher != nil {
			b.launcher.Cleanup()
			b.launcher = nil
		}
	}

	controlURL := b.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Context(ctx).Headless(b.cfg.Headless)
		if b.cfg.Bin != "" {
			l = l.Bin(b.cfg.Bin)
		}
		if b.cfg.UserDataDir != "" {
			l = l.UserDataDir(b.cfg.UserDataDir)
		}
		u, err := l.Launch()
		if err != nil {
			l.Kill()
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
		b.launcher = l
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	logger.Debug("Browser connected (headless=%t)", b.cfg.Headless)

	b.browser = browser.Context(context.Background())
	return b.browser, nil
}

// page is the slice of a browser page a tab needs.
type page interface {
	Navigate(ctx context.Context, url string) error
	Snapshot(ctx context.Context) (html, url string, err error)
	Close() error
}

// rodPage adapts *rod.Page to page.
type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)
	if err := pg.Navigate(url); err != nil {
		return err
	}
	return pg.WaitLoad()
}

func (p *rodPage) Snapshot(ctx context.Context) (string, string, error) {
	pg := p.page.Context(ctx)
	html, err := pg.HTML()
	if err != nil {
		return "", "", fmt.Errorf("read page html: %w", err)
	}
	info, err := pg.Info()
	if err != nil {
		return "", "", fmt.Errorf("read page info: %w", err)
	}
	return html, info.URL, nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

// tab implements driven.BrowserTab over a page.
type tab struct {
	page page

	closeOnce sync.Once
	closeErr  error
}

var _ driven.BrowserTab = (*tab)(nil)

func newTab(p page) *tab {
	return &tab{page: p}
}

// Navigate loads url and waits for the load event.
func (t *tab) Navigate(ctx context.Context, url string) error {
	if err := t.page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// Inject snapshots the DOM and runs the extractor on it off the caller's goroutine.
// The channel always receives exactly one message and is then closed.
func (t *tab) Inject(ctx context.Context, extractor driven.PageExtractor) <-chan driven.TabMessage {
	out := make(chan driven.TabMessage, 1)
	go func() {
		defer close(out)
		if extractor == nil {
			out <- driven.TabMessage{Err: errors.New("no extractor")}
			return
		}
		html, url, err := t.page.Snapshot(ctx)
		if err != nil {
			out <- driven.TabMessage{Err: err}
			return
		}
		result := extractor.Extract(html, url)
		out <- driven.TabMessage{Result: &result}
	}()
	return out
}

// Close closes the tab. Repeated calls return the first result.
func (t *tab) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.page.Close()
	})
	return t.closeErr
}
