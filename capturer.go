package fullpage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Capturer takes full-page screenshots of web pages by scrolling a
// headless browser viewport and stitching the captures into one tall PNG.
//
// A Capturer manages a headless browser instance that is reused across
// captures for performance. It is safe for concurrent use, but only one
// capture session runs at a time; see [BusyPolicy] for what happens to
// the others.
//
// Call [Capturer.Close] when the Capturer is no longer needed to release
// browser resources.
type Capturer struct {
	cfg           capturerConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	// sessionMu serializes capture sessions: a session exclusively owns
	// the page's scroll position for its whole duration.
	sessionMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

// NewCapturer creates a Capturer with the given options.
//
// It starts a headless browser in the background. The caller must call
// [Capturer.Close] when finished.
func NewCapturer(opts ...Option) (*Capturer, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.autoDownload && cfg.chromePath == "" {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("fullpage: starting browser: %w", err)
	}

	return &Capturer{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Capturer, including the
// browser process. Close is idempotent.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.browserCancel()
	c.allocCancel()
	return nil
}

// CaptureURL captures the full page at rawURL.
// If cfg is nil, [DefaultCaptureConfig] values are used.
func (c *Capturer) CaptureURL(ctx context.Context, rawURL string, cfg *CaptureConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("fullpage: invalid URL %q: %w", rawURL, err)
	}
	return c.capture(ctx, rawURL, cfg)
}

// CaptureFile captures the full page rendered from a local HTML file.
// If cfg is nil, [DefaultCaptureConfig] values are used.
func (c *Capturer) CaptureFile(ctx context.Context, path string, cfg *CaptureConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("fullpage: resolving path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("fullpage: %w", err)
	}
	return c.capture(ctx, "file://"+abs, cfg)
}

// CaptureHTML captures the full page rendered from an HTML string.
// If cfg is nil, [DefaultCaptureConfig] values are used.
func (c *Capturer) CaptureHTML(ctx context.Context, html string, cfg *CaptureConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "fullpage-*.html")
	if err != nil {
		return nil, fmt.Errorf("fullpage: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return nil, fmt.Errorf("fullpage: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("fullpage: closing temp file: %w", err)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("fullpage: resolving path: %w", err)
	}
	return c.capture(ctx, "file://"+abs, cfg)
}

// capture opens a tab, runs one capture session in it, and packages the
// stitched image.
func (c *Capturer) capture(ctx context.Context, targetURL string, cfg *CaptureConfig) (*Result, error) {
	resolved := cfg.resolved()

	if err := c.acquireSession(); err != nil {
		return nil, err
	}
	defer c.sessionMu.Unlock()

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	defer tabCancel()

	var data []byte
	actions := make([]chromedp.Action, 0, 4)
	if resolved.ViewportWidth > 0 && resolved.ViewportHeight > 0 {
		actions = append(actions, chromedp.EmulateViewport(
			int64(resolved.ViewportWidth), int64(resolved.ViewportHeight)))
	}
	actions = append(actions,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			data, err = c.runSession(ctx, resolved)
			return err
		}),
	)

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if isSessionError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("fullpage: loading %s: %w", targetURL, err)
	}

	return &Result{data: data, filename: outputFilename(time.Now())}, nil
}

// runSession drives one probe → (scroll → settle → capture)* → restore →
// stitch sequence inside an open tab. Steps run strictly sequentially,
// offset-ascending: each capture depends on the previous scroll having
// visually completed, and the capture primitive permits only one capture
// in flight per window.
func (c *Capturer) runSession(ctx context.Context, cfg CaptureConfig) ([]byte, error) {
	geom, err := probe(ctx)
	if err != nil {
		return nil, err
	}
	plan := planCapture(geom, cfg.StepFraction, cfg.MaxSteps)

	c.cfg.log.Debug().
		Int("total_px", geom.TotalExtent).
		Int("viewport_px", geom.ViewportExtent).
		Float64("dpr", geom.DevicePixelRatio).
		Str("scroll_target", geom.ScrollTarget).
		Int("steps", len(plan.Offsets)).
		Bool("truncated", plan.Truncated).
		Msg("capture session planned")

	// Restoration is best-effort and runs even when a later stage fails.
	// Its failure is logged, never escalated.
	defer func() {
		if err := scrollTo(ctx, geom.ScrollTarget, geom.OriginalScrollOffset); err != nil {
			c.cfg.log.Warn().Err(err).
				Int("offset_px", geom.OriginalScrollOffset).
				Msg("could not restore scroll position")
		}
	}()

	steps := make([]CaptureStep, 0, len(plan.Offsets))
	for i, offset := range plan.Offsets {
		applied := offset
		if m := plan.maxScroll(); applied > m {
			applied = m
		}
		if err := scrollTo(ctx, geom.ScrollTarget, applied); err != nil {
			return nil, fmt.Errorf("%w: step %d at offset %d: %w", ErrScrollFailed, i, applied, err)
		}
		if err := sleepCtx(ctx, cfg.SettleDelay); err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", ErrCaptureFailed, i, err)
		}

		shot, err := page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithFromSurface(true).
			WithCaptureBeyondViewport(false).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", ErrCaptureFailed, i, err)
		}

		steps = append(steps, CaptureStep{Image: shot, Offset: offset})
		c.cfg.log.Debug().
			Int("step", i).
			Int("offset_px", offset).
			Int("bytes", len(shot)).
			Msg("viewport captured")
	}

	return stitch(plan, steps)
}

// acquireSession claims the single session slot according to the
// configured [BusyPolicy].
func (c *Capturer) acquireSession() error {
	if c.cfg.busyPolicy == QueueWhileBusy {
		c.sessionMu.Lock()
		return nil
	}
	if !c.sessionMu.TryLock() {
		return ErrBusy
	}
	return nil
}

func (c *Capturer) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// sleepCtx waits for the settle delay unless ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// --- Package-level convenience functions ---

// CaptureURL captures a full page using a temporary [Capturer]. This is
// convenient for one-off captures. For repeated use, create a [Capturer]
// with [NewCapturer] to reuse the browser instance.
func CaptureURL(ctx context.Context, rawURL string, cfg *CaptureConfig, opts ...Option) (*Result, error) {
	c, err := NewCapturer(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.CaptureURL(ctx, rawURL, cfg)
}

// CaptureFile captures a local HTML file using a temporary [Capturer].
func CaptureFile(ctx context.Context, path string, cfg *CaptureConfig, opts ...Option) (*Result, error) {
	c, err := NewCapturer(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.CaptureFile(ctx, path, cfg)
}

// CaptureHTML captures an HTML string using a temporary [Capturer].
func CaptureHTML(ctx context.Context, html string, cfg *CaptureConfig, opts ...Option) (*Result, error) {
	c, err := NewCapturer(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.CaptureHTML(ctx, html, cfg)
}
