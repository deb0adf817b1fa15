// Package fullpage captures a whole scrollable web page as a single
// seamless PNG by scrolling a headless-Chrome viewport step by step,
// screenshotting each step, and stitching the captures into one tall
// bitmap.
//
// # Capturing
//
// For one-off captures use the package-level helpers:
//
//	res, err := fullpage.CaptureURL(ctx, "https://example.com", nil)
//
// For repeated captures create a [Capturer], which reuses the browser
// process:
//
//	c, err := fullpage.NewCapturer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res, err := c.CaptureURL(ctx, "https://example.com", nil)
//	res, err  = c.CaptureFile(ctx, "report.html", nil)
//	res, err  = c.CaptureHTML(ctx, "<h1>Hello</h1>", nil)
//
// Use [CaptureConfig] to control the scroll schedule and viewport:
//
//	cfg := &fullpage.CaptureConfig{
//	    StepFraction:   0.7,
//	    SettleDelay:    500 * time.Millisecond,
//	    ViewportWidth:  1280,
//	    ViewportHeight: 800,
//	}
//	res, err := c.CaptureURL(ctx, url, cfg)
//
// A [Result] gives flexible access to the stitched PNG:
//
//	res.Bytes()                       // []byte
//	res.Base64()                      // base64 string (RFC 4648)
//	res.Reader()                      // *bytes.Reader
//	res.WriteTo(w)                    // io.WriterTo
//	res.Save("shots")                 // shots/fullpage_<timestamp>.png
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload]:
//
//	c, err := fullpage.NewCapturer(fullpage.WithAutoDownload())
//
// # How it works
//
// A session probes the page once for its scroll geometry (total extent,
// viewport size, device pixel ratio, and which element actually scrolls),
// then walks the page in steps of StepFraction × viewport height. Each
// step scrolls, waits a fixed settle delay, and captures the visible
// viewport. Scrolling less than a full viewport per step duplicates a
// band of content between consecutive captures; the stitcher trims that
// band from every non-first capture, so each output row is written by
// exactly one source image and viewport-edge artifacts disappear at the
// seams. The original scroll position is restored best-effort when the
// session ends.
//
// Pages whose height changes during a session (infinite scroll, lazy
// loading) are captured against the geometry measured at probe time.
// Content inside independently scrolling iframes, and fixed-position
// overlays repeated per viewport, are not reconciled.
package fullpage
