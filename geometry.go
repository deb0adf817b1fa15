package fullpage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"
)

// PageGeometry describes the scrollable extent of a page as measured once
// at the start of a capture session. It is immutable afterwards: if the
// page grows mid-session (infinite scroll, lazy images) the session keeps
// the snapshot and accepts under- or over-capture.
type PageGeometry struct {
	// TotalExtent is the full scrollable content height in CSS pixels.
	TotalExtent int `json:"totalExtent"`

	// ViewportExtent and ViewportWidth are the visible window dimensions
	// in CSS pixels.
	ViewportExtent int `json:"viewportExtent"`
	ViewportWidth  int `json:"viewportWidth"`

	// DevicePixelRatio is the ratio of physical to CSS pixels. It may be
	// non-integer (e.g. 1.5, 2.5) and is kept as a real number.
	DevicePixelRatio float64 `json:"devicePixelRatio"`

	// OriginalScrollOffset is the scroll position found at probe time,
	// restored best-effort when the session ends.
	OriginalScrollOffset int `json:"originalScrollOffset"`

	// ScrollTarget identifies the element whose scroll position is
	// driven: a CSS selector for an inner scroll container, or the empty
	// string for the document root. The page owns the element; this is
	// only a handle to resolve it again on each scroll call.
	ScrollTarget string `json:"scrollTarget"`
}

// scrollCandidates are the inner scroll containers probed, in priority
// order, when the document root itself does not scroll. Layouts that pin
// <body> at viewport height and scroll a wrapper instead are common in
// single-page apps.
var scrollCandidates = []string{
	"main",
	"#content",
	"#main",
	".main-content",
	"#app",
	"#root",
}

// probeTemplate measures the page without mutating scroll state. The
// document root wins when its scrollable extent strictly exceeds the
// viewport; otherwise the first qualifying candidate selector is used,
// falling back to the root. The root extent takes the max of several
// layout metrics because quirks-mode documents disagree about which one
// holds the real content height.
const probeTemplate = `(() => {
	const doc = document;
	const root = doc.scrollingElement || doc.documentElement;
	const rootExtent = Math.max(
		doc.body ? doc.body.scrollHeight : 0,
		doc.body ? doc.body.offsetHeight : 0,
		root.clientHeight,
		root.scrollHeight,
		root.offsetHeight,
	);
	let target = "";
	let total = rootExtent;
	let offset = root.scrollTop;
	if (rootExtent <= window.innerHeight) {
		for (const sel of %s) {
			const el = doc.querySelector(sel);
			if (el && el.scrollHeight > el.clientHeight) {
				target = sel;
				total = el.scrollHeight;
				offset = el.scrollTop;
				break;
			}
		}
	}
	return {
		totalExtent: Math.round(total),
		viewportExtent: window.innerHeight,
		viewportWidth: window.innerWidth,
		devicePixelRatio: window.devicePixelRatio,
		originalScrollOffset: Math.round(offset),
		scrollTarget: target,
	};
})()`

// scrollTemplate moves the scroll target to a requested offset. It does
// not clamp: the orchestrator clamps what it sends, and the browser
// clamps whatever remains out of range.
const scrollTemplate = `(() => {
	const sel = %q;
	if (sel) {
		const el = document.querySelector(sel);
		if (!el) throw new Error("scroll target vanished: " + sel);
		el.scrollTop = %d;
	} else {
		window.scrollTo(0, %d);
	}
	return true;
})()`

func probeScript() string {
	sel, _ := json.Marshal(scrollCandidates)
	return fmt.Sprintf(probeTemplate, sel)
}

func scrollScript(target string, offset int) string {
	return fmt.Sprintf(scrollTemplate, target, offset, offset)
}

// probe reads the page geometry from the tab bound to ctx. A detached or
// unreadable page yields [ErrProbeFailed]; nothing is captured after that.
func probe(ctx context.Context) (PageGeometry, error) {
	var geom PageGeometry
	if err := chromedp.Evaluate(probeScript(), &geom).Do(ctx); err != nil {
		return PageGeometry{}, fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}
	if geom.ViewportExtent <= 0 || geom.ViewportWidth <= 0 || geom.DevicePixelRatio <= 0 {
		return PageGeometry{}, fmt.Errorf("%w: implausible viewport %dx%d at dpr %g",
			ErrProbeFailed, geom.ViewportWidth, geom.ViewportExtent, geom.DevicePixelRatio)
	}
	// A page shorter than the viewport still fills one viewport of canvas.
	if geom.TotalExtent < geom.ViewportExtent {
		geom.TotalExtent = geom.ViewportExtent
	}
	return geom, nil
}

// scrollTo drives the scroll target identified at probe time to offset.
func scrollTo(ctx context.Context, target string, offset int) error {
	var ok bool
	return chromedp.Evaluate(scrollScript(target, offset), &ok).Do(ctx)
}
