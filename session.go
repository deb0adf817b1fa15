package fullpage

import "time"

// CaptureConfig controls how a single session walks the page.
//
// A nil CaptureConfig or zero-value fields use sensible defaults: 0.8
// step fraction, 300 ms settle delay, 64 step ceiling, and whatever
// viewport the tab already has.
type CaptureConfig struct {
	// StepFraction is the share of the viewport height scrolled between
	// captures, in (0, 1]. Values below 1 create deliberate overlap
	// between consecutive captures; the duplicated band is trimmed while
	// stitching, which hides viewport-edge artifacts such as scrollbars
	// and sticky headers at the seams. At exactly 1 there is no overlap
	// to trim and seam artifacts are accepted. Defaults to 0.8.
	StepFraction float64

	// SettleDelay is the fixed wait after every scroll before the
	// viewport is captured, giving the page time to re-layout and decode
	// lazily loaded images. There is no reliable cross-site "rendering
	// settled" event, so the wait is time-based. Defaults to 300 ms.
	SettleDelay time.Duration

	// MaxSteps caps the number of scroll steps in one session so a page
	// that grows while being captured cannot loop forever. When the cap
	// is hit, the session stitches what it has and leaves the rest of
	// the canvas blank. Defaults to 64.
	MaxSteps int

	// ViewportWidth and ViewportHeight, when both positive, are applied
	// to the tab through device emulation before navigation.
	ViewportWidth  int
	ViewportHeight int
}

// DefaultCaptureConfig returns a CaptureConfig with sensible defaults.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		StepFraction: 0.8,
		SettleDelay:  300 * time.Millisecond,
		MaxSteps:     64,
	}
}

// resolved returns a CaptureConfig with all zero values replaced by
// defaults.
func (c *CaptureConfig) resolved() CaptureConfig {
	d := DefaultCaptureConfig()
	if c == nil {
		return d
	}
	r := *c
	if r.StepFraction <= 0 || r.StepFraction > 1 {
		r.StepFraction = d.StepFraction
	}
	if r.SettleDelay <= 0 {
		r.SettleDelay = d.SettleDelay
	}
	if r.MaxSteps <= 0 {
		r.MaxSteps = d.MaxSteps
	}
	return r
}
