package fullpage

import "math"

// stitchPlan fixes the scroll schedule and the destination math for one
// session. It is derived from [PageGeometry] once, before the first
// capture, and never revised afterwards.
type stitchPlan struct {
	Geometry PageGeometry

	// StepSize is the CSS-pixel distance scrolled between captures.
	StepSize int

	// Offsets holds the requested scroll offset of every step, ascending.
	// The offset actually applied near the bottom of the page may be
	// smaller (the browser clamps); destinations are still computed from
	// the requested value and clamped to the canvas instead.
	Offsets []int

	// CanvasWidth and CanvasHeight are the output dimensions in device
	// pixels.
	CanvasWidth  int
	CanvasHeight int

	// OverlapDev is the number of device-pixel rows at the top of every
	// non-first capture that duplicate the previous step's bottom band
	// and are trimmed away during stitching.
	OverlapDev int

	// Truncated records that the step ceiling was hit and the bottom of
	// the page is left uncovered.
	Truncated bool
}

// toDevice converts a CSS-pixel coordinate to device pixels, rounding
// down. It is always applied to absolute coordinates, never to deltas, so
// rounding error cannot accumulate across steps.
func toDevice(cssPx int, dpr float64) int {
	return int(math.Floor(float64(cssPx) * dpr))
}

// planCapture computes the scroll schedule for geom. fraction is the
// share of the viewport height scrolled per step, in (0, 1]; maxSteps
// bounds the loop so a page that grows while being captured cannot stall
// the session forever.
func planCapture(geom PageGeometry, fraction float64, maxSteps int) stitchPlan {
	if fraction <= 0 || fraction > 1 {
		fraction = 1
	}
	step := int(float64(geom.ViewportExtent) * fraction)
	if step < 1 {
		step = 1
	}

	n := 1
	if geom.TotalExtent > geom.ViewportExtent {
		n = (geom.TotalExtent + step - 1) / step
	}
	truncated := false
	if maxSteps > 0 && n > maxSteps {
		n = maxSteps
		truncated = true
	}

	offsets := make([]int, n)
	for i := range offsets {
		offsets[i] = i * step
	}

	overlap := 0
	if step < geom.ViewportExtent {
		overlap = toDevice(geom.ViewportExtent-step, geom.DevicePixelRatio)
	}

	return stitchPlan{
		Geometry:     geom,
		StepSize:     step,
		Offsets:      offsets,
		CanvasWidth:  toDevice(geom.ViewportWidth, geom.DevicePixelRatio),
		CanvasHeight: toDevice(geom.TotalExtent, geom.DevicePixelRatio),
		OverlapDev:   overlap,
		Truncated:    truncated,
	}
}

// destTop returns the canvas row where the drawn band of a step with the
// given requested offset starts. The first step is drawn whole; every
// later step has its duplicated top band skipped, so its destination
// moves down by the same amount.
func (p stitchPlan) destTop(offset int, first bool) int {
	d := toDevice(offset, p.Geometry.DevicePixelRatio)
	if !first {
		d += p.OverlapDev
	}
	return d
}

// maxScroll is the largest offset the page can actually reach. The
// orchestrator clamps the offsets it sends to the scroll driver to this
// value while recording the planned offset.
func (p stitchPlan) maxScroll() int {
	m := p.Geometry.TotalExtent - p.Geometry.ViewportExtent
	if m < 0 {
		return 0
	}
	return m
}
