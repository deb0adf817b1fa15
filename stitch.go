package fullpage

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// CaptureStep is one viewport capture taken during a session, tagged with
// the scroll offset that was requested for it — not the offset the page
// actually reached. Near the bottom the browser clamps the scroll, and
// the stitcher compensates by clamping destination bands to the canvas
// instead of re-measuring.
type CaptureStep struct {
	// Image holds the PNG bytes returned by the capture primitive.
	Image []byte

	// Offset is the requested scroll offset for this step, in CSS pixels.
	// Steps are always handed to the stitcher in capture order with
	// non-decreasing offsets.
	Offset int
}

// stitch composes the ordered capture steps into one tall PNG according
// to plan.
//
// The canvas is white-filled so rows no step covers stay visibly blank
// rather than transparent. The first step is drawn whole; every later
// step has plan.OverlapDev rows trimmed from its top, because they
// duplicate the bottom band already drawn by the previous step. Each
// band's height is derived from the next step's destination, so every
// output row is written by exactly one source image even when the scroll
// granularity does not divide the page height or the device pixel ratio
// is fractional. Bands are clamped to the canvas; draws that would land
// entirely outside it, or whose remaining source height is non-positive,
// are skipped.
func stitch(plan stitchPlan, steps []CaptureStep) ([]byte, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no captured steps", ErrStitchFailed)
	}
	if plan.CanvasWidth <= 0 || plan.CanvasHeight <= 0 {
		return nil, fmt.Errorf("%w: empty canvas %dx%d", ErrStitchFailed, plan.CanvasWidth, plan.CanvasHeight)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, plan.CanvasWidth, plan.CanvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for i, step := range steps {
		img, err := png.Decode(bytes.NewReader(step.Image))
		if err != nil {
			return nil, fmt.Errorf("%w: decoding step %d: %w", ErrStitchFailed, i, err)
		}

		top := plan.destTop(step.Offset, i == 0)
		bottom := plan.CanvasHeight
		if i+1 < len(steps) {
			if next := plan.destTop(steps[i+1].Offset, false); next < bottom {
				bottom = next
			}
		}
		if top >= plan.CanvasHeight || bottom <= top {
			continue
		}

		srcTop := 0
		if i > 0 {
			srcTop = plan.OverlapDev
		}
		avail := img.Bounds().Dy() - srcTop
		if avail <= 0 {
			continue
		}
		if bottom-top > avail {
			bottom = top + avail
		}

		width := img.Bounds().Dx()
		if width > plan.CanvasWidth {
			width = plan.CanvasWidth
		}

		dst := image.Rect(0, top, width, bottom)
		// Decoded images need not have a zero origin; srcTop is relative
		// to Bounds().Min, not to (0, 0).
		src := image.Pt(img.Bounds().Min.X, img.Bounds().Min.Y+srcTop)
		draw.Draw(canvas, dst, img, src, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("%w: encoding canvas: %w", ErrStitchFailed, err)
	}
	return buf.Bytes(), nil
}
