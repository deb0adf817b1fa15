package fullpage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"
)

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func decodeOut(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding stitched output: %v", err)
	}
	return img
}

func sameColor(a color.Color, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

var stepColors = []color.RGBA{
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 255, A: 255},
	{R: 255, B: 255, A: 255},
}

// coloredSteps builds one solid-colored capture per plan offset, sized
// like the screenshots the capture primitive would return.
func coloredSteps(t *testing.T, plan stitchPlan) []CaptureStep {
	t.Helper()
	imgW := toDevice(plan.Geometry.ViewportWidth, plan.Geometry.DevicePixelRatio)
	imgH := toDevice(plan.Geometry.ViewportExtent, plan.Geometry.DevicePixelRatio)
	steps := make([]CaptureStep, len(plan.Offsets))
	for i, off := range plan.Offsets {
		steps[i] = CaptureStep{Image: solidPNG(t, imgW, imgH, stepColors[i%len(stepColors)]), Offset: off}
	}
	return steps
}

func TestStitch_OverlapTrimPartition(t *testing.T) {
	plan := planCapture(testGeometry(3000, 1000, 800, 1), 0.7, 64)
	steps := coloredSteps(t, plan)

	out, err := stitch(plan, steps)
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	img := decodeOut(t, out)

	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 3000 {
		t.Fatalf("output = %dx%d, want 800x3000", img.Bounds().Dx(), img.Bounds().Dy())
	}

	// Each output row is written by exactly one source image: full first
	// capture, then 700-row bands, with the final band clamped at row
	// 3000 and the step requested past the canvas skipped entirely.
	wantRows := []struct {
		row  int
		step int
	}{
		{0, 0}, {999, 0},
		{1000, 1}, {1699, 1},
		{1700, 2}, {2399, 2},
		{2400, 3}, {2999, 3},
	}
	for _, wr := range wantRows {
		got := img.At(10, wr.row)
		if !sameColor(got, stepColors[wr.step]) {
			t.Errorf("row %d = %v, want color of step %d", wr.row, got, wr.step)
		}
	}
	// Step 4 (offset 2800) lands past the canvas; its color must not
	// appear anywhere.
	for y := 0; y < 3000; y += 100 {
		if sameColor(img.At(10, y), stepColors[4]) {
			t.Errorf("row %d written by skipped step 4", y)
		}
	}
}

func TestStitch_DPR25(t *testing.T) {
	plan := planCapture(testGeometry(3000, 1000, 800, 2.5), 0.7, 64)
	steps := coloredSteps(t, plan)

	out, err := stitch(plan, steps)
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	img := decodeOut(t, out)

	// All destination coordinates scale by exactly 2.5 under floor
	// rounding: 2000x7500 canvas, bands starting at 0, 2500, 4250, 6000.
	if img.Bounds().Dx() != 2000 || img.Bounds().Dy() != 7500 {
		t.Fatalf("output = %dx%d, want 2000x7500", img.Bounds().Dx(), img.Bounds().Dy())
	}
	wantRows := []struct {
		row  int
		step int
	}{
		{0, 0}, {2499, 0},
		{2500, 1}, {4249, 1},
		{4250, 2}, {5999, 2},
		{6000, 3}, {7499, 3},
	}
	for _, wr := range wantRows {
		got := img.At(10, wr.row)
		if !sameColor(got, stepColors[wr.step]) {
			t.Errorf("row %d = %v, want color of step %d", wr.row, got, wr.step)
		}
	}
}

func TestStitch_SingleStepDirectDraw(t *testing.T) {
	// A page that fits in one viewport: one step, drawn whole, no trim.
	plan := planCapture(testGeometry(1000, 1000, 800, 1), 0.8, 64)
	if len(plan.Offsets) != 1 {
		t.Fatalf("offsets = %v, want exactly one step", plan.Offsets)
	}
	steps := coloredSteps(t, plan)

	out, err := stitch(plan, steps)
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	img := decodeOut(t, out)

	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 1000 {
		t.Fatalf("output = %dx%d, want 800x1000", img.Bounds().Dx(), img.Bounds().Dy())
	}
	for _, y := range []int{0, 500, 999} {
		if !sameColor(img.At(0, y), stepColors[0]) {
			t.Errorf("row %d not covered by the single capture", y)
		}
	}
}

func TestStitch_Idempotent(t *testing.T) {
	plan := planCapture(testGeometry(3000, 1000, 640, 1), 0.7, 64)
	steps := coloredSteps(t, plan)

	first, err := stitch(plan, steps)
	if err != nil {
		t.Fatalf("first stitch: %v", err)
	}
	second, err := stitch(plan, steps)
	if err != nil {
		t.Fatalf("second stitch: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("stitching the same step sequence twice produced different bytes")
	}
}

func TestStitch_TruncatedBottomStaysWhite(t *testing.T) {
	plan := planCapture(testGeometry(3000, 1000, 640, 1), 1.0, 2)
	if !plan.Truncated {
		t.Fatal("expected plan to be truncated by the step ceiling")
	}
	steps := coloredSteps(t, plan)

	out, err := stitch(plan, steps)
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	img := decodeOut(t, out)

	if !sameColor(img.At(10, 0), stepColors[0]) {
		t.Error("row 0 not written by step 0")
	}
	if !sameColor(img.At(10, 1500), stepColors[1]) {
		t.Error("row 1500 not written by step 1")
	}
	// Rows past the captured steps stay background white, not black.
	if !sameColor(img.At(10, 2500), color.White) {
		t.Errorf("uncovered row 2500 = %v, want white", img.At(10, 2500))
	}
}

func TestStitch_NoOverlapConfigDrawsFullImages(t *testing.T) {
	plan := planCapture(testGeometry(3000, 1000, 640, 1), 1.0, 64)
	if plan.OverlapDev != 0 {
		t.Fatalf("OverlapDev = %d, want 0", plan.OverlapDev)
	}
	steps := coloredSteps(t, plan)

	out, err := stitch(plan, steps)
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	img := decodeOut(t, out)
	for _, wr := range []struct{ row, step int }{{0, 0}, {1000, 1}, {2000, 2}, {2999, 2}} {
		if !sameColor(img.At(10, wr.row), stepColors[wr.step]) {
			t.Errorf("row %d not written by step %d", wr.row, wr.step)
		}
	}
}

func TestStitch_NoSteps(t *testing.T) {
	plan := planCapture(testGeometry(3000, 1000, 640, 1), 0.7, 64)
	_, err := stitch(plan, nil)
	if !errors.Is(err, ErrStitchFailed) {
		t.Fatalf("err = %v, want ErrStitchFailed", err)
	}
}

func TestStitch_CorruptStep(t *testing.T) {
	plan := planCapture(testGeometry(3000, 1000, 640, 1), 0.7, 64)
	steps := coloredSteps(t, plan)
	steps[2].Image = []byte("not a png")

	_, err := stitch(plan, steps)
	if !errors.Is(err, ErrStitchFailed) {
		t.Fatalf("err = %v, want ErrStitchFailed", err)
	}
}
