package bucket

import (
	"fmt"

	"aton-buffer/internal/framebuffer"
)

// Apply writes t into fb. The layer is looked up by exact name and
// appended when missing. The gate is closed for the duration of the
// write and opened again once the bucket is recorded; on error nothing
// is written and the gate is left as it was.
//
// Single-channel tiles fill r, g and b with the same value. Four-channel
// tiles write alpha only when the layer has an alpha plane; tiles with
// fewer channels mark their region opaque on such a layer.
func Apply(fb *framebuffer.FrameBuffer, t *Tile) error {
	if err := t.Validate(); err != nil {
		framebuffer.Logger().Warn("bucket: rejected tile", "layer", t.Layer, "rect", t.Rect(), "err", err)
		return fmt.Errorf("bucket: apply %q: %w", t.Layer, err)
	}
	if err := checkShape(fb, t); err != nil {
		framebuffer.Logger().Warn("bucket: rejected tile", "layer", t.Layer, "rect", t.Rect(), "err", err)
		return err
	}

	idx := fb.BufferIndex(t.Layer)
	if idx == framebuffer.NotFound {
		idx = fb.AddBuffer(t.Layer, t.SPP)
	}
	lb := fb.Buffer(idx)
	if lb.Width() != fb.Width() || lb.Height() != fb.Height() {
		return fmt.Errorf("bucket: apply %q: layer is %dx%d, frame is %dx%d: %w",
			t.Layer, lb.Width(), lb.Height(), fb.Width(), fb.Height(), ErrShapeMismatch)
	}

	fb.SetReady(false)
	writePixels(lb, t)
	fb.SetBucketBBox(t.X, t.Y, t.X+t.W, t.Y+t.H)
	fb.SetReady(true)
	return nil
}

func checkShape(fb *framebuffer.FrameBuffer, t *Tile) error {
	if t.Width != 0 || t.Height != 0 {
		if t.Width != fb.Width() || t.Height != fb.Height() {
			return fmt.Errorf("bucket: apply %q: tile image %dx%d, frame %dx%d: %w",
				t.Layer, t.Width, t.Height, fb.Width(), fb.Height(), ErrShapeMismatch)
		}
	}
	if !t.Rect().In(fb.Bounds()) {
		return fmt.Errorf("bucket: apply %q: region %v outside %v: %w",
			t.Layer, t.Rect(), fb.Bounds(), ErrShapeMismatch)
	}
	return nil
}

func writePixels(lb *framebuffer.LayerBuffer, t *Tile) {
	hasAlpha := lb.HasAlpha()
	i := 0
	for y := t.Y; y < t.Y+t.H; y++ {
		row := lb.Row(y)
		for x := t.X; x < t.X+t.W; x++ {
			p := t.Pixels[i : i+t.Channels]
			if t.Channels == 1 {
				row[x] = framebuffer.ColorPixel{p[0], p[0], p[0]}
			} else {
				row[x] = framebuffer.ColorPixel{p[0], p[1], p[2]}
			}
			if hasAlpha {
				a := framebuffer.AlphaPixel(1)
				if t.Channels == 4 {
					a = framebuffer.AlphaPixel(p[3])
				}
				*lb.Alpha(x, y) = a
			}
			i += t.Channels
		}
	}
}

// ApplyStatus copies a status report into fb. A Version <= 0 leaves the
// stored renderer version alone.
func ApplyStatus(fb *framebuffer.FrameBuffer, s Status) {
	fb.SetProgress(s.Progress)
	fb.SetRAM(s.RAM)
	fb.SetTime(s.Time)
	if s.Version > 0 {
		fb.SetRendererVersion(framebuffer.FormatRendererVersion(s.Version))
	}
}
