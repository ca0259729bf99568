// Package export turns FrameBuffer layers into 8-bit images for display
// and encodes them. Values are clamped linearly; no color management or
// tone mapping is applied.
package export

import (
	"image"
	"math"

	"aton-buffer/internal/framebuffer"
)

// LayerImage converts a whole layer to NRGBA. Layers without alpha are
// opaque.
func LayerImage(lb *framebuffer.LayerBuffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, lb.Width(), lb.Height()))
	Region(img, lb, img.Rect)
	return img
}

// Region redraws only r of dst from lb, e.g. the frame buffer's last
// bucket. r is clipped to both dst and the layer.
func Region(dst *image.NRGBA, lb *framebuffer.LayerBuffer, r image.Rectangle) {
	r = r.Intersect(dst.Rect).Intersect(image.Rect(0, 0, lb.Width(), lb.Height()))
	alpha := lb.HasAlpha()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := lb.Row(y)
		for x := r.Min.X; x < r.Max.X; x++ {
			c := row[x]
			i := dst.PixOffset(x, y)
			dst.Pix[i] = to8(c.R())
			dst.Pix[i+1] = to8(c.G())
			dst.Pix[i+2] = to8(c.B())
			if alpha {
				dst.Pix[i+3] = to8(float32(*lb.Alpha(x, y)))
			} else {
				dst.Pix[i+3] = 255
			}
		}
	}
}

// DepthImage maps the red component of a depth layer to gray, nearest
// white. The range is taken from the layer's finite values; a constant
// layer comes out black.
func DepthImage(lb *framebuffer.LayerBuffer) *image.NRGBA {
	w, h := lb.Width(), lb.Height()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if lb.IsEmpty() {
		return img
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < h; y++ {
		for _, c := range lb.Row(y) {
			v := float64(c[0])
			if math.IsInf(v, 0) || math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	span := hi - lo

	for y := 0; y < h; y++ {
		for x, c := range lb.Row(y) {
			var g uint8
			v := float64(c[0])
			if span > 0 && !math.IsNaN(v) {
				g = clamp8(255 * (1 - (v-lo)/span))
			}
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = g, g, g, 255
		}
	}
	return img
}

// Snapshot converts the layer at index, using DepthImage for depth
// layers and LayerImage for everything else.
func Snapshot(fb *framebuffer.FrameBuffer, index int) *image.NRGBA {
	lb := fb.Buffer(index)
	if fb.Kind(index) == framebuffer.KindDepth {
		return DepthImage(lb)
	}
	return LayerImage(lb)
}

func to8(v float32) uint8 {
	return clamp8(float64(v) * 255)
}

func clamp8(v float64) uint8 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
