package bucket

import (
	"image"
	"image/color"
)

// Split cuts img into size x size buckets for layer, row-major from the
// top-left. Samples are converted to linear floats in [0,1]; channels
// selects 1 (red only), 3 (rgb) or 4 (rgba) floats per pixel. Any other
// channel count yields no tiles.
func Split(img image.Image, layer string, size, channels int) []Tile {
	if !validChannels(channels) {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]float32, w*h*channels)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			rgba := [4]float32{
				float32(c.R) / 255,
				float32(c.G) / 255,
				float32(c.B) / 255,
				float32(c.A) / 255,
			}
			copy(pix[i:i+channels], rgba[:channels])
			i += channels
		}
	}
	return SplitFloat(pix, w, h, channels, layer, size)
}

// SplitFloat cuts a full w x h float image into buckets. Edge buckets are
// clipped to the image. It returns nil when channels is not 1, 3 or 4 or
// pix is shorter than w*h*channels.
func SplitFloat(pix []float32, w, h, channels int, layer string, size int) []Tile {
	if !validChannels(channels) || len(pix) < w*h*channels {
		return nil
	}
	if size <= 0 {
		size = max(w, h)
	}
	var tiles []Tile
	for by := 0; by < h; by += size {
		for bx := 0; bx < w; bx += size {
			tw := min(size, w-bx)
			th := min(size, h-by)
			t := Tile{
				Width:    w,
				Height:   h,
				Layer:    layer,
				X:        bx,
				Y:        by,
				W:        tw,
				H:        th,
				Channels: channels,
				Pixels:   make([]float32, 0, tw*th*channels),
			}
			for y := by; y < by+th; y++ {
				off := (y*w + bx) * channels
				t.Pixels = append(t.Pixels, pix[off:off+tw*channels]...)
			}
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// Interleave orders tiles of several layers bucket by bucket, the way a
// renderer emits all AOVs of one bucket before moving on. All slices must
// come from the same bucket grid.
func Interleave(layers ...[]Tile) []Tile {
	var n int
	for _, l := range layers {
		n = max(n, len(l))
	}
	out := make([]Tile, 0, n*len(layers))
	for i := 0; i < n; i++ {
		for _, l := range layers {
			if i < len(l) {
				out = append(out, l[i])
			}
		}
	}
	return out
}

func validChannels(n int) bool {
	return n == 1 || n == 3 || n == 4
}
