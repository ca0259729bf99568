// Package bucket applies decoded render tiles to a FrameBuffer, doing on
// the producer side what the renderer's display driver expects: resolve
// or create the layer, write the pixels, record the bucket and open the
// ready gate.
package bucket

import (
	"errors"
	"image"
)

var (
	// ErrBadTile means the tile is internally inconsistent.
	ErrBadTile = errors.New("bucket: malformed tile")
	// ErrShapeMismatch means the tile does not fit the target buffer.
	ErrShapeMismatch = errors.New("bucket: tile does not match frame buffer shape")
)

// Tile is one decoded bucket for one layer. Pixels holds W*H*Channels
// floats, row-major, channels interleaved.
type Tile struct {
	Frame  float64
	// Full image size the tile belongs to. Both zero means unknown, and
	// Apply then only checks that the tile lies inside the buffer.
	Width  int
	Height int
	Layer  string
	SPP    int

	X, Y, W, H int
	Channels   int // 1, 3 or 4
	Pixels     []float32
}

// Rect returns the tile's region in image coordinates.
func (t *Tile) Rect() image.Rectangle {
	return image.Rect(t.X, t.Y, t.X+t.W, t.Y+t.H)
}

// Validate checks the tile on its own, without a target buffer.
func (t *Tile) Validate() error {
	if t.Layer == "" || t.W <= 0 || t.H <= 0 {
		return ErrBadTile
	}
	if !validChannels(t.Channels) {
		return ErrBadTile
	}
	if len(t.Pixels) != t.W*t.H*t.Channels {
		return ErrBadTile
	}
	return nil
}

// Status is the renderer's progress report that travels with tiles.
type Status struct {
	Progress int   // percent, 0..100
	RAM      int64 // bytes currently in use
	Time     int   // elapsed seconds
	Version  int   // packed renderer version, 0 if unknown
}

// LayerNames returns the distinct layer names of tiles in first-seen
// order, which is the order Apply creates them in.
func LayerNames(tiles []Tile) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range tiles {
		if seen[t.Layer] {
			continue
		}
		seen[t.Layer] = true
		names = append(names, t.Layer)
	}
	return names
}
