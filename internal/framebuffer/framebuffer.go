// Package framebuffer is the receiving buffer for a progressively
// streamed, multi-layer render. A FrameBuffer owns one LayerBuffer per
// AOV, tracks the most recently written bucket and the renderer's status,
// and exposes a ready gate for consumers.
//
// Nothing here locks. One producer writes while the buffer is not ready
// and opens the gate once a bucket (or the frame) is consistent; a
// consumer reads only while IsReady is true and never mutates. When the
// two run truly in parallel, wrap access in a lock of your own (see
// package framestore).
//
// Out-of-range layer indices and pixel coordinates panic with a
// *RangeError. BufferName is the one lookup that returns a zero value
// instead.
package framebuffer

import (
	"fmt"
	"image"
	"slices"
)

// NotFound is returned by the index lookups when nothing matches.
const NotFound = -1

// Compat is the result of CompareAll.
type Compat int

const (
	// CompatMatch means dimensions and ordered layer names are identical.
	CompatMatch Compat = iota
	// CompatDimensions means width or height differ.
	CompatDimensions
	// CompatLayers means dimensions agree but the ordered names differ.
	CompatLayers
)

// Compatible reports whether the buffer can be reused as is.
func (c Compat) Compatible() bool { return c == CompatMatch }

func (c Compat) String() string {
	switch c {
	case CompatMatch:
		return "match"
	case CompatDimensions:
		return "dimensions differ"
	case CompatLayers:
		return "layers differ"
	}
	return fmt.Sprintf("Compat(%d)", int(c))
}

// layer keeps a layer's identity and storage in one record so the two
// can never drift apart.
type layer struct {
	name string
	kind LayerKind
	spp  int
	buf  LayerBuffer
}

// FrameBuffer holds every layer of one frame plus render status.
type FrameBuffer struct {
	frame  float64
	width  int
	height int
	layers []*layer

	bucket   image.Rectangle
	progress int
	ram      int64
	peakRAM  int64
	time     int
	version  string
	ready    bool
}

// New returns an empty, not-ready FrameBuffer for frame with the given
// image dimensions.
func New(frame float64, width, height int) *FrameBuffer {
	return &FrameBuffer{
		frame:  frame,
		width:  width,
		height: height,
		bucket: image.Rect(0, 0, 1, 1),
	}
}

// AddBuffer appends a layer and returns its index. An empty name becomes
// "RGBA" for the first layer and "aov<index>" after that. The layer's
// kind, and with it whether an alpha plane is allocated, is inferred from
// the name via KindOf. spp is kept as metadata only.
func (fb *FrameBuffer) AddBuffer(name string, spp int) int {
	idx := len(fb.layers)
	if name == "" {
		if idx == 0 {
			name = NameRGBA
		} else {
			name = fmt.Sprintf("aov%d", idx)
		}
	}
	l := &layer{name: name, kind: KindOf(name), spp: spp}
	l.buf.Init(fb.width, fb.height, l.kind.HasAlpha())
	fb.layers = append(fb.layers, l)

	Logger().Debug("framebuffer: layer added",
		"frame", fb.frame, "index", idx, "name", name, "kind", l.kind, "spp", spp)
	return idx
}

// Buffer returns the layer storage at index.
func (fb *FrameBuffer) Buffer(index int) *LayerBuffer {
	return &fb.layer("Buffer", index).buf
}

// Kind returns the kind of the layer at index.
func (fb *FrameBuffer) Kind(index int) LayerKind {
	return fb.layer("Kind", index).kind
}

// SPP returns the samples-per-pixel hint the layer was added with.
func (fb *FrameBuffer) SPP(index int) int {
	return fb.layer("SPP", index).spp
}

func (fb *FrameBuffer) layer(op string, index int) *layer {
	if index < 0 || index >= len(fb.layers) {
		panic(&RangeError{Op: op, Index: index, Y: -1, Limit: [2]int{len(fb.layers), 0}})
	}
	return fb.layers[index]
}

// ChannelIndex returns the index of the first layer whose kind carries
// ch (see Channel.Kind), or NotFound.
func (fb *FrameBuffer) ChannelIndex(ch Channel) int {
	kind, _ := ch.Kind()
	if kind == KindCustom {
		return NotFound
	}
	for i, l := range fb.layers {
		if l.kind == kind {
			return i
		}
	}
	return NotFound
}

// BufferIndex returns the index of the first layer named exactly name
// (case-sensitive, no prefix matching), or NotFound.
func (fb *FrameBuffer) BufferIndex(name string) int {
	for i, l := range fb.layers {
		if l.name == name {
			return i
		}
	}
	return NotFound
}

// BufferNameExists reports whether BufferIndex(name) would succeed.
func (fb *FrameBuffer) BufferNameExists(name string) bool {
	return fb.BufferIndex(name) != NotFound
}

// BufferName returns the name of the layer at index, or "" when index is
// out of range.
func (fb *FrameBuffer) BufferName(index int) string {
	if index < 0 || index >= len(fb.layers) {
		return ""
	}
	return fb.layers[index].name
}

// PrimaryBufferName returns the name of the primary layer. The primary
// (beauty) layer is, by convention, the first one registered; "" when the
// buffer has no layers.
func (fb *FrameBuffer) PrimaryBufferName() string {
	return fb.BufferName(0)
}

// FirstBufferName is PrimaryBufferName under the renderer protocol's name.
func (fb *FrameBuffer) FirstBufferName() string {
	return fb.PrimaryBufferName()
}

// Layers returns a copy of the ordered layer names.
func (fb *FrameBuffer) Layers() []string {
	names := make([]string, len(fb.layers))
	for i, l := range fb.layers {
		names[i] = l.name
	}
	return names
}

// CompareAll tells whether this buffer has exactly the given dimensions
// and ordered layer names. Dimensions are checked first.
func (fb *FrameBuffer) CompareAll(width, height int, names []string) Compat {
	if width != fb.width || height != fb.height {
		return CompatDimensions
	}
	if !slices.Equal(fb.Layers(), names) {
		return CompatLayers
	}
	return CompatMatch
}

// ClearAll drops every layer. Frame number, dimensions and status are
// kept.
func (fb *FrameBuffer) ClearAll() {
	n := len(fb.layers)
	clear(fb.layers)
	fb.layers = fb.layers[:0]
	Logger().Debug("framebuffer: cleared", "frame", fb.frame, "layers", n)
}

// Resize truncates or grows the layer list to count entries. Layers kept
// stay at their indices. New slots are unnamed custom layers with no
// storage (IsEmpty is true), ready for Init.
func (fb *FrameBuffer) Resize(count int) {
	if count < 0 {
		count = 0
	}
	n := len(fb.layers)
	switch {
	case count < n:
		clear(fb.layers[count:])
		fb.layers = fb.layers[:count]
	case count > n:
		for i := n; i < count; i++ {
			fb.layers = append(fb.layers, &layer{kind: KindCustom})
		}
	}
	Logger().Debug("framebuffer: resized", "frame", fb.frame, "from", n, "to", count)
}

func (fb *FrameBuffer) SetWidth(w int)  { fb.width = w }
func (fb *FrameBuffer) SetHeight(h int) { fb.height = h }
func (fb *FrameBuffer) Width() int      { return fb.width }
func (fb *FrameBuffer) Height() int     { return fb.height }

// Bounds returns the image rectangle shared by all layers.
func (fb *FrameBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.width, fb.height)
}

// Size returns the number of layers.
func (fb *FrameBuffer) Size() int { return len(fb.layers) }

// IsEmpty reports whether there are no layers.
func (fb *FrameBuffer) IsEmpty() bool { return len(fb.layers) == 0 }

// SetBucketBBox records the region written last, as x, y, right and top.
// Callers should pass r >= x and t >= y; inverted corners are swapped the
// way image.Rect does.
func (fb *FrameBuffer) SetBucketBBox(x, y, r, t int) {
	fb.bucket = image.Rect(x, y, r, t)
}

// BucketBBox returns the region written last.
func (fb *FrameBuffer) BucketBBox() image.Rectangle { return fb.bucket }

func (fb *FrameBuffer) SetProgress(p int) { fb.progress = p }
func (fb *FrameBuffer) Progress() int     { return fb.progress }

// SetRAM records current memory use and raises the peak if needed.
func (fb *FrameBuffer) SetRAM(ram int64) {
	fb.ram = ram
	fb.peakRAM = max(fb.peakRAM, ram)
}

func (fb *FrameBuffer) RAM() int64 { return fb.ram }

// PeakRAM is the largest value ever passed to SetRAM.
func (fb *FrameBuffer) PeakRAM() int64 { return fb.peakRAM }

// SetTime records elapsed render time in seconds.
func (fb *FrameBuffer) SetTime(seconds int) { fb.time = seconds }
func (fb *FrameBuffer) Time() int           { return fb.time }

func (fb *FrameBuffer) SetRendererVersion(v string) { fb.version = v }
func (fb *FrameBuffer) RendererVersion() string     { return fb.version }

// Frame returns the frame number this buffer holds.
func (fb *FrameBuffer) Frame() float64 { return fb.frame }

// SetReady opens (true) or closes (false) the consumer gate. Producers
// close it before writing and open it once the write is complete.
func (fb *FrameBuffer) SetReady(ready bool) { fb.ready = ready }
func (fb *FrameBuffer) IsReady() bool       { return fb.ready }
