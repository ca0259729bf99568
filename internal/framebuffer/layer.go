package framebuffer

// LayerBuffer holds one layer's full-resolution pixels as flat row-major
// slices. Alpha storage is either empty or the same length as color.
//
// Color and Alpha panic with a *RangeError when (x, y) is outside
// Width() x Height(); use InBounds to check first.
type LayerBuffer struct {
	color  []ColorPixel
	alpha  []AlphaPixel
	width  int
	height int
}

// Init allocates width*height zeroed color pixels, plus the same number
// of alpha pixels when hasAlpha is set. Any previous storage is dropped.
// Readers must be excluded while Init runs.
func (lb *LayerBuffer) Init(width, height int, hasAlpha bool) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	n := width * height
	lb.width = width
	lb.height = height
	lb.color = make([]ColorPixel, n)
	lb.alpha = nil
	if hasAlpha {
		lb.alpha = make([]AlphaPixel, n)
	}
}

// Color returns a pointer to the color sample at (x, y).
func (lb *LayerBuffer) Color(x, y int) *ColorPixel {
	lb.check("Color", x, y, len(lb.color))
	return &lb.color[y*lb.width+x]
}

// Alpha returns a pointer to the alpha sample at (x, y). Layers without
// alpha have no valid coordinates, so every call panics on them.
func (lb *LayerBuffer) Alpha(x, y int) *AlphaPixel {
	lb.check("Alpha", x, y, len(lb.alpha))
	return &lb.alpha[y*lb.width+x]
}

// InBounds reports whether (x, y) addresses a color pixel.
func (lb *LayerBuffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < lb.width && y < lb.height && len(lb.color) > 0
}

func (lb *LayerBuffer) check(op string, x, y, n int) {
	if x < 0 || y < 0 || x >= lb.width || y >= lb.height || n == 0 {
		panic(&RangeError{Op: op, Index: x, Y: y, Limit: [2]int{lb.width, lb.height}})
	}
}

func (lb *LayerBuffer) Width() int  { return lb.width }
func (lb *LayerBuffer) Height() int { return lb.height }

// IsEmpty reports whether no color pixels are allocated.
func (lb *LayerBuffer) IsEmpty() bool { return len(lb.color) == 0 }

// HasAlpha reports whether the layer carries an alpha plane.
func (lb *LayerBuffer) HasAlpha() bool { return len(lb.alpha) > 0 }

// Row returns the color samples of row y. It shares storage with the
// layer.
func (lb *LayerBuffer) Row(y int) []ColorPixel {
	lb.check("Row", 0, y, len(lb.color))
	off := y * lb.width
	return lb.color[off : off+lb.width]
}
