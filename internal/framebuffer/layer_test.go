package framebuffer

import (
	"errors"
	"testing"
)

func TestLayerBufferInit(t *testing.T) {
	tests := []struct {
		w, h      int
		alpha     bool
		wantEmpty bool
	}{
		{0, 0, false, true},
		{0, 5, false, true},
		{5, 0, true, true},
		{1, 1, false, false},
		{4, 2, true, false},
		{-3, 2, false, true},
	}
	for _, tt := range tests {
		var lb LayerBuffer
		lb.Init(tt.w, tt.h, tt.alpha)

		if got := lb.IsEmpty(); got != tt.wantEmpty {
			t.Errorf("Init(%d,%d): IsEmpty() = %v, want %v", tt.w, tt.h, got, tt.wantEmpty)
		}
		wantW := max(tt.w, 0)
		if lb.Width() != wantW || lb.Height() != max(tt.h, 0) {
			t.Errorf("Init(%d,%d): size = %dx%d", tt.w, tt.h, lb.Width(), lb.Height())
		}
		wantAlpha := tt.alpha && !tt.wantEmpty
		if lb.HasAlpha() != wantAlpha {
			t.Errorf("Init(%d,%d,%v): HasAlpha() = %v, want %v", tt.w, tt.h, tt.alpha, lb.HasAlpha(), wantAlpha)
		}
	}
}

func TestLayerBufferReinitReplacesStorage(t *testing.T) {
	var lb LayerBuffer
	lb.Init(2, 2, true)
	*lb.Color(1, 1) = ColorPixel{1, 1, 1}

	lb.Init(3, 1, false)
	if lb.HasAlpha() {
		t.Error("HasAlpha() = true after Init without alpha")
	}
	for x := 0; x < 3; x++ {
		if got := *lb.Color(x, 0); got != (ColorPixel{}) {
			t.Errorf("Color(%d,0) = %v after re-init, want zero", x, got)
		}
	}
}

func TestLayerBufferWriteRead(t *testing.T) {
	var lb LayerBuffer
	lb.Init(5, 3, true)

	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			*lb.Color(x, y) = ColorPixel{float32(x), float32(y), float32(x * y)}
			*lb.Alpha(x, y) = AlphaPixel(float32(y*5+x) / 15)
		}
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			want := ColorPixel{float32(x), float32(y), float32(x * y)}
			if got := *lb.Color(x, y); got != want {
				t.Errorf("Color(%d,%d) = %v, want %v", x, y, got, want)
			}
			if got := *lb.Alpha(x, y); got != AlphaPixel(float32(y*5+x)/15) {
				t.Errorf("Alpha(%d,%d) = %v", x, y, got)
			}
		}
	}

	row := lb.Row(2)
	if len(row) != 5 || row[4] != (ColorPixel{4, 2, 8}) {
		t.Errorf("Row(2) = %v", row)
	}
}

func TestLayerBufferRowMajor(t *testing.T) {
	var lb LayerBuffer
	lb.Init(3, 2, false)
	*lb.Color(2, 0) = ColorPixel{7, 0, 0}
	*lb.Color(0, 1) = ColorPixel{9, 0, 0}

	if lb.color[2][0] != 7 || lb.color[3][0] != 9 {
		t.Errorf("flat storage = %v, want index y*width+x", lb.color)
	}
}

func expectRangePanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Errorf("%s: expected panic", name)
			return
		}
		err, ok := r.(error)
		var re *RangeError
		if !ok || !errors.As(err, &re) {
			t.Errorf("%s: panic value %T, want *RangeError", name, r)
		}
	}()
	fn()
}

func TestLayerBufferOutOfRange(t *testing.T) {
	var lb LayerBuffer
	lb.Init(4, 2, false)

	expectRangePanic(t, "x == width", func() { lb.Color(4, 0) })
	expectRangePanic(t, "y == height", func() { lb.Color(0, 2) })
	expectRangePanic(t, "negative x", func() { lb.Color(-1, 0) })
	// x past the row must not alias the next row.
	expectRangePanic(t, "row overflow", func() { lb.Color(5, 0) })
	expectRangePanic(t, "alpha on color-only layer", func() { lb.Alpha(0, 0) })

	var empty LayerBuffer
	expectRangePanic(t, "empty layer", func() { empty.Color(0, 0) })

	if lb.InBounds(4, 0) || lb.InBounds(0, -1) || !lb.InBounds(3, 1) {
		t.Error("InBounds disagrees with accessor range")
	}
}

func TestRangeErrorMessage(t *testing.T) {
	e := &RangeError{Op: "Color", Index: 4, Y: 0, Limit: [2]int{4, 2}}
	if got, want := e.Error(), "framebuffer: Color: pixel (4,0) outside 4x2"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	e = &RangeError{Op: "Buffer", Index: 3, Y: -1, Limit: [2]int{2, 0}}
	if got, want := e.Error(), "framebuffer: Buffer: layer index 3 out of range [0,2)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
