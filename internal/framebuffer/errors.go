package framebuffer

import "fmt"

// RangeError is the panic value raised when a layer index or pixel
// coordinate falls outside the stored dimensions. Access is checked
// before any storage is touched, so a recovered RangeError never leaves
// partial writes behind.
type RangeError struct {
	Op    string
	Index int // layer index, or x for pixel access
	Y     int // -1 for layer access
	Limit [2]int
}

func (e *RangeError) Error() string {
	if e.Y < 0 {
		return fmt.Sprintf("framebuffer: %s: layer index %d out of range [0,%d)", e.Op, e.Index, e.Limit[0])
	}
	return fmt.Sprintf("framebuffer: %s: pixel (%d,%d) outside %dx%d", e.Op, e.Index, e.Y, e.Limit[0], e.Limit[1])
}
