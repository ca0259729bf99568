package framebuffer

// ColorPixel is one rgb sample (value type, no alpha).
type ColorPixel [3]float32

// AlphaPixel is one alpha sample.
type AlphaPixel float32

// R returns the red component.
func (c ColorPixel) R() float32 { return c[0] }

// G returns the green component.
func (c ColorPixel) G() float32 { return c[1] }

// B returns the blue component.
func (c ColorPixel) B() float32 { return c[2] }
