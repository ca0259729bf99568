package export

import (
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// ErrUnknownFormat is returned for an output format other than webp or
// tga.
var ErrUnknownFormat = errors.New("export: unknown format")

// Formats lists the accepted output formats.
var Formats = []string{"webp", "tga"}

// Ext returns the file extension for format, including the dot.
func Ext(format string) string {
	return "." + strings.ToLower(format)
}

// Encode writes img in the given format ("webp" or "tga").
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "webp":
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("export: webp encode: %w", err)
		}
	case "tga":
		if err := tga.Encode(w, img); err != nil {
			return fmt.Errorf("export: tga encode: %w", err)
		}
	default:
		return fmt.Errorf("export: %q: %w", format, ErrUnknownFormat)
	}
	return nil
}

// EncodeProgress writes an animated WebP with one frame per snapshot,
// each shown for delayMS milliseconds, looping forever. All snapshots
// must share the same bounds.
func EncodeProgress(w io.Writer, frames []*image.NRGBA, delayMS uint) error {
	if len(frames) == 0 {
		return errors.New("export: no progress frames")
	}
	ani := &nativewebp.Animation{
		Images:    make([]image.Image, len(frames)),
		Durations: make([]uint, len(frames)),
		Disposals: make([]uint, len(frames)),
	}
	for i, f := range frames {
		ani.Images[i] = f
		ani.Durations[i] = delayMS
	}
	if err := nativewebp.EncodeAll(w, ani, nil); err != nil {
		return fmt.Errorf("export: webp animation: %w", err)
	}
	return nil
}
