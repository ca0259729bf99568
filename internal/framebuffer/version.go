package framebuffer

import "fmt"

// FormatRendererVersion expands a packed renderer version number into
// dotted form. The packing is arch*1000000 + major*10000 + minor*100 + fix,
// so 5000301 becomes "5.0.3.1". Codes <= 0 are unknown and give "".
func FormatRendererVersion(code int) string {
	if code <= 0 {
		return ""
	}
	arch := (code % 10000000) / 1000000
	major := (code % 1000000) / 10000
	minor := (code % 10000) / 100
	fix := code % 100
	return fmt.Sprintf("%d.%d.%d.%d", arch, major, minor, fix)
}
