package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"aton-buffer/internal/framebuffer"
)

// Manifest describes one exported frame.
type Manifest struct {
	Frame           float64         `json:"frame"`
	Width           int             `json:"width"`
	Height          int             `json:"height"`
	Progress        int             `json:"progress"`
	PeakRAM         int64           `json:"peak_ram"`
	RenderTime      int             `json:"render_time"`
	RendererVersion string          `json:"renderer_version,omitempty"`
	Layers          []ManifestEntry `json:"layers"`
}

// ManifestEntry represents one exported layer.
type ManifestEntry struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Image   string `json:"image,omitempty"`
	Preview string `json:"preview,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewManifest captures a frame's status. Call it while holding read
// access to fb.
func NewManifest(fb *framebuffer.FrameBuffer) Manifest {
	return Manifest{
		Frame:           fb.Frame(),
		Width:           fb.Width(),
		Height:          fb.Height(),
		Progress:        fb.Progress(),
		PeakRAM:         fb.PeakRAM(),
		RenderTime:      fb.Time(),
		RendererVersion: fb.RendererVersion(),
	}
}

// WriteManifest writes m to path, with layer image paths made relative
// to the manifest's directory.
func WriteManifest(path string, m Manifest, results []Result) error {
	base := filepath.Dir(path)
	m.Layers = make([]ManifestEntry, len(results))
	for i, r := range results {
		m.Layers[i] = ManifestEntry{
			Index:   r.Index,
			Name:    r.Layer,
			Kind:    r.Kind,
			Image:   rel(base, r.Path),
			Preview: rel(base, r.Preview),
			Error:   r.Error,
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func rel(base, path string) string {
	if path == "" {
		return ""
	}
	if r, err := filepath.Rel(base, path); err == nil {
		return filepath.ToSlash(r)
	}
	return path
}
