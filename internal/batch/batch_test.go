package batch

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"aton-buffer/internal/bucket"
	"aton-buffer/internal/framebuffer"
	"aton-buffer/internal/framestore"
)

func renderedStore(t *testing.T) *framestore.Store {
	t.Helper()
	s := framestore.New(0)
	s.Acquire(1001, 8, 4, []string{"RGBA", "depth"})

	rgba := bucket.SplitFloat(make([]float32, 8*4*4), 8, 4, 4, "RGBA", 4)
	depth := make([]float32, 8*4)
	for i := range depth {
		depth[i] = float32(i)
	}
	tiles := bucket.Interleave(rgba, bucket.SplitFloat(depth, 8, 4, 1, "depth", 4))

	for i := range tiles {
		err := s.Write(1001, func(fb *framebuffer.FrameBuffer) error {
			bucket.ApplyStatus(fb, bucket.Status{Progress: (i + 1) * 25, RAM: int64(100 * (i + 1)), Time: i, Version: 5000301})
			return bucket.Apply(fb, &tiles[i])
		})
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	return s
}

func TestRunExportsEveryLayer(t *testing.T) {
	s := renderedStore(t)
	out := t.TempDir()

	results, err := Run(Config{OutputDir: out, Format: "webp", PreviewSize: 4, Workers: 2}, s, 1001)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Errorf("%s: %s", r.Layer, r.Error)
			continue
		}
		for _, p := range []string{r.Path, r.Preview} {
			if _, err := os.Stat(p); err != nil {
				t.Errorf("missing output %s: %v", p, err)
			}
		}
	}
	if results[1].Kind != "depth" {
		t.Errorf("results[1].Kind = %q", results[1].Kind)
	}
	if want := filepath.Join(out, "1001", "RGBA.webp"); results[0].Path != want {
		t.Errorf("Path = %s, want %s", results[0].Path, want)
	}

	var m Manifest
	if err := s.Read(1001, func(fb *framebuffer.FrameBuffer) error { m = NewManifest(fb); return nil }); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(out, "manifest.json")
	if err := WriteManifest(path, m, results); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Manifest
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.PeakRAM != 400 || got.Progress != 100 || got.RendererVersion != "5.0.3.1" {
		t.Errorf("manifest status = %+v", got)
	}
	if len(got.Layers) != 2 || got.Layers[1].Image != "1001/depth.webp" {
		t.Errorf("manifest layers = %+v", got.Layers)
	}
}

func TestRunEmptySlotFails(t *testing.T) {
	s := framestore.New(0)
	s.Acquire(1, 2, 2, nil)
	if err := s.Write(1, func(fb *framebuffer.FrameBuffer) error {
		fb.AddBuffer("RGBA", 0)
		fb.Resize(2)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	results, err := Run(Config{OutputDir: t.TempDir(), Format: "tga", Workers: 1}, s, 1)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !results[0].Success || results[1].Success {
		t.Errorf("results = %+v", results)
	}
	if results[0].Preview != "" {
		t.Error("preview written with PreviewSize 0")
	}
}

func TestRunNotReady(t *testing.T) {
	s := framestore.New(0)
	s.Acquire(1, 2, 2, nil)
	if _, err := Run(Config{OutputDir: t.TempDir(), Format: "webp"}, s, 1); !errors.Is(err, framestore.ErrNotReady) {
		t.Errorf("Run() error = %v, want ErrNotReady", err)
	}
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		layer string
		idx   int
		want  string
	}{
		{"RGBA", 0, "RGBA"},
		{"", 3, "layer3"},
		{"../etc/passwd", 1, "passwd"},
	}
	for _, tt := range tests {
		if got := fileStem(tt.layer, tt.idx); got != tt.want {
			t.Errorf("fileStem(%q) = %q, want %q", tt.layer, got, tt.want)
		}
	}
}
