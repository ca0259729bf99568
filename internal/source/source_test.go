package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ftrvxmtrx/tga"
)

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	switch filepath.Ext(path) {
	case ".tga":
		err = tga.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		t.Fatal(err)
	}
}

func TestBuildIndex(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	writeImage(t, filepath.Join(dir, "depth.png"), img)
	writeImage(t, filepath.Join(dir, "RGBA.png"), img)
	writeImage(t, filepath.Join(dir, "RGBA.tga"), img)
	writeImage(t, filepath.Join(dir, "N.png"), img)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}

	idx, err := BuildIndex(dir)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3", idx.Len())
	}
	if got := idx.Layers(); !slices.Equal(got, []string{"RGBA", "N", "depth"}) {
		t.Errorf("Layers() = %v", got)
	}
	if p, _ := idx.Path("RGBA"); filepath.Ext(p) != ".tga" {
		t.Errorf("Path(RGBA) = %s, want the .tga", p)
	}
	if _, ok := idx.Path("notes"); ok {
		t.Error("non-image file indexed")
	}

	if _, err := BuildIndex(filepath.Join(dir, "missing")); err == nil {
		t.Error("BuildIndex() on missing dir succeeded")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(2, 1, color.NRGBA{10, 20, 30, 255})
	path := filepath.Join(dir, "RGBA.png")
	writeImage(t, path, src)

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Bounds() != src.Bounds() {
		t.Fatalf("Bounds() = %v", img.Bounds())
	}
	if got := img.NRGBAAt(2, 1); got != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("NRGBAAt(2,1) = %v", got)
	}

	if _, err := Load(filepath.Join(dir, "nope.png")); err == nil {
		t.Error("Load() of missing file succeeded")
	}
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load() of garbage succeeded")
	}
}

func TestToNRGBAMovesOrigin(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 7, 6))
	src.SetGray(6, 5, color.Gray{Y: 200})
	got := toNRGBA(src)
	if got.Rect != image.Rect(0, 0, 2, 1) {
		t.Fatalf("Rect = %v", got.Rect)
	}
	if c := got.NRGBAAt(1, 0); c != (color.NRGBA{200, 200, 200, 255}) {
		t.Errorf("NRGBAAt(1,0) = %v", c)
	}
}
