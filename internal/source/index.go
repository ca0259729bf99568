package source

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// extRank orders extensions for the same layer stem; higher wins. TGA
// beats PNG beats JPEG because it is the only one guaranteed to carry the
// renderer's alpha.
var extRank = map[string]int{
	".jpg":  1,
	".jpeg": 1,
	".png":  2,
	".tga":  3,
}

// Index maps layer names (file stems, case preserved) to image paths.
type Index struct {
	entries map[string]string
}

// BuildIndex scans dir (not recursively) for layer images.
func BuildIndex(dir string) (*Index, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	idx := &Index{entries: make(map[string]string)}
	for _, d := range des {
		if d.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		rank, ok := extRank[ext]
		if !ok {
			continue
		}
		stem := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		path := filepath.Join(dir, d.Name())

		existing, exists := idx.entries[stem]
		if !exists || rank > extRank[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
	}
	return idx, nil
}

// Path returns the image path for a layer name, or ("", false).
func (idx *Index) Path(layer string) (string, bool) {
	p, ok := idx.entries[layer]
	return p, ok
}

// Layers returns the indexed layer names with the beauty layer first
// ("RGBA", then "rgb", then "beauty" if present) and the rest sorted.
func (idx *Index) Layers() []string {
	var names []string
	for n := range idx.entries {
		names = append(names, n)
	}
	slices.SortFunc(names, func(a, b string) int {
		if pa, pb := primaryRank(a), primaryRank(b); pa != pb {
			return pa - pb
		}
		return strings.Compare(a, b)
	})
	return names
}

func primaryRank(name string) int {
	switch name {
	case "RGBA":
		return 0
	case "rgb":
		return 1
	case "beauty":
		return 2
	}
	return 3
}

// Len returns the number of indexed layers.
func (idx *Index) Len() int {
	return len(idx.entries)
}
