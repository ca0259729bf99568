package batch

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"aton-buffer/internal/export"
	"aton-buffer/internal/framebuffer"
	"aton-buffer/internal/framestore"
)

// Config holds all shared settings for an export run.
type Config struct {
	OutputDir   string
	Format      string
	PreviewSize int // 0 disables previews
	Workers     int
}

// Result holds the outcome of exporting one layer.
type Result struct {
	Layer   string
	Kind    string
	Index   int
	Path    string
	Preview string
	Success bool
	Error   string
}

// FrameDir returns the output directory for a frame, e.g. "1001" or
// "12.5".
func FrameDir(outputDir string, frame float64) string {
	return filepath.Join(outputDir, fmt.Sprintf("%g", frame))
}

// Run exports every layer of frame using a worker pool. Each worker
// converts its layer under the store's read lock, so the frame must be
// ready; encoding and file I/O happen after the lock is released.
func Run(cfg Config, store *framestore.Store, frame float64) ([]Result, error) {
	var layers []string
	err := store.Read(frame, func(fb *framebuffer.FrameBuffer) error {
		layers = fb.Layers()
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := len(layers)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					fmt.Printf("  [%d/%d] %.1f layers/sec\n", p, total, float64(p)/elapsed)
				}
			}
		}
	}()

	// Worker pool
	workers := max(cfg.Workers, 1)
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = processLayer(cfg, store, frame, idx)
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range layers {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results, nil
}

func processLayer(cfg Config, store *framestore.Store, frame float64, idx int) Result {
	res := Result{Index: idx}

	var img *image.NRGBA
	err := store.Read(frame, func(fb *framebuffer.FrameBuffer) error {
		if idx >= fb.Size() {
			return fmt.Errorf("layer %d gone", idx)
		}
		res.Layer = fb.BufferName(idx)
		res.Kind = fb.Kind(idx).String()
		if fb.Buffer(idx).IsEmpty() {
			return fmt.Errorf("layer %q is empty", res.Layer)
		}
		img = export.Snapshot(fb, idx)
		return nil
	})
	if err != nil {
		return fail(res, err)
	}

	dir := FrameDir(cfg.OutputDir, frame)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fail(res, err)
	}

	res.Path = filepath.Join(dir, fileStem(res.Layer, idx)+export.Ext(cfg.Format))
	if err := writeImage(res.Path, img, cfg.Format); err != nil {
		return fail(res, err)
	}

	if cfg.PreviewSize > 0 {
		res.Preview = filepath.Join(dir, fileStem(res.Layer, idx)+"_preview"+export.Ext(cfg.Format))
		if err := writeImage(res.Preview, export.Downsample(img, cfg.PreviewSize), cfg.Format); err != nil {
			return fail(res, err)
		}
	}

	res.Success = true
	return res
}

func fail(res Result, err error) Result {
	framebuffer.Logger().Warn("batch: export failed", "layer", res.Layer, "index", res.Index, "err", err)
	res.Error = err.Error()
	return res
}

// fileStem keeps layer names usable as file names; unnamed slots get
// their index.
func fileStem(layer string, idx int) string {
	if layer == "" {
		return fmt.Sprintf("layer%d", idx)
	}
	return filepath.Base(filepath.Clean("/" + layer))
}

func writeImage(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
