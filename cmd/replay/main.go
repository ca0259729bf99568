package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"aton-buffer/internal/batch"
	"aton-buffer/internal/bucket"
	"aton-buffer/internal/config"
	"aton-buffer/internal/export"
	"aton-buffer/internal/framebuffer"
	"aton-buffer/internal/framestore"
	"aton-buffer/internal/source"
)

// rendererVersion is reported for replayed renders (5.0.3.1).
const rendererVersion = 5000301

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	inputDir := flag.String("input", "", "Directory of per-layer images (RGBA.tga, depth.png, ...)")
	outputDir := flag.String("output", "", "Output directory (default: <input>/export)")
	format := flag.String("format", "", "Output format: webp or tga (default: webp)")
	bucketSize := flag.Int("bucket", 0, "Bucket size in pixels (default: 64)")
	workers := flag.Int("workers", 0, "Number of export workers (default: NumCPU)")
	synthetic := flag.Bool("synthetic", false, "Replay a generated frame instead of -input")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	framebuffer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		InputDir:   *inputDir,
		OutputDir:  *outputDir,
		Format:     *format,
		BucketSize: *bucketSize,
		Workers:    *workers,
	})
	if err := cfg.Validate(export.Formats); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.InputDir == "" && !*synthetic {
		fmt.Fprintln(os.Stderr, "Error: no input. Use -input, a config.json input_dir, or -synthetic.")
		os.Exit(1)
	}

	// Cut the source layers into buckets
	var (
		tiles []bucket.Tile
		w, h  int
		err   error
	)
	if *synthetic {
		w, h = cfg.Width, cfg.Height
		tiles = syntheticTiles(w, h, cfg.BucketSize)
	} else {
		tiles, w, h, err = loadTiles(cfg.InputDir, cfg.BucketSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading layers: %v\n", err)
			os.Exit(1)
		}
	}
	layers := bucket.LayerNames(tiles)

	fmt.Printf("Progressive render replay, frame %g\n", cfg.Frame)
	fmt.Printf("Image: %dx%d, Layers: %v, Buckets: %d\n", w, h, layers, len(tiles))
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	store := framestore.New(cfg.KeepFrames)
	store.Acquire(cfg.Frame, w, h, layers)

	// Producer: one Write per bucket, status updated alongside. Each
	// written region is handed to the consumer.
	updates := make(chan image.Rectangle, len(tiles))
	errc := make(chan error, 1)
	go func() {
		defer close(updates)
		var ram int64
		for i := range tiles {
			t := &tiles[i]
			ram += int64(len(t.Pixels) * 4)
			status := bucket.Status{
				Progress: (i + 1) * 100 / len(tiles),
				RAM:      ram,
				Time:     int(time.Since(start).Seconds()),
				Version:  rendererVersion,
			}
			err := store.Write(cfg.Frame, func(fb *framebuffer.FrameBuffer) error {
				bucket.ApplyStatus(fb, status)
				return bucket.Apply(fb, t)
			})
			if err != nil {
				errc <- err
				return
			}
			updates <- t.Rect()
		}
		errc <- nil
	}()

	// Consumer: redraw each updated region of the primary layer
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	var frames []*image.NRGBA
	lastProgress := -1
	for r := range updates {
		err := store.Read(cfg.Frame, func(fb *framebuffer.FrameBuffer) error {
			idx := fb.ChannelIndex(framebuffer.ChanRed)
			if idx == framebuffer.NotFound {
				idx = 0
			}
			export.Region(canvas, fb.Buffer(idx), r)
			if fb.Progress()/10 != lastProgress/10 {
				lastProgress = fb.Progress()
				fmt.Printf("  %3d%%  ram %s (peak %s)\n", fb.Progress(), humanBytes(fb.RAM()), humanBytes(fb.PeakRAM()))
				if cfg.ProgressMS > 0 {
					frames = append(frames, export.Downsample(cloneNRGBA(canvas), cfg.PreviewSize))
				}
			}
			return nil
		})
		if err != nil {
			framebuffer.Logger().Debug("replay: consumer skipped update", "rect", r, "err", err)
		}
	}
	if err := <-errc; err != nil {
		fmt.Fprintf(os.Stderr, "Error applying bucket: %v\n", err)
		os.Exit(1)
	}

	// Export every layer
	results, err := batch.Run(batch.Config{
		OutputDir:   cfg.OutputDir,
		Format:      cfg.Format,
		PreviewSize: cfg.PreviewSize,
		Workers:     cfg.Workers,
	}, store, cfg.Frame)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		os.Exit(1)
	}

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			fmt.Printf("  %s: %s\n", r.Layer, r.Error)
		}
	}
	fmt.Printf("Exported: %d/%d layers\n", len(results)-failed, len(results))

	// Progress animation
	if len(frames) > 0 {
		animPath := filepath.Join(batch.FrameDir(cfg.OutputDir, cfg.Frame), "progress.webp")
		if err := writeProgress(animPath, frames, uint(cfg.ProgressMS)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: progress animation failed: %v\n", err)
		} else {
			fmt.Printf("Progress: %s\n", animPath)
		}
	}

	// Write manifest
	var manifest batch.Manifest
	err = store.Read(cfg.Frame, func(fb *framebuffer.FrameBuffer) error {
		manifest = batch.NewManifest(fb)
		return nil
	})
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest skipped, frame status unavailable: %v\n", err)
	} else if err := batch.WriteManifest(manifestPath, manifest, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// loadTiles reads every indexed layer and cuts it into buckets, all
// layers of one bucket together. Depth layers travel as one channel,
// the beauty layer as rgba and everything else as rgb.
func loadTiles(dir string, size int) ([]bucket.Tile, int, int, error) {
	idx, err := source.BuildIndex(dir)
	if err != nil {
		return nil, 0, 0, err
	}
	if idx.Len() == 0 {
		return nil, 0, 0, fmt.Errorf("no layer images in %s", dir)
	}
	fmt.Printf("Layers: %d indexed\n", idx.Len())

	var (
		perLayer [][]bucket.Tile
		w, h     int
	)
	for _, name := range idx.Layers() {
		path, _ := idx.Path(name)
		img, err := source.Load(path)
		if err != nil {
			return nil, 0, 0, err
		}
		b := img.Bounds()
		if w == 0 {
			w, h = b.Dx(), b.Dy()
		} else if b.Dx() != w || b.Dy() != h {
			return nil, 0, 0, fmt.Errorf("%s is %dx%d, expected %dx%d", path, b.Dx(), b.Dy(), w, h)
		}
		perLayer = append(perLayer, bucket.Split(img, name, size, channelsFor(name)))
	}
	return bucket.Interleave(perLayer...), w, h, nil
}

func channelsFor(layer string) int {
	switch framebuffer.KindOf(layer) {
	case framebuffer.KindBeauty:
		return 4
	case framebuffer.KindDepth:
		return 1
	}
	return 3
}

// syntheticTiles renders a lit sphere over a gradient: beauty with alpha,
// camera depth and normals.
func syntheticTiles(w, h, size int) []bucket.Tile {
	rgba := make([]float32, w*h*4)
	depth := make([]float32, w*h)
	normal := make([]float32, w*h*3)

	cx, cy := float64(w)/2, float64(h)/2
	radius := math.Min(cx, cy) * 0.8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			dx, dy := (float64(x)+0.5-cx)/radius, (float64(y)+0.5-cy)/radius
			d2 := dx*dx + dy*dy
			if d2 > 1 {
				v := float32(y) / float32(h)
				copy(rgba[i*4:], []float32{0.2 * v, 0.3 * v, 0.5 * v, 0})
				depth[i] = float32(math.Inf(1))
				continue
			}
			dz := math.Sqrt(1 - d2)
			shade := float32(math.Max(0, -0.4*dx-0.5*dy+0.75*dz))
			copy(rgba[i*4:], []float32{0.9 * shade, 0.5 * shade, 0.2 * shade, 1})
			depth[i] = float32(10 - dz)
			copy(normal[i*3:], []float32{float32(dx), float32(-dy), float32(dz)})
		}
	}
	return bucket.Interleave(
		bucket.SplitFloat(rgba, w, h, 4, framebuffer.NameRGBA, size),
		bucket.SplitFloat(depth, w, h, 1, framebuffer.NameDepth, size),
		bucket.SplitFloat(normal, w, h, 3, framebuffer.NameN, size),
	)
}

func writeProgress(path string, frames []*image.NRGBA, delayMS uint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.EncodeProgress(f, frames, delayMS); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func cloneNRGBA(img *image.NRGBA) *image.NRGBA {
	c := image.NewNRGBA(img.Rect)
	copy(c.Pix, img.Pix)
	return c
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
