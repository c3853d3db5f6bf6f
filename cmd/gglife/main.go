// Command gglife runs Conway's Game of Life on the GPU and saves the final
// frame as a PNG.
//
// Usage:
//
//	gglife -size 128 -steps 500 -output life.png
//	gglife -run 10s -interval 20ms           # real-time loop for 10 seconds
//	gglife -cpu -pattern glider.txt -steps 40 # no GPU required
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/gglife"
)

func main() {
	var (
		size     = flag.Int("size", gglife.DefaultGridSize, "grid width and height in cells")
		alive    = flag.Float64("p", gglife.DefaultAliveProbability, "initial alive probability")
		seed     = flag.Uint64("seed", 0, "random seed (0 = time based)")
		interval = flag.Duration("interval", gglife.DefaultInterval, "tick period of the real-time loop")
		steps    = flag.Int("steps", 100, "number of ticks to run when -run is not set")
		run      = flag.Duration("run", 0, "run the real-time loop for this long instead of -steps")
		backend  = flag.String("backend", gglife.DefaultBackend, "GPU backend: vulkan, software or noop")
		cpu      = flag.Bool("cpu", false, "simulate and render on the CPU")
		pattern  = flag.String("pattern", "", "plaintext pattern file to start from")
		scale    = flag.Int("scale", 8, "output pixels per cell")
		output   = flag.String("output", "gglife.png", "output file")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	gglife.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	opts := []gglife.Option{
		gglife.WithSize(*size, *size),
		gglife.WithAliveProbability(*alive),
		gglife.WithSeed(*seed),
		gglife.WithInterval(*interval),
		gglife.WithBackend(*backend),
	}
	if *pattern != "" {
		p, err := loadPattern(*pattern)
		if err != nil {
			log.Fatalf("Failed to load pattern: %v", err)
		}
		opts = append(opts, gglife.WithPattern(p))
	}
	cfg := gglife.NewConfig(opts...)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	frameW, frameH, err := frameSize(cfg, *scale)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		frame *gglife.Pixmap
		gen   uint64
	)
	if *cpu {
		frame, gen, err = runCPU(ctx, cfg, *steps, frameW, frameH)
	} else {
		frame, gen, err = runGPU(ctx, cfg, *steps, *run, frameW, frameH)
	}
	if err != nil {
		log.Fatal(err)
	}

	if err := frame.DrawLabel(4, 16, fmt.Sprintf("gen %d", gen), gglife.White); err != nil {
		log.Printf("Failed to draw label: %v", err)
	}
	if err := frame.SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Generation %d saved to %s (%dx%d)\n", gen, *output, frameW, frameH)
}

// frameSize returns the output image size for scale pixels per cell.
func frameSize(cfg gglife.Config, scale int) (width, height int, err error) {
	if scale <= 0 {
		return 0, 0, fmt.Errorf("%w: scale %d must be positive", gglife.ErrInvalidConfig, scale)
	}
	return cfg.Width * scale, cfg.Height * scale, nil
}

func loadPattern(path string) (*gglife.Grid, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	return gglife.ParsePattern(string(data))
}

// runCPU advances a CPU universe and renders it with the software renderer.
func runCPU(ctx context.Context, cfg gglife.Config, steps, w, h int) (*gglife.Pixmap, uint64, error) {
	seed, err := cfg.InitialGrid()
	if err != nil {
		return nil, 0, err
	}
	u := gglife.NewUniverse(seed)
	for i := 0; i < steps && ctx.Err() == nil; i++ {
		u.Tick()
	}
	cur := u.Current()
	gglife.Logger().Info("cpu run finished", "step", u.Step(), "population", cur.Population())
	return gglife.RenderImage(cur, w, h), u.Step(), nil
}
