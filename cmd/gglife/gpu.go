//go:build !nogpu

package main

import (
	"context"
	"time"

	"github.com/gogpu/gglife"
	"github.com/gogpu/gglife/gpu"
)

// runGPU ticks the grid on the GPU, either a fixed number of times or on
// the real-time loop for the given duration, and reads back the last frame.
func runGPU(ctx context.Context, cfg gglife.Config, steps int, run time.Duration, w, h int) (*gglife.Pixmap, uint64, error) {
	sim, err := gpu.New(cfg, gpu.WithTargetSize(uint32(w), uint32(h))) //nolint:gosec // sizes validated
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = sim.Close() }()

	if run > 0 {
		runCtx, cancel := context.WithTimeout(ctx, run)
		defer cancel()
		if err := sim.Run(runCtx, cfg.Interval); err != nil {
			return nil, sim.Step(), err
		}
		if sim.Step() == 0 {
			// Nothing rendered yet; make sure the frame holds the seed.
			if err := sim.Tick(); err != nil {
				return nil, 0, err
			}
		}
	} else {
		for i := 0; i < steps && ctx.Err() == nil; i++ {
			if err := sim.Tick(); err != nil {
				return nil, sim.Step(), err
			}
		}
	}

	img, err := sim.ReadFrame()
	if err != nil {
		return nil, sim.Step(), err
	}
	return gglife.PixmapFromImage(img), sim.Step(), nil
}
