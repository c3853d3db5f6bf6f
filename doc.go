// Package gglife runs Conway's Game of Life on the GPU with a double-buffered
// compute/render pipeline, and provides the CPU reference model it is tested
// against.
//
// # Overview
//
// The grid lives in two cell-state buffers of one u32 per cell. Every tick a
// compute pass reads one buffer and writes the next generation into the
// other, then a render pass draws one instanced quad per cell from the buffer
// just written. The buffers swap roles by step parity; no data is copied.
//
// This package holds everything that does not need a device:
//
//   - Grid, Next: the toroidal grid and the birth/survival rule
//   - Universe: the CPU ping-pong buffer pair, same parity rule as the GPU store
//   - Config: grid size, fill probability, seed, tick interval, backend
//   - CellVertex, CellColor, QuadVertices: the render-stage math
//   - RenderCells, Pixmap: a software rendition of the render stage
//
// The GPU pipeline lives in github.com/gogpu/gglife/gpu.
//
// # Quick Start
//
//	cfg := gglife.NewConfig(gglife.WithSize(64, 64), gglife.WithSeed(1))
//	sim, err := gpu.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sim.Close()
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	_ = sim.Run(ctx, cfg.Interval)
//
// # Logging
//
// gglife is silent by default. Install a logger with SetLogger.
package gglife
