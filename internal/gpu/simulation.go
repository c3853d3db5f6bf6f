//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gglife"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrClosed is returned by every Simulation method after Close.
	ErrClosed = errors.New("gpu: simulation is closed")

	// ErrNoFrame is returned by ReadFrame before Tick has rendered into
	// the offscreen target.
	ErrNoFrame = errors.New("gpu: offscreen target has not been rendered")
)

// fenceTimeout bounds every wait for GPU completion.
const fenceTimeout = 5 * time.Second

// populationLogInterval is the number of ticks between population reports
// at debug level.
const populationLogInterval = 64

// DefaultTargetSize is the edge length in pixels of the offscreen target
// when Config leaves it unset.
const DefaultTargetSize = 512

// Config describes a Simulation.
type Config struct {
	// Seed is the generation-zero grid. Its size fixes the grid size.
	Seed *gglife.Grid

	// Format is the color format of every view the simulation renders
	// into. Zero selects DefaultTargetFormat.
	Format gputypes.TextureFormat

	// TargetWidth and TargetHeight size the offscreen target used by Tick
	// and ReadFrame. Zero selects DefaultTargetSize.
	TargetWidth, TargetHeight uint32

	// SPIRV precompiles shaders with naga instead of handing WGSL to the
	// driver.
	SPIRV bool
}

// Simulation owns every GPU object of one running grid: the grid store, the
// simulation and render stages, the offscreen target and the step counter.
//
// Lifecycle: NewSimulation, then any number of Tick/TickTo/Draw, then Close.
// Methods are serialized by a mutex, so ticks never overlap.
type Simulation struct {
	mu sync.Mutex

	dev    *Device
	store  *GridStore
	sim    *SimulationStage
	render *RenderStage
	target *RenderTarget

	step   uint64
	framed bool
	closed bool
}

// NewSimulation uploads cfg.Seed and builds both pipelines on dev. The
// Simulation takes ownership of dev, also when it returns an error, and
// closes it on Close.
func NewSimulation(dev *Device, cfg Config) (*Simulation, error) {
	if dev == nil || dev.Device == nil || dev.Queue == nil {
		return nil, ErrNoDevice
	}
	if cfg.Seed == nil {
		dev.Close()
		return nil, fmt.Errorf("%w: nil seed grid", gglife.ErrInvalidSize)
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = DefaultTargetFormat
	}
	if cfg.TargetWidth == 0 {
		cfg.TargetWidth = DefaultTargetSize
	}
	if cfg.TargetHeight == 0 {
		cfg.TargetHeight = DefaultTargetSize
	}

	s := &Simulation{dev: dev}
	if err := s.init(cfg); err != nil {
		s.destroy()
		return nil, err
	}

	slogger().Info("gpu: simulation ready",
		"width", cfg.Seed.Width(),
		"height", cfg.Seed.Height(),
		"population", cfg.Seed.Population(),
		"backend", dev.Backend,
		"spirv", cfg.SPIRV)
	return s, nil
}

func (s *Simulation) init(cfg Config) error {
	var err error
	device, queue := s.dev.Device, s.dev.Queue

	s.store, err = NewGridStore(device, queue, cfg.Seed.Width(), cfg.Seed.Height())
	if err != nil {
		return err
	}
	if err := s.store.Init(cfg.Seed.Cells()); err != nil {
		return err
	}
	if s.sim, err = NewSimulationStage(device, s.store, cfg.SPIRV); err != nil {
		return err
	}
	if s.render, err = NewRenderStage(device, queue, s.store, cfg.Format, cfg.SPIRV); err != nil {
		return err
	}
	s.target, err = NewRenderTarget(device, cfg.TargetWidth, cfg.TargetHeight, cfg.Format)
	return err
}

// Size returns the grid dimensions in cells.
func (s *Simulation) Size() (width, height int) {
	return s.store.Width(), s.store.Height()
}

// Step returns the number of completed ticks.
func (s *Simulation) Step() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Tick advances the grid by one generation and renders it into the
// offscreen target.
func (s *Simulation) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.tick(s.target.View()); err != nil {
		return err
	}
	s.framed = true
	return nil
}

// TickTo advances the grid by one generation and renders it into view,
// typically the current swapchain image of a window. The view must have
// the format the Simulation was configured with.
func (s *Simulation) TickTo(view hal.TextureView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.tick(view)
}

// tick records the compute pass and the render pass into one command
// buffer, submits it and advances the step once the GPU is done. The
// render pass reads the buffer the compute pass just wrote; the barrier
// between them orders the dispatch writes before the vertex reads.
func (s *Simulation) tick(view hal.TextureView) error {
	parity := s.step & 1
	err := submit(s.dev.Device, s.dev.Queue, "life_tick", func(encoder hal.CommandEncoder) error {
		s.sim.Encode(encoder, parity)
		encodeStorageBarrier(encoder, s.store.OutputFor(parity))
		s.render.Encode(encoder, view, parity)
		return nil
	})
	if err != nil {
		return fmt.Errorf("gpu: tick %d: %w", s.step, err)
	}
	s.step++

	if s.step%populationLogInterval == 0 && slogger().Enabled(context.Background(), slog.LevelDebug) {
		s.logPopulation()
	}
	return nil
}

// Draw renders the current generation into view without advancing.
func (s *Simulation) Draw(view hal.TextureView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	// OutputFor(step+1) is BufferFor(step), the current generation.
	parity := (s.step + 1) & 1
	return submit(s.dev.Device, s.dev.Queue, "life_draw", func(encoder hal.CommandEncoder) error {
		s.render.Encode(encoder, view, parity)
		return nil
	})
}

// Run ticks every interval until ctx is done or a tick fails. A failed
// tick is logged and returned; the loop does not retry. Cancellation of
// ctx is a normal stop and returns nil.
func (s *Simulation) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval %v", gglife.ErrInvalidConfig, interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slogger().Info("gpu: run loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slogger().Info("gpu: run loop stopped", "step", s.Step())
			return nil
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				if errors.Is(err, ErrClosed) {
					return err
				}
				slogger().Error("gpu: tick failed, halting run loop",
					"step", s.Step(), "error", err)
				return err
			}
		}
	}
}

// ReadCells copies the current generation back to the CPU.
func (s *Simulation) ReadCells() ([]uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.readCells()
}

// Current returns the current generation as a grid.
func (s *Simulation) Current() (*gglife.Grid, error) {
	cells, err := s.ReadCells()
	if err != nil {
		return nil, err
	}
	return gglife.GridFromCells(s.store.Width(), s.store.Height(), cells)
}

func (s *Simulation) readCells() ([]uint32, error) {
	data, err := readBuffer(s.dev.Device, s.dev.Queue, s.store.BufferFor(s.step), s.store.CellBytes())
	if err != nil {
		return nil, fmt.Errorf("gpu: read cells: %w", err)
	}
	return cellsFromBytes(data), nil
}

// readBuffer copies size bytes of src into a staging buffer and reads them
// back once the copy has completed.
func readBuffer(device hal.Device, queue hal.Queue, src hal.Buffer, size uint64) ([]byte, error) {
	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_readback_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	err = submit(device, queue, "life_readback", func(encoder hal.CommandEncoder) error {
		encoder.CopyBufferToBuffer(src, staging, []hal.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: size}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := make([]byte, size)
	if err := queue.ReadBuffer(staging, 0, data); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadFrame reads the offscreen target back as an RGBA image. It holds the
// frame rendered by the last Tick; TickTo and Draw render elsewhere and
// leave it untouched. Before the first Tick it returns ErrNoFrame.
func (s *Simulation) ReadFrame() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if !s.framed {
		return nil, ErrNoFrame
	}

	size := s.target.readbackSize()
	staging, err := s.dev.Device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_frame_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	defer s.dev.Device.DestroyBuffer(staging)

	err = submit(s.dev.Device, s.dev.Queue, "life_read_frame", func(encoder hal.CommandEncoder) error {
		s.target.encodeCopy(encoder, staging)
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := make([]byte, size)
	if err := s.dev.Queue.ReadBuffer(staging, 0, data); err != nil {
		return nil, fmt.Errorf("gpu: read frame: %w", err)
	}
	return s.target.decode(data), nil
}

// submit records commands with record, submits them as one command buffer
// and waits for completion.
func submit(device hal.Device, queue hal.Queue, label string, record func(hal.CommandEncoder) error) error {
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	if err := record(encoder); err != nil {
		encoder.DiscardEncoding()
		return err
	}
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("GPU timeout after %v", fenceTimeout)
	}
	return nil
}

// logPopulation reads the grid back and reports the live cell count.
func (s *Simulation) logPopulation() {
	cells, err := s.readCells()
	if err != nil {
		slogger().Debug("gpu: population readback failed", "step", s.step, "error", err)
		return
	}
	alive := 0
	for _, c := range cells {
		if c != gglife.Dead {
			alive++
		}
	}
	slogger().Debug("gpu: population", "step", s.step, "alive", alive)
}

// Close releases every GPU object and the device. Further calls return
// ErrClosed; Close itself is idempotent.
func (s *Simulation) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.destroy()
	slogger().Debug("gpu: simulation closed", "step", s.step)
	return nil
}

// destroy releases resources in reverse creation order.
func (s *Simulation) destroy() {
	if s.dev == nil || s.dev.Device == nil {
		return
	}
	device := s.dev.Device
	if s.target != nil {
		s.target.Destroy(device)
		s.target = nil
	}
	if s.render != nil {
		s.render.Destroy()
		s.render = nil
	}
	if s.sim != nil {
		s.sim.Destroy()
		s.sim = nil
	}
	if s.store != nil {
		s.store.Destroy()
	}
	s.dev.Close()
}
