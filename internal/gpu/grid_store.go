//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gglife"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Grid store errors.
var (
	// ErrStoreNotInitialized is returned when buffers are requested before Init.
	ErrStoreNotInitialized = errors.New("gpu: grid store not initialized")

	// ErrCellCount is returned when Init receives the wrong number of cells.
	ErrCellCount = errors.New("gpu: cell count does not match grid size")
)

// gridUniformSize is the size of the grid uniform: a vec2<f32> padded to 16
// bytes.
const gridUniformSize = 16

// GridStore owns the GPU buffers of one grid: the grid-size uniform and the
// two cell-state storage buffers that alternate between input and output.
//
// At step s the input is cells[s%2] and the output is cells[(s+1)%2]. Only
// the compute stage writes cell buffers; the store itself never mutates
// them after Init.
type GridStore struct {
	device hal.Device
	queue  hal.Queue

	width  int
	height int

	uniform hal.Buffer
	cells   [2]hal.Buffer
}

// NewGridStore creates an empty store for a width×height grid. Call Init to
// allocate and upload.
func NewGridStore(device hal.Device, queue hal.Queue, width, height int) (*GridStore, error) {
	if width <= 0 || height <= 0 || width > gglife.MaxGridSize || height > gglife.MaxGridSize {
		return nil, fmt.Errorf("%w: %dx%d", gglife.ErrInvalidSize, width, height)
	}
	return &GridStore{device: device, queue: queue, width: width, height: height}, nil
}

// Width returns the grid width in cells.
func (s *GridStore) Width() int { return s.width }

// Height returns the grid height in cells.
func (s *GridStore) Height() int { return s.height }

// CellBytes returns the size of one cell buffer.
func (s *GridStore) CellBytes() uint64 {
	return uint64(s.width) * uint64(s.height) * 4 //nolint:gosec // sizes validated positive
}

// Init allocates the buffers and uploads cells to both cell buffers, so the
// pattern is present whichever parity runs first.
func (s *GridStore) Init(cells []uint32) error {
	if len(cells) != s.width*s.height {
		return fmt.Errorf("%w: got %d, want %d", ErrCellCount, len(cells), s.width*s.height)
	}
	if s.uniform != nil {
		s.Destroy()
	}

	uniform, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_grid_uniform",
		Size:  gridUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create grid uniform: %w", err)
	}
	s.uniform = uniform

	for i := range s.cells {
		buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("life_cells_%d", i),
			Size:  s.CellBytes(),
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
		})
		if err != nil {
			s.Destroy()
			return fmt.Errorf("gpu: create cell buffer %d: %w", i, err)
		}
		s.cells[i] = buf
	}

	s.queue.WriteBuffer(s.uniform, 0, gridUniformBytes(s.width, s.height))
	data := cellBytes(cells)
	for _, buf := range s.cells {
		s.queue.WriteBuffer(buf, 0, data)
	}

	slogger().Debug("gpu: grid store initialized",
		"width", s.width,
		"height", s.height,
		"cell_bytes", s.CellBytes())
	return nil
}

// Uniform returns the grid-size uniform buffer.
func (s *GridStore) Uniform() hal.Buffer { return s.uniform }

// BufferFor returns the input cell buffer for the given step parity.
func (s *GridStore) BufferFor(parity uint64) hal.Buffer { return s.cells[parity&1] }

// OutputFor returns the output cell buffer for the given step parity.
func (s *GridStore) OutputFor(parity uint64) hal.Buffer { return s.cells[(parity+1)&1] }

// Ready reports whether Init has completed.
func (s *GridStore) Ready() bool {
	return s.uniform != nil && s.cells[0] != nil && s.cells[1] != nil
}

// Destroy releases all buffers. It is safe to call more than once.
func (s *GridStore) Destroy() {
	for i, buf := range s.cells {
		if buf != nil {
			s.device.DestroyBuffer(buf)
			s.cells[i] = nil
		}
	}
	if s.uniform != nil {
		s.device.DestroyBuffer(s.uniform)
		s.uniform = nil
	}
}

// gridUniformBytes encodes the grid size as vec2<f32> padded to 16 bytes.
func gridUniformBytes(width, height int) []byte {
	buf := make([]byte, gridUniformSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(width)))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(height)))
	return buf
}

// cellBytes encodes cell states as little-endian u32 words.
func cellBytes(cells []uint32) []byte {
	buf := make([]byte, len(cells)*4)
	for i, c := range cells {
		binary.LittleEndian.PutUint32(buf[i*4:], c)
	}
	return buf
}

// cellsFromBytes decodes little-endian u32 words.
func cellsFromBytes(data []byte) []uint32 {
	cells := make([]uint32, len(data)/4)
	for i := range cells {
		cells[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return cells
}

// encodeStorageBarrier makes shader writes to buf visible to every later
// stage that reads it, including the vertex stage of a following render
// pass. The HAL does no hazard tracking of its own.
func encodeStorageBarrier(encoder hal.CommandEncoder, buf hal.Buffer) {
	encoder.TransitionBuffers([]hal.BufferBarrier{{
		Buffer: buf,
		Usage: hal.BufferUsageTransition{
			OldUsage: gputypes.BufferUsageStorage,
			NewUsage: gputypes.BufferUsageStorage,
		},
	}})
}
