//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrBindingMismatch is returned when the buffers supplied for a bind group
// do not match the schema's slots.
var ErrBindingMismatch = errors.New("gpu: buffers do not match binding schema")

// BindingSchema describes the bind group 0 layout of one pipeline stage.
// Entries and Names are in slot order and line up with the @binding(N)
// declarations of the stage's WGSL.
type BindingSchema struct {
	Label   string
	Names   []string
	Entries []gputypes.BindGroupLayoutEntry
}

// ComputeSchema is the binding layout of shaders/life_compute.wgsl:
//
//	@binding(0) uniform             grid      (vec2<f32>)
//	@binding(1) storage, read       cell_in   (array<u32>)
//	@binding(2) storage, read_write cell_out  (array<u32>)
func ComputeSchema() BindingSchema {
	return BindingSchema{
		Label: "life_compute",
		Names: []string{"grid", "cell_in", "cell_out"},
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
			},
		},
	}
}

// RenderSchema is the binding layout of shaders/life_render.wgsl:
//
//	@binding(0) uniform        grid        (vec2<f32>, vertex and fragment)
//	@binding(1) storage, read  cell_state  (array<u32>, vertex)
func RenderSchema() BindingSchema {
	return BindingSchema{
		Label: "life_render",
		Names: []string{"grid", "cell_state"},
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	}
}

// Len returns the number of slots.
func (s BindingSchema) Len() int { return len(s.Entries) }

// Bind returns bind group entries that attach bufs to the schema's slots in
// order. Each buffer is bound whole.
func (s BindingSchema) Bind(bufs ...hal.Buffer) ([]gputypes.BindGroupEntry, error) {
	if len(bufs) != len(s.Entries) {
		return nil, fmt.Errorf("%w: %s has %d slots, got %d buffers",
			ErrBindingMismatch, s.Label, len(s.Entries), len(bufs))
	}
	entries := make([]gputypes.BindGroupEntry, len(bufs))
	for i, buf := range bufs {
		if buf == nil {
			return nil, fmt.Errorf("%w: %s slot %d (%s) is nil",
				ErrBindingMismatch, s.Label, i, s.Names[i])
		}
		entries[i] = gputypes.BindGroupEntry{
			Binding: s.Entries[i].Binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: 0,
				Size:   0, // 0 = entire buffer
			},
		}
	}
	return entries, nil
}

// createLayouts creates the bind group layout and a pipeline layout holding
// only that group.
func (s BindingSchema) createLayouts(device hal.Device) (hal.BindGroupLayout, hal.PipelineLayout, error) {
	bgl, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   s.Label + "_bgl",
		Entries: s.Entries,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: create bind group layout %s: %w", s.Label, err)
	}
	pl, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            s.Label + "_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bgl},
	})
	if err != nil {
		device.DestroyBindGroupLayout(bgl)
		return nil, nil, fmt.Errorf("gpu: create pipeline layout %s: %w", s.Label, err)
	}
	return bgl, pl, nil
}
