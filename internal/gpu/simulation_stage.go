//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// WorkgroupSize is the edge length of the square compute workgroup. It must
// match @workgroup_size in shaders/life_compute.wgsl.
const WorkgroupSize = 8

// WorkgroupCount returns the number of workgroups covering n cells along one
// axis: ceil(n / WorkgroupSize).
func WorkgroupCount(n int) uint32 {
	if n <= 0 {
		return 0
	}
	return uint32((n + WorkgroupSize - 1) / WorkgroupSize) //nolint:gosec // n > 0
}

// SimulationStage advances the grid by one generation on the GPU. It reads
// the store's input buffer for the current parity and writes the output
// buffer; it never writes its input.
type SimulationStage struct {
	device hal.Device
	store  *GridStore
	schema BindingSchema

	module     hal.ShaderModule
	bgLayout   hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	// groups[p] binds BufferFor(p) as input and OutputFor(p) as output.
	groups [2]hal.BindGroup
}

// NewSimulationStage builds the compute pipeline and both parity bind
// groups for an initialized store. When spirv is set the shader is
// precompiled to SPIR-V.
func NewSimulationStage(device hal.Device, store *GridStore, spirv bool) (*SimulationStage, error) {
	if !store.Ready() {
		return nil, ErrStoreNotInitialized
	}
	s := &SimulationStage{device: device, store: store, schema: ComputeSchema()}
	if err := s.init(spirv); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

func (s *SimulationStage) init(spirv bool) error {
	module, err := createShaderModule(s.device, ShaderCompute, spirv)
	if err != nil {
		return err
	}
	s.module = module

	s.bgLayout, s.pipeLayout, err = s.schema.createLayouts(s.device)
	if err != nil {
		return err
	}

	s.pipeline, err = s.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "life_compute",
		Layout: s.pipeLayout,
		Compute: hal.ComputeState{
			Module:     s.module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create compute pipeline: %w", err)
	}

	for p := range s.groups {
		entries, err := s.schema.Bind(s.buffersFor(uint64(p))...)
		if err != nil {
			return err
		}
		bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("life_compute_bg_%d", p),
			Layout:  s.bgLayout,
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("gpu: create compute bind group %d: %w", p, err)
		}
		s.groups[p] = bg
	}

	slogger().Debug("gpu: simulation stage created",
		"bindings", s.schema.Len(),
		"workgroups_x", WorkgroupCount(s.store.Width()),
		"workgroups_y", WorkgroupCount(s.store.Height()))
	return nil
}

// buffersFor lists the buffers bound for parity p in schema slot order.
func (s *SimulationStage) buffersFor(p uint64) []hal.Buffer {
	return []hal.Buffer{s.store.Uniform(), s.store.BufferFor(p), s.store.OutputFor(p)}
}

// BindGroup returns the bind group used at the given parity.
func (s *SimulationStage) BindGroup(parity uint64) hal.BindGroup { return s.groups[parity&1] }

// Dispatch returns the workgroup counts of one step.
func (s *SimulationStage) Dispatch() (x, y, z uint32) {
	return WorkgroupCount(s.store.Width()), WorkgroupCount(s.store.Height()), 1
}

// Encode records one compute pass computing the next generation for the
// given parity.
func (s *SimulationStage) Encode(encoder hal.CommandEncoder, parity uint64) {
	x, y, z := s.Dispatch()
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "life_compute"})
	pass.SetPipeline(s.pipeline)
	pass.SetBindGroup(0, s.groups[parity&1], nil)
	pass.Dispatch(x, y, z)
	pass.End()
}

// Destroy releases the stage's GPU objects. The store is not touched.
func (s *SimulationStage) Destroy() {
	for i, bg := range s.groups {
		if bg != nil {
			s.device.DestroyBindGroup(bg)
			s.groups[i] = nil
		}
	}
	if s.pipeline != nil {
		s.device.DestroyComputePipeline(s.pipeline)
		s.pipeline = nil
	}
	if s.pipeLayout != nil {
		s.device.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = nil
	}
	if s.bgLayout != nil {
		s.device.DestroyBindGroupLayout(s.bgLayout)
		s.bgLayout = nil
	}
	if s.module != nil {
		s.device.DestroyShaderModule(s.module)
		s.module = nil
	}
}
