//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gglife"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// quadVertexStride is the byte stride of one vec2<f32> base vertex.
const quadVertexStride = 8

// quadVertexCount is the number of base vertices per cell instance.
const quadVertexCount = uint32(len(gglife.QuadVertices))

// RenderStage draws the grid as one instanced quad per cell. It reads the
// buffer the simulation stage wrote for the same parity, so the frame always
// shows the generation just computed.
type RenderStage struct {
	device hal.Device
	queue  hal.Queue
	store  *GridStore
	schema BindingSchema
	format gputypes.TextureFormat

	module     hal.ShaderModule
	bgLayout   hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	vertices   hal.Buffer

	// groups[p] binds OutputFor(p) as the cell state.
	groups [2]hal.BindGroup
}

// NewRenderStage builds the render pipeline for targets of the given format,
// uploads the base quad and creates both parity bind groups.
func NewRenderStage(
	device hal.Device, queue hal.Queue, store *GridStore,
	format gputypes.TextureFormat, spirv bool,
) (*RenderStage, error) {
	if !store.Ready() {
		return nil, ErrStoreNotInitialized
	}
	r := &RenderStage{
		device: device,
		queue:  queue,
		store:  store,
		schema: RenderSchema(),
		format: format,
	}
	if err := r.init(spirv); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *RenderStage) init(spirv bool) error {
	module, err := createShaderModule(r.device, ShaderRender, spirv)
	if err != nil {
		return err
	}
	r.module = module

	r.bgLayout, r.pipeLayout, err = r.schema.createLayouts(r.device)
	if err != nil {
		return err
	}

	r.pipeline, err = r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "life_render",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.module,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     r.module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    r.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create render pipeline: %w", err)
	}

	data := quadVertexBytes()
	r.vertices, err = r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_quad_vertices",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create vertex buffer: %w", err)
	}
	r.queue.WriteBuffer(r.vertices, 0, data)

	for p := range r.groups {
		entries, err := r.schema.Bind(r.buffersFor(uint64(p))...)
		if err != nil {
			return err
		}
		bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("life_render_bg_%d", p),
			Layout:  r.bgLayout,
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("gpu: create render bind group %d: %w", p, err)
		}
		r.groups[p] = bg
	}

	slogger().Debug("gpu: render stage created",
		"format", r.format,
		"instances", r.InstanceCount())
	return nil
}

// quadVertexLayout describes the per-vertex base quad position.
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
			},
		},
	}
}

// quadVertexBytes encodes gglife.QuadVertices as packed vec2<f32>.
func quadVertexBytes() []byte {
	buf := make([]byte, 0, len(gglife.QuadVertices)*quadVertexStride)
	for _, v := range gglife.QuadVertices {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v[0]))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v[1]))
	}
	return buf
}

// buffersFor lists the buffers bound for parity p in schema slot order.
func (r *RenderStage) buffersFor(p uint64) []hal.Buffer {
	return []hal.Buffer{r.store.Uniform(), r.store.OutputFor(p)}
}

// BindGroup returns the bind group used at the given parity.
func (r *RenderStage) BindGroup(parity uint64) hal.BindGroup { return r.groups[parity&1] }

// Format returns the color target format the pipeline was built for.
func (r *RenderStage) Format() gputypes.TextureFormat { return r.format }

// InstanceCount returns the number of cell instances drawn per frame.
func (r *RenderStage) InstanceCount() uint32 {
	return uint32(r.store.Width() * r.store.Height()) //nolint:gosec // sizes validated positive
}

// Encode records one render pass into view: clear to gglife.ClearColor, then
// draw every cell of the generation written at the given parity.
func (r *RenderStage) Encode(encoder hal.CommandEncoder, view hal.TextureView, parity uint64) {
	cc := gglife.ClearColor
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "life_render_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: cc.R, G: cc.G, B: cc.B, A: cc.A},
			},
		},
	})
	rp.SetPipeline(r.pipeline)
	rp.SetBindGroup(0, r.groups[parity&1], nil)
	rp.SetVertexBuffer(0, r.vertices, 0)
	rp.Draw(quadVertexCount, r.InstanceCount(), 0, 0)
	rp.End()
}

// Destroy releases the stage's GPU objects. The store is not touched.
func (r *RenderStage) Destroy() {
	for i, bg := range r.groups {
		if bg != nil {
			r.device.DestroyBindGroup(bg)
			r.groups[i] = nil
		}
	}
	if r.vertices != nil {
		r.device.DestroyBuffer(r.vertices)
		r.vertices = nil
	}
	if r.pipeline != nil {
		r.device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.bgLayout != nil {
		r.device.DestroyBindGroupLayout(r.bgLayout)
		r.bgLayout = nil
	}
	if r.module != nil {
		r.device.DestroyShaderModule(r.module)
		r.module = nil
	}
}
