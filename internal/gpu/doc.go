//go:build !nogpu

// Package gpu implements the GPU side of gglife on top of gogpu/wgpu's HAL.
//
// This is an internal package; the public entry points live in the
// top-level gpu package. It runs on any HAL backend: Vulkan for standalone
// use, a host-provided device when embedded in a window, and the noop
// backend for headless tests.
//
// # Architecture Overview
//
// One tick is a single command buffer with two passes:
//
//	GridStore.BufferFor(p) -> SimulationStage (compute) -> GridStore.OutputFor(p)
//	GridStore.OutputFor(p) -> RenderStage (render)      -> target view
//
// where p is the step parity. The two cell buffers swap roles every tick, so
// the generation written at step s is the input of step s+1 without a copy.
// Submission order makes the compute writes visible to the render pass.
//
// Key components:
//
//   - Device: HAL device and queue, opened standalone or wrapped from a host
//   - GridStore: grid-size uniform and the two cell-state storage buffers
//   - BindingSchema: explicit binding tables of both shaders
//   - SimulationStage: compute pipeline, 8x8 workgroups, one bind group per parity
//   - RenderStage: instanced quad pipeline, one bind group per parity
//   - RenderTarget: offscreen color texture with CPU readback
//   - Simulation: owns all of the above plus the step counter
//
// # Shaders
//
// The WGSL sources are embedded from shaders/. On Vulkan they are
// precompiled to SPIR-V with naga; other backends receive WGSL.
//
// # Thread Safety
//
// Simulation methods are serialized by a mutex. Stages and the store are
// not safe for concurrent use on their own.
package gpu
