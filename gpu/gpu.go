//go:build !nogpu

// Package gpu runs a gglife grid on the GPU.
//
// A Simulation keeps the grid in two GPU storage buffers that swap roles every
// tick: a compute pass reads one and writes the other, then a render pass draws
// the buffer just written. Nothing is copied between ticks.
//
// Standalone use opens its own device:
//
//	sim, err := gpu.New(gglife.NewConfig(gglife.WithSize(128, 128)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sim.Close()
//	err = sim.Run(ctx, 20*time.Millisecond)
//
// A windowing host shares its device through NewWithProvider and renders
// into its swapchain with TickTo.
package gpu

import (
	"fmt"

	"github.com/gogpu/gglife"
	gpuimpl "github.com/gogpu/gglife/internal/gpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// Simulation is a grid running on the GPU. See the internal/gpu
// documentation of its methods: Tick, TickTo, Draw, Run, ReadCells,
// Current, ReadFrame, Step and Close.
type Simulation = gpuimpl.Simulation

// Errors returned by New, NewWithProvider and Simulation methods.
var (
	ErrNoBackend = gpuimpl.ErrNoBackend
	ErrNoDevice  = gpuimpl.ErrNoDevice
	ErrClosed    = gpuimpl.ErrClosed
	ErrNoFrame   = gpuimpl.ErrNoFrame
)

type options struct {
	targetWidth  uint32
	targetHeight uint32
}

// Option configures New and NewWithProvider.
type Option func(*options)

// WithTargetSize sets the size in pixels of the offscreen frame that Tick
// renders into and ReadFrame returns.
func WithTargetSize(width, height uint32) Option {
	return func(o *options) {
		o.targetWidth = width
		o.targetHeight = height
	}
}

// New opens the backend named by cfg.Backend and starts a simulation seeded
// with cfg.InitialGrid. On the Vulkan and software backends the shaders are
// precompiled to SPIR-V.
func New(cfg gglife.Config, opts ...Option) (*Simulation, error) {
	seed, err := cfg.InitialGrid()
	if err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	dev, err := gpuimpl.OpenDevice(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return gpuimpl.NewSimulation(dev, gpuimpl.Config{
		Seed:         seed,
		TargetWidth:  o.targetWidth,
		TargetHeight: o.targetHeight,
		SPIRV:        dev.Backend == gpuimpl.BackendVulkan || dev.Backend == gpuimpl.BackendSoftware,
	})
}

// NewWithProvider starts a simulation on a device owned by a host such as a
// gogpu window. The provider must also expose HalDevice() and HalQueue()
// returning hal.Device and hal.Queue. The simulation renders in the
// provider's surface format and never destroys the shared device.
func NewWithProvider(provider gpucontext.DeviceProvider, cfg gglife.Config, opts ...Option) (*Simulation, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: nil provider", ErrNoDevice)
	}
	seed, err := cfg.InitialGrid()
	if err != nil {
		return nil, err
	}
	device, queue, err := halFromProvider(provider)
	if err != nil {
		return nil, err
	}
	dev, err := gpuimpl.WrapDevice(device, queue)
	if err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	return gpuimpl.NewSimulation(dev, gpuimpl.Config{
		Seed:         seed,
		Format:       provider.SurfaceFormat(),
		TargetWidth:  o.targetWidth,
		TargetHeight: o.targetHeight,
	})
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// halFromProvider extracts HAL handles from a provider.
func halFromProvider(provider any) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("%w: provider does not expose HAL types", ErrNoDevice)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrNoDevice)
	}
	return device, queue, nil
}
