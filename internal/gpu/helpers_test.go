//go:build !nogpu

package gpu

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gglife"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// newTestStore creates an initialized store holding g.
func newTestStore(t *testing.T, device hal.Device, queue hal.Queue, g *gglife.Grid) *GridStore {
	t.Helper()
	store, err := NewGridStore(device, queue, g.Width(), g.Height())
	if err != nil {
		t.Fatalf("NewGridStore: %v", err)
	}
	if err := store.Init(g.Cells()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(store.Destroy)
	return store
}

// mustTestGrid returns an all-dead w×h grid.
func mustTestGrid(t *testing.T, w, h int) *gglife.Grid {
	t.Helper()
	g, err := gglife.NewGrid(w, h)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

// testGrid returns a w×h grid holding a horizontal blinker near the origin.
func testGrid(t *testing.T, w, h int) *gglife.Grid {
	t.Helper()
	g, err := gglife.NewGrid(w, h)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	g.Set(0, 1, true)
	g.Set(1, 1, true)
	g.Set(2, 1, true)
	return g
}

// newNoopSimulation opens an owned noop device and starts a simulation.
func newNoopSimulation(t *testing.T, g *gglife.Grid) *Simulation {
	t.Helper()
	dev, err := OpenDevice(BackendNoop)
	if err != nil {
		t.Fatalf("OpenDevice(noop): %v", err)
	}
	sim, err := NewSimulation(dev, Config{Seed: g, TargetWidth: 64, TargetHeight: 64})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	t.Cleanup(func() { _ = sim.Close() })
	return sim
}

var errInjected = errors.New("injected fence failure")

// flakyDevice fails CreateFence once the allowance of good fences is used
// up. Everything else goes to the wrapped device.
type flakyDevice struct {
	hal.Device
	goodFences atomic.Int64
}

func (d *flakyDevice) CreateFence() (hal.Fence, error) {
	if d.goodFences.Add(-1) < 0 {
		return nil, errInjected
	}
	return d.Device.CreateFence()
}

// recordingDevice hands out encoders that log the order of passes and
// buffer barriers. Everything else goes to the wrapped device.
type recordingDevice struct {
	hal.Device
	calls    []string
	barriers []hal.Buffer
}

func (d *recordingDevice) reset() {
	d.calls = nil
	d.barriers = nil
}

func (d *recordingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordingEncoder{CommandEncoder: enc, dev: d}, nil
}

type recordingEncoder struct {
	hal.CommandEncoder
	dev *recordingDevice
}

func (e *recordingEncoder) BeginComputePass(desc *hal.ComputePassDescriptor) hal.ComputePassEncoder {
	e.dev.calls = append(e.dev.calls, "compute")
	return e.CommandEncoder.BeginComputePass(desc)
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.dev.calls = append(e.dev.calls, "render")
	return e.CommandEncoder.BeginRenderPass(desc)
}

func (e *recordingEncoder) TransitionBuffers(barriers []hal.BufferBarrier) {
	for _, b := range barriers {
		e.dev.calls = append(e.dev.calls, "barrier")
		e.dev.barriers = append(e.dev.barriers, b.Buffer)
	}
	e.CommandEncoder.TransitionBuffers(barriers)
}
