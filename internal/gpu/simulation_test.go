//go:build !nogpu

package gpu

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/gglife"
)

func TestOpenDeviceUnknownBackend(t *testing.T) {
	_, err := OpenDevice("metal-on-toaster")
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("error = %v, want ErrUnknownBackend", err)
	}
}

func TestOpenDeviceNoop(t *testing.T) {
	dev, err := OpenDevice(BackendNoop)
	if err != nil {
		t.Fatalf("OpenDevice(noop): %v", err)
	}
	if dev.Device == nil || dev.Queue == nil {
		t.Fatal("device or queue is nil")
	}
	if dev.External() {
		t.Error("opened device must be owned")
	}
	if dev.Backend != BackendNoop {
		t.Errorf("Backend = %q, want noop", dev.Backend)
	}
	dev.Close()
	dev.Close()
	if dev.Device != nil {
		t.Error("Close did not release the device")
	}
}

func TestWrapDevice(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := WrapDevice(nil, queue); !errors.Is(err, ErrNoDevice) {
		t.Errorf("WrapDevice(nil) error = %v, want ErrNoDevice", err)
	}
	dev, err := WrapDevice(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	if !dev.External() {
		t.Error("wrapped device must be external")
	}
	// Close must not destroy a borrowed device; cleanup destroys it later.
	dev.Close()
}

func TestNewSimulationRejectsMissingInputs(t *testing.T) {
	if _, err := NewSimulation(nil, Config{}); !errors.Is(err, ErrNoDevice) {
		t.Errorf("nil device error = %v, want ErrNoDevice", err)
	}
	dev, err := OpenDevice(BackendNoop)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSimulation(dev, Config{}); !errors.Is(err, gglife.ErrInvalidSize) {
		t.Errorf("nil seed error = %v, want ErrInvalidSize", err)
	}
}

func TestSimulationTickAdvancesStep(t *testing.T) {
	sim := newNoopSimulation(t, testGrid(t, 16, 16))

	if sim.Step() != 0 {
		t.Fatalf("initial step = %d", sim.Step())
	}
	for i := 1; i <= 3; i++ {
		if err := sim.Tick(); err != nil {
			t.Fatalf("Tick %d: %v", i, err)
		}
		if sim.Step() != uint64(i) {
			t.Errorf("Step() = %d, want %d", sim.Step(), i)
		}
	}
	if w, h := sim.Size(); w != 16 || h != 16 {
		t.Errorf("Size = %dx%d", w, h)
	}
}

func TestSimulationTickToAndDraw(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()
	view, err := NewRenderTarget(device, 32, 32, DefaultTargetFormat)
	if err != nil {
		t.Fatal(err)
	}
	defer view.Destroy(device)

	sim := newNoopSimulation(t, testGrid(t, 8, 8))
	if err := sim.TickTo(view.View()); err != nil {
		t.Fatalf("TickTo: %v", err)
	}
	if err := sim.Draw(view.View()); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if sim.Step() != 1 {
		t.Errorf("Step() = %d, want 1 (Draw must not advance)", sim.Step())
	}
}

func TestSimulationReadback(t *testing.T) {
	sim := newNoopSimulation(t, testGrid(t, 12, 9))
	if err := sim.Tick(); err != nil {
		t.Fatal(err)
	}

	cells, err := sim.ReadCells()
	if err != nil {
		t.Fatalf("ReadCells: %v", err)
	}
	if len(cells) != 12*9 {
		t.Errorf("ReadCells returned %d cells, want %d", len(cells), 12*9)
	}

	g, err := sim.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if g.Width() != 12 || g.Height() != 9 {
		t.Errorf("Current size = %dx%d", g.Width(), g.Height())
	}

	img, err := sim.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("frame bounds = %v, want 64x64", b)
	}
}

func TestSimulationClosed(t *testing.T) {
	sim := newNoopSimulation(t, testGrid(t, 4, 4))
	if err := sim.Close(); err != nil {
		t.Fatal(err)
	}
	if err := sim.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}

	if err := sim.Tick(); !errors.Is(err, ErrClosed) {
		t.Errorf("Tick = %v, want ErrClosed", err)
	}
	if err := sim.TickTo(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("TickTo = %v, want ErrClosed", err)
	}
	if err := sim.Draw(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Draw = %v, want ErrClosed", err)
	}
	if _, err := sim.ReadCells(); !errors.Is(err, ErrClosed) {
		t.Errorf("ReadCells = %v, want ErrClosed", err)
	}
	if _, err := sim.ReadFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("ReadFrame = %v, want ErrClosed", err)
	}
	if err := sim.Run(context.Background(), time.Millisecond); !errors.Is(err, ErrClosed) {
		t.Errorf("Run = %v, want ErrClosed", err)
	}
}

func TestSimulationRunStopsOnCancel(t *testing.T) {
	sim := newNoopSimulation(t, testGrid(t, 8, 8))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx, time.Millisecond) }()

	deadline := time.After(5 * time.Second)
	for sim.Step() < 3 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("run loop did not tick")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run = %v, want nil after cancel", err)
	}
}

func TestSimulationRunRejectsBadInterval(t *testing.T) {
	sim := newNoopSimulation(t, testGrid(t, 4, 4))
	if err := sim.Run(context.Background(), 0); !errors.Is(err, gglife.ErrInvalidConfig) {
		t.Errorf("Run(0) = %v, want ErrInvalidConfig", err)
	}
}

// TestSimulationRunHaltsOnTickFailure checks that a failed submission stops
// the loop and surfaces the error without advancing the step.
func TestSimulationRunHaltsOnTickFailure(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	flaky := &flakyDevice{Device: device}
	flaky.goodFences.Store(2)
	dev, err := WrapDevice(flaky, queue)
	if err != nil {
		t.Fatal(err)
	}
	sim, err := NewSimulation(dev, Config{Seed: testGrid(t, 8, 8), TargetWidth: 16, TargetHeight: 16})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	defer sim.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = sim.Run(ctx, time.Millisecond)
	if !errors.Is(err, errInjected) {
		t.Fatalf("Run = %v, want injected failure", err)
	}
	if sim.Step() != 2 {
		t.Errorf("Step() = %d, want 2 (failed tick must not advance)", sim.Step())
	}
}

func TestTickBarrierBetweenComputeAndRender(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	rec := &recordingDevice{Device: device}
	dev, err := WrapDevice(rec, queue)
	if err != nil {
		t.Fatal(err)
	}
	sim, err := NewSimulation(dev, Config{Seed: testGrid(t, 8, 8), TargetWidth: 16, TargetHeight: 16})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	defer func() { _ = sim.Close() }()

	for step := uint64(0); step < 2; step++ {
		rec.reset()
		written := sim.store.OutputFor(step)
		if err := sim.Tick(); err != nil {
			t.Fatalf("Tick %d: %v", step, err)
		}
		if got := strings.Join(rec.calls, ","); got != "compute,barrier,render" {
			t.Fatalf("tick %d recorded %q, want compute,barrier,render", step, got)
		}
		if rec.barriers[0] != written {
			t.Errorf("tick %d: barrier does not cover OutputFor(%d)", step, step)
		}
	}

	rec.reset()
	if err := sim.Draw(sim.target.View()); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got := strings.Join(rec.calls, ","); got != "render" {
		t.Errorf("Draw recorded %q, want render", got)
	}
}

func TestReadFrameBeforeTick(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()
	view, err := NewRenderTarget(device, 32, 32, DefaultTargetFormat)
	if err != nil {
		t.Fatal(err)
	}
	defer view.Destroy(device)

	sim := newNoopSimulation(t, testGrid(t, 8, 8))
	if _, err := sim.ReadFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("ReadFrame before any tick = %v, want ErrNoFrame", err)
	}

	// TickTo renders elsewhere; the offscreen target is still empty.
	if err := sim.TickTo(view.View()); err != nil {
		t.Fatalf("TickTo: %v", err)
	}
	if _, err := sim.ReadFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("ReadFrame after TickTo = %v, want ErrNoFrame", err)
	}

	if err := sim.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if _, err := sim.ReadFrame(); err != nil {
		t.Errorf("ReadFrame after Tick = %v", err)
	}
}
