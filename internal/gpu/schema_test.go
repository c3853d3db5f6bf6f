//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func TestComputeSchema(t *testing.T) {
	s := ComputeSchema()
	if s.Len() != 3 || len(s.Names) != 3 {
		t.Fatalf("compute schema has %d entries, %d names, want 3", s.Len(), len(s.Names))
	}
	want := []gputypes.BufferBindingType{
		gputypes.BufferBindingTypeUniform,
		gputypes.BufferBindingTypeReadOnlyStorage,
		gputypes.BufferBindingTypeStorage,
	}
	for i, e := range s.Entries {
		if e.Binding != uint32(i) {
			t.Errorf("entry %d binding = %d", i, e.Binding)
		}
		if e.Buffer == nil || e.Buffer.Type != want[i] {
			t.Errorf("entry %d (%s) has wrong buffer type", i, s.Names[i])
		}
		if e.Visibility != gputypes.ShaderStageCompute {
			t.Errorf("entry %d visibility = %v, want compute", i, e.Visibility)
		}
	}
}

func TestRenderSchema(t *testing.T) {
	s := RenderSchema()
	if s.Len() != 2 {
		t.Fatalf("render schema has %d entries, want 2", s.Len())
	}
	if s.Entries[0].Buffer.Type != gputypes.BufferBindingTypeUniform {
		t.Error("binding 0 should be the grid uniform")
	}
	if s.Entries[0].Visibility != gputypes.ShaderStageVertex|gputypes.ShaderStageFragment {
		t.Error("grid uniform should be visible to vertex and fragment")
	}
	if s.Entries[1].Buffer.Type != gputypes.BufferBindingTypeReadOnlyStorage {
		t.Error("binding 1 should be read-only storage")
	}
	if s.Entries[1].Visibility != gputypes.ShaderStageVertex {
		t.Error("cell state should be visible to vertex only")
	}
}

func TestSchemasAreIndependentCopies(t *testing.T) {
	a := ComputeSchema()
	a.Entries[0].Binding = 7
	if ComputeSchema().Entries[0].Binding != 0 {
		t.Error("mutating one schema leaked into the next")
	}
}

func TestBindingSchemaBind(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	store := newTestStore(t, device, queue, testGrid(t, 4, 4))

	s := ComputeSchema()
	entries, err := s.Bind(store.Uniform(), store.BufferFor(0), store.OutputFor(0))
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	for i, e := range entries {
		if e.Binding != uint32(i) {
			t.Errorf("entry %d binding = %d", i, e.Binding)
		}
	}

	if _, err := s.Bind(store.Uniform()); !errors.Is(err, ErrBindingMismatch) {
		t.Errorf("short Bind error = %v, want ErrBindingMismatch", err)
	}
	var nilBuf hal.Buffer
	if _, err := s.Bind(store.Uniform(), nilBuf, store.OutputFor(0)); !errors.Is(err, ErrBindingMismatch) {
		t.Errorf("nil buffer Bind error = %v, want ErrBindingMismatch", err)
	}
}
