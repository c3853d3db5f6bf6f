package gglife

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Width != 64 || cfg.Height != 64 {
		t.Errorf("size = %dx%d, want 64x64", cfg.Width, cfg.Height)
	}
	if cfg.AliveProbability != 0.4 {
		t.Errorf("AliveProbability = %v, want 0.4", cfg.AliveProbability)
	}
	if cfg.Interval != 20*time.Millisecond {
		t.Errorf("Interval = %v, want 20ms", cfg.Interval)
	}
	if cfg.Backend != "vulkan" {
		t.Errorf("Backend = %q, want vulkan", cfg.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestNewConfigOptions(t *testing.T) {
	p := mustGrid(t, 2, 2)
	cfg := NewConfig(
		WithSize(32, 16),
		WithAliveProbability(0.25),
		WithSeed(9),
		WithInterval(time.Second),
		WithBackend("noop"),
		WithPattern(p),
	)
	if cfg.Width != 32 || cfg.Height != 16 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.AliveProbability != 0.25 || cfg.Seed != 9 || cfg.Interval != time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Backend != "noop" || cfg.Pattern != p {
		t.Errorf("unexpected backend/pattern %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	big := mustGrid(t, 10, 10)
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero width", WithSize(0, 8)},
		{"negative height", WithSize(8, -1)},
		{"width above max", WithSize(MaxGridSize+1, 8)},
		{"height above max", WithSize(8, MaxGridSize+1)},
		{"probability below zero", WithAliveProbability(-0.1)},
		{"probability above one", WithAliveProbability(1.5)},
		{"zero interval", WithInterval(0)},
		{"pattern too large", func(c *Config) { c.Width, c.Height, c.Pattern = 8, 8, big }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opt).Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestInitialGridSeeded(t *testing.T) {
	cfg := NewConfig(WithSize(32, 32), WithSeed(42))
	a, err := cfg.InitialGrid()
	if err != nil {
		t.Fatal(err)
	}
	b, err := cfg.InitialGrid()
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Error("same seed should produce the same grid")
	}
}

func TestInitialGridProbabilityBounds(t *testing.T) {
	empty, err := NewConfig(WithAliveProbability(0), WithSeed(1)).InitialGrid()
	if err != nil {
		t.Fatal(err)
	}
	if empty.Population() != 0 {
		t.Errorf("p=0 population = %d, want 0", empty.Population())
	}
	full, err := NewConfig(WithAliveProbability(1), WithSeed(1)).InitialGrid()
	if err != nil {
		t.Fatal(err)
	}
	if full.Population() != full.Len() {
		t.Errorf("p=1 population = %d, want %d", full.Population(), full.Len())
	}
}

func TestInitialGridPatternCentered(t *testing.T) {
	p, err := ParsePattern("O")
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewConfig(WithSize(5, 5), WithPattern(p)).InitialGrid()
	if err != nil {
		t.Fatal(err)
	}
	if g.Population() != 1 || g.At(2, 2) != Alive {
		t.Errorf("pattern not centered:\n%s", g)
	}
}
