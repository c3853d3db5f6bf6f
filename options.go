package gglife

import (
	"errors"
	"fmt"
	"time"
)

// Defaults used by DefaultConfig.
const (
	DefaultGridSize         = 64
	DefaultAliveProbability = 0.4
	DefaultInterval         = 20 * time.Millisecond
	DefaultBackend          = "vulkan"
)

// MaxGridSize bounds each grid axis. A 4096×4096 cell buffer is 64 MiB,
// under the default 128 MiB storage binding limit.
const MaxGridSize = 4096

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("gglife: invalid config")

// Config describes one simulation instance. The grid dimensions are fixed
// for its lifetime.
type Config struct {
	// Width and Height are the grid dimensions in cells.
	Width, Height int

	// AliveProbability is the chance that each cell starts alive when no
	// Pattern is given.
	AliveProbability float64

	// Seed seeds the initial random fill. Zero selects a time-based seed.
	Seed uint64

	// Interval is the fixed tick period of the run loop.
	Interval time.Duration

	// Backend names the GPU backend: "vulkan", "software" or "noop".
	Backend string

	// Pattern, if set, replaces the random fill. It is stamped centered on
	// an otherwise dead grid.
	Pattern *Grid
}

// Option configures a Config.
//
// Example:
//
//	cfg := gglife.NewConfig(
//	    gglife.WithSize(128, 128),
//	    gglife.WithSeed(42),
//	)
type Option func(*Config)

// DefaultConfig returns a 64×64 grid, 40% alive, ticking every 20ms on the
// Vulkan backend.
func DefaultConfig() Config {
	return Config{
		Width:            DefaultGridSize,
		Height:           DefaultGridSize,
		AliveProbability: DefaultAliveProbability,
		Interval:         DefaultInterval,
		Backend:          DefaultBackend,
	}
}

// NewConfig returns DefaultConfig with opts applied.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithSize sets the grid dimensions.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithAliveProbability sets the initial fill probability.
func WithAliveProbability(p float64) Option {
	return func(c *Config) {
		c.AliveProbability = p
	}
}

// WithSeed sets the seed of the initial fill.
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// WithBackend selects the GPU backend by name.
func WithBackend(name string) Option {
	return func(c *Config) {
		c.Backend = name
	}
}

// WithPattern replaces the random fill with p.
func WithPattern(p *Grid) Option {
	return func(c *Config) {
		c.Pattern = p
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: grid size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.Width > MaxGridSize || c.Height > MaxGridSize:
		return fmt.Errorf("%w: grid size %dx%d exceeds %d per axis", ErrInvalidConfig, c.Width, c.Height, MaxGridSize)
	case c.AliveProbability < 0 || c.AliveProbability > 1:
		return fmt.Errorf("%w: alive probability %v outside [0, 1]", ErrInvalidConfig, c.AliveProbability)
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval %v", ErrInvalidConfig, c.Interval)
	case c.Pattern != nil && (c.Pattern.width > c.Width || c.Pattern.height > c.Height):
		return fmt.Errorf("%w: pattern %dx%d larger than grid %dx%d",
			ErrInvalidConfig, c.Pattern.width, c.Pattern.height, c.Width, c.Height)
	}
	return nil
}

// InitialGrid builds the generation-zero grid described by c.
func (c Config) InitialGrid() (*Grid, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	g, err := NewGrid(c.Width, c.Height)
	if err != nil {
		return nil, err
	}
	if c.Pattern != nil {
		g.Stamp(c.Pattern, (c.Width-c.Pattern.width)/2, (c.Height-c.Pattern.height)/2)
		return g, nil
	}
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // seed only
	}
	Randomize(g, c.AliveProbability, seed)
	return g, nil
}
