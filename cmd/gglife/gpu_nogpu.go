//go:build nogpu

package main

import (
	"context"
	"errors"
	"time"

	"github.com/gogpu/gglife"
)

// runGPU is unavailable in builds tagged nogpu.
func runGPU(context.Context, gglife.Config, int, time.Duration, int, int) (*gglife.Pixmap, uint64, error) {
	return nil, 0, errors.New("gglife: built with nogpu; use -cpu")
}
