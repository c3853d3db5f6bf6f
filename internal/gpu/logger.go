//go:build !nogpu

package gpu

import (
	"log/slog"

	"github.com/gogpu/gglife"
)

// slogger returns the current package logger.
// All logging in internal/gpu goes through this function so that
// gglife.SetLogger reaches the GPU code without extra wiring.
func slogger() *slog.Logger { return gglife.Logger() }
