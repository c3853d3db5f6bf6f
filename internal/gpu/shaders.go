//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/life_compute.wgsl
var lifeComputeSource string

//go:embed shaders/life_render.wgsl
var lifeRenderSource string

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// ErrInvalidSPIRV is returned when the shader compiler produces output that
// is not a SPIR-V module.
var ErrInvalidSPIRV = errors.New("gpu: invalid SPIR-V output")

// Shader identifies one of the embedded WGSL programs.
type Shader int

const (
	// ShaderCompute is the cellular automaton step (entry point "main").
	ShaderCompute Shader = iota
	// ShaderRender draws one instanced quad per cell (vs_main, fs_main).
	ShaderRender

	shaderCount
)

// String returns the shader name used in labels and logs.
func (s Shader) String() string {
	switch s {
	case ShaderCompute:
		return "life_compute"
	case ShaderRender:
		return "life_render"
	default:
		return fmt.Sprintf("Shader(%d)", int(s))
	}
}

// Source returns the embedded WGSL source.
func (s Shader) Source() string {
	switch s {
	case ShaderCompute:
		return lifeComputeSource
	case ShaderRender:
		return lifeRenderSource
	default:
		return ""
	}
}

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSPIRV, len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("%w: magic 0x%08X", ErrInvalidSPIRV, words[0])
	}
	return words, nil
}

// shaderSource returns the module source for s. When spirv is set the WGSL
// is precompiled with naga; a compile failure is logged and the WGSL is
// handed to the driver instead.
func shaderSource(s Shader, spirv bool) hal.ShaderSource {
	src := s.Source()
	if !spirv {
		return hal.ShaderSource{WGSL: src}
	}
	words, err := CompileSPIRV(src)
	if err != nil {
		slogger().Warn("gpu: shader precompile failed, using WGSL",
			"shader", s.String(), "error", err)
		return hal.ShaderSource{WGSL: src}
	}
	slogger().Debug("gpu: shader precompiled",
		"shader", s.String(), "spirv_words", len(words))
	return hal.ShaderSource{SPIRV: words}
}

// createShaderModule compiles s into a module on device.
func createShaderModule(device hal.Device, s Shader, spirv bool) (hal.ShaderModule, error) {
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  s.String(),
		Source: shaderSource(s, spirv),
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module %s: %w", s, err)
	}
	return module, nil
}
