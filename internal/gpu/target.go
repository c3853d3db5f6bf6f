//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrUnsupportedFormat is returned for render target formats that cannot be
// read back as 8-bit color.
var ErrUnsupportedFormat = errors.New("gpu: unsupported render target format")

// copyPitchAlignment is the required row pitch alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// DefaultTargetFormat is the format of offscreen render targets when the
// host does not dictate one.
const DefaultTargetFormat = gputypes.TextureFormatBGRA8Unorm

// RenderTarget is an offscreen color texture the render stage draws into
// when no window surface is attached. It can be read back to the CPU.
type RenderTarget struct {
	tex    hal.Texture
	view   hal.TextureView
	format gputypes.TextureFormat
	width  uint32
	height uint32
}

// NewRenderTarget creates a width×height offscreen target. Only 8-bit BGRA
// and RGBA formats are supported.
func NewRenderTarget(device hal.Device, width, height uint32, format gputypes.TextureFormat) (*RenderTarget, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("gpu: invalid render target size %dx%d", width, height)
	}
	switch format {
	case gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatRGBA8Unorm:
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "life_target",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create render target: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "life_target_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create render target view: %w", err)
	}
	return &RenderTarget{tex: tex, view: view, format: format, width: width, height: height}, nil
}

// View returns the texture view to render into.
func (t *RenderTarget) View() hal.TextureView { return t.view }

// Format returns the texture format.
func (t *RenderTarget) Format() gputypes.TextureFormat { return t.format }

// Size returns the target dimensions in pixels.
func (t *RenderTarget) Size() (width, height uint32) { return t.width, t.height }

// bytesPerRow returns the padded row pitch of a readback.
func (t *RenderTarget) bytesPerRow() uint32 {
	return (t.width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// readbackSize returns the staging buffer size for a full readback.
func (t *RenderTarget) readbackSize() uint64 {
	return uint64(t.bytesPerRow()) * uint64(t.height)
}

// encodeCopy records a copy of the whole target into staging and restores
// the attachment layout afterwards.
func (t *RenderTarget) encodeCopy(encoder hal.CommandEncoder, staging hal.Buffer) {
	// After the render pass the texture is in attachment layout; the copy
	// needs the transfer-source layout. No-op on non-Vulkan backends.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: t.bytesPerRow(), RowsPerImage: t.height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
}

// Destroy releases the texture and its view.
func (t *RenderTarget) Destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// decode converts a padded readback of the target into an RGBA image.
func (t *RenderTarget) decode(data []byte) *image.RGBA {
	return decodePixels(data, int(t.width), int(t.height), int(t.bytesPerRow()),
		t.format == gputypes.TextureFormatBGRA8Unorm)
}

// decodePixels copies rows out of a padded readback, swapping red and blue
// when bgra is set.
func decodePixels(data []byte, width, height, pitch int, bgra bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		src := data[y*pitch : y*pitch+width*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+width*4]
		if !bgra {
			copy(dst, src)
			continue
		}
		for x := 0; x < width*4; x += 4 {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = src[x+3]
		}
	}
	return img
}
