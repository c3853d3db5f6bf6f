//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/gogpu/wgpu/hal/software"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Backend names accepted by OpenDevice.
const (
	BackendVulkan   = "vulkan"
	BackendSoftware = "software"
	BackendNoop     = "noop"
)

// Startup errors.
var (
	// ErrNoBackend is returned when no graphics backend can be initialized.
	ErrNoBackend = errors.New("gpu: no compatible graphics backend available")

	// ErrNoDevice is returned when a backend exposes no adapter that can
	// be opened.
	ErrNoDevice = errors.New("gpu: no usable device found")

	// ErrUnknownBackend is returned for a backend name OpenDevice does not know.
	ErrUnknownBackend = errors.New("gpu: unknown backend")
)

// Device is an opened HAL device together with its queue.
//
// A Device opened by OpenDevice owns its instance and destroys it on Close.
// A Device built with WrapDevice borrows handles from a host and never
// destroys them.
type Device struct {
	Device hal.Device
	Queue  hal.Queue

	// AdapterName is the name reported by the selected adapter, if known.
	AdapterName string

	// Backend is the backend name the device was opened with, or "external".
	Backend string

	instance hal.Instance
	external bool
}

// OpenDevice creates an instance for the named backend and opens the first
// discrete or integrated adapter, falling back to the first adapter.
// An empty name selects Vulkan.
func OpenDevice(backendName string) (*Device, error) {
	var (
		instance hal.Instance
		err      error
	)
	switch backendName {
	case "", BackendVulkan:
		backendName = BackendVulkan
		backend, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, fmt.Errorf("%w: vulkan not registered", ErrNoBackend)
		}
		instance, err = backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	case BackendSoftware:
		api := software.API{}
		instance, err = api.CreateInstance(nil)
	case BackendNoop:
		api := noop.API{}
		instance, err = api.CreateInstance(nil)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backendName)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoBackend, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters", ErrNoDevice)
	}

	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}

	slogger().Info("gpu: device opened",
		"backend", backendName,
		"adapter", selected.Info.Name)

	return &Device{
		Device:      openDev.Device,
		Queue:       openDev.Queue,
		AdapterName: selected.Info.Name,
		Backend:     backendName,
		instance:    instance,
	}, nil
}

// WrapDevice wraps a device and queue owned by someone else, such as a
// windowing host. Close on the result releases nothing.
func WrapDevice(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil device or queue", ErrNoDevice)
	}
	return &Device{Device: device, Queue: queue, Backend: "external", external: true}, nil
}

// External reports whether the device is borrowed from a host.
func (d *Device) External() bool { return d.external }

// Close destroys the device and instance if this Device owns them.
func (d *Device) Close() {
	if d.external {
		d.Device = nil
		d.Queue = nil
		return
	}
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.Queue = nil
}
