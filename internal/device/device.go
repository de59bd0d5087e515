package device

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

var (
	// ErrAllocation reports that a resource could not be created within the
	// device limits.
	ErrAllocation = errors.New("device: allocation failed")
	// ErrInvalidPipeline reports a pipeline that cannot be compiled.
	ErrInvalidPipeline = errors.New("device: invalid pipeline")
	// ErrValidation reports a command recorded with mismatched bindings.
	ErrValidation = errors.New("device: validation failed")
	// ErrDeviceLost reports that a previous submission crashed the device.
	ErrDeviceLost = errors.New("device: lost")
	// ErrDestroyed reports use of a device after Destroy.
	ErrDestroyed = errors.New("device: destroyed")
)

// Limits bound the resources a Device will hand out.
type Limits struct {
	MaxBufferElements         int
	MaxBindGroups             int
	MaxWorkgroupInvocations   int
	MaxWorkgroupsPerDimension uint32
}

// DefaultLimits mirrors the conservative limits of common desktop adapters.
func DefaultLimits() Limits {
	return Limits{
		MaxBufferElements:         1 << 28,
		MaxBindGroups:             4,
		MaxWorkgroupInvocations:   1024,
		MaxWorkgroupsPerDimension: 65535,
	}
}

// Options configure a Device.
type Options struct {
	Label             string
	Workers           int
	MaxFramesInFlight int
	Limits            Limits
}

// DefaultOptions returns options sized to the host.
func DefaultOptions() Options {
	return Options{
		Label:             "soft",
		Workers:           runtime.NumCPU(),
		MaxFramesInFlight: 2,
		Limits:            DefaultLimits(),
	}
}

// Device is a software compute device. Resources are created on the host
// thread; their contents are only touched by work executed on the queue.
type Device struct {
	label   string
	workers int
	limits  Limits
	queue   *Queue

	mu        sync.Mutex
	lost      error
	destroyed bool
}

// New creates a device and starts its queue.
func New(opts Options) (*Device, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MaxFramesInFlight <= 0 {
		opts.MaxFramesInFlight = 1
	}
	if opts.Limits == (Limits{}) {
		opts.Limits = DefaultLimits()
	}
	if opts.Limits.MaxBufferElements <= 0 || opts.Limits.MaxWorkgroupInvocations <= 0 {
		return nil, fmt.Errorf("%w: limits %+v", ErrAllocation, opts.Limits)
	}
	d := &Device{label: opts.Label, workers: opts.Workers, limits: opts.Limits}
	d.queue = newQueue(d, opts.MaxFramesInFlight)
	return d, nil
}

// Label names the device in logs.
func (d *Device) Label() string { return d.label }

// Workers reports how many workgroups may execute concurrently.
func (d *Device) Workers() int { return d.workers }

// Limits returns the device limits.
func (d *Device) Limits() Limits { return d.limits }

// Queue returns the device's single submission queue.
func (d *Device) Queue() *Queue { return d.queue }

// Err reports ErrDeviceLost (wrapping the cause) or ErrDestroyed once the
// device can no longer accept work.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDestroyed
	}
	return d.lost
}

func (d *Device) markLost(cause error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost == nil {
		d.lost = fmt.Errorf("%w: %v", ErrDeviceLost, cause)
	}
}

// Destroy drains the queue and releases the device. It is safe to call twice.
func (d *Device) Destroy() {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	d.destroyed = true
	d.mu.Unlock()
	d.queue.close()
}

// CreateCommandEncoder starts recording a command buffer.
func (d *Device) CreateCommandEncoder(label string) *CommandEncoder {
	return &CommandEncoder{dev: d, label: label}
}

// WorkgroupCount returns how many workgroups of the given size cover n
// invocations.
func WorkgroupCount(n int, size uint32) uint32 {
	if n <= 0 || size == 0 {
		return 0
	}
	return uint32((n + int(size) - 1) / int(size))
}
