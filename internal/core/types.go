package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"automata/internal/device"
)

// ErrUnknownKernel reports a kernel id or name with no registered factory.
var ErrUnknownKernel = errors.New("core: unknown kernel")

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// KernelID names an automaton rule.
type KernelID uint8

const (
	GameOfLife KernelID = iota
	SmoothLife
	BriansBrain
	Elementary
)

var kernelNames = map[KernelID]string{
	GameOfLife:  "life",
	SmoothLife:  "smoothlife",
	BriansBrain: "briansbrain",
	Elementary:  "elementary",
}

func (id KernelID) String() string {
	if name, ok := kernelNames[id]; ok {
		return name
	}
	return fmt.Sprintf("kernel(%d)", uint8(id))
}

// ParseKernelID maps a kernel name to its id.
func ParseKernelID(name string) (KernelID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for id, n := range kernelNames {
		if n == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKernel, name)
}

// Kernel is a pluggable automaton rule compiled for a device. A kernel is a
// pure function of the current grid and its fixed parameters.
type Kernel interface {
	ID() KernelID
	Name() string
	// Bind compiles the kernel's pipelines and builds bind groups for both
	// parities of store. It must be called again after store.Recreate.
	Bind(dev *device.Device, store *GridStore) error
	// Encode records one generation reading store.Current() and writing
	// every cell of store.Other().
	Encode(enc *device.CommandEncoder, store *GridStore)
}

// Factory constructs a Kernel using an optional configuration map.
type Factory func(cfg map[string]string) Kernel

var kernels = map[KernelID]Factory{}

// Register adds a kernel factory under the provided id.
func Register(id KernelID, f Factory) {
	if f == nil {
		return
	}
	kernels[id] = f
}

// Kernels lists the registered kernel ids in order.
func Kernels() []KernelID {
	ids := make([]KernelID, 0, len(kernels))
	for id := range kernels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NewKernel builds the kernel registered under id.
func NewKernel(id KernelID, cfg map[string]string) (Kernel, error) {
	f, ok := kernels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKernel, id)
	}
	return f(cfg), nil
}
