package edit

import (
	"errors"
	"fmt"

	"automata/internal/core"
	"automata/internal/device"
)

// DefaultCapacity is the number of edit slots per frame.
const DefaultCapacity = 100

// ErrCapacityExceeded reports a batch larger than the queue.
var ErrCapacityExceeded = errors.New("edit: batch exceeds queue capacity")

const brushWorkgroup = 8

// entries, then the entry count
var brushLayout = core.GridLayout("edit_brush", device.KindInt32, device.KindInt32)

// Queue stages a bounded batch of edits in a device buffer and rasterises
// them onto the grid in a compute pass that runs before the simulation step.
type Queue struct {
	dev      *device.Device
	capacity int
	entries  *device.Buffer[int32]
	meta     *device.Buffer[int32]
	pipeline *device.ComputePipeline
	pending  int
	flushed  int
	groups   core.ParityGroups
}

// NewQueue allocates capacity slots, all holding Sentinel.
func NewQueue(dev *device.Device, capacity int) (*Queue, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", device.ErrValidation, capacity)
	}
	entries, err := device.CreateBuffer[int32](dev, device.BufferDescriptor{Label: "edit_entries", Len: capacity * entryWords})
	if err != nil {
		return nil, fmt.Errorf("edit queue: %w", err)
	}
	meta, err := device.CreateBuffer[int32](dev, device.BufferDescriptor{Label: "edit_meta", Len: 1})
	if err != nil {
		return nil, fmt.Errorf("edit queue: %w", err)
	}
	pipeline, err := dev.CreateComputePipeline(device.ComputePipelineDescriptor{
		Label:         "edit_brush",
		Layouts:       []*device.BindGroupLayout{brushLayout},
		WorkgroupSize: [3]uint32{brushWorkgroup, brushWorkgroup, 1},
		Shader:        brushShader,
	})
	if err != nil {
		return nil, fmt.Errorf("edit queue: %w", err)
	}
	q := &Queue{dev: dev, capacity: capacity, entries: entries, meta: meta, pipeline: pipeline}
	if err := q.EnqueueBatch(nil); err != nil {
		return nil, err
	}
	return q, nil
}

// Capacity returns the number of slots.
func (q *Queue) Capacity() int { return q.capacity }

// Pending returns the number of entries waiting for the next Flush.
func (q *Queue) Pending() int { return q.pending }

// Entries returns the device buffer backing the slots.
func (q *Queue) Entries() *device.Buffer[int32] { return q.entries }

// EnqueueBatch replaces the queue contents with entries and pads the rest
// with Sentinel. A batch larger than the capacity is rejected whole.
func (q *Queue) EnqueueBatch(entries []Entry) error {
	if len(entries) > q.capacity {
		return fmt.Errorf("%w: %d entries, capacity %d", ErrCapacityExceeded, len(entries), q.capacity)
	}
	host := make([]int32, q.capacity*entryWords)
	for i := 0; i < q.capacity; i++ {
		e := Sentinel
		if i < len(entries) {
			e = entries[i]
		}
		w := e.words()
		copy(host[i*entryWords:], w[:])
	}
	if err := device.WriteBuffer(q.dev.Queue(), q.entries, 0, host); err != nil {
		return err
	}
	if err := device.WriteBuffer(q.dev.Queue(), q.meta, 0, []int32{int32(len(entries))}); err != nil {
		return err
	}
	q.pending = len(entries)
	q.flushed = 0
	return nil
}

func (q *Queue) bind(store *core.GridStore) error {
	if q.groups.Bound(store) {
		return nil
	}
	groups, err := core.BindParity(q.dev, store, "edit_brush", brushLayout, q.entries, q.meta)
	if err != nil {
		return err
	}
	q.groups = groups
	return nil
}

// Flush records the edits onto store.Other(), using store.Current() as the
// base, and clears the pending count. With nothing pending it records
// nothing and returns false. The caller swaps the store afterwards.
func (q *Queue) Flush(enc *device.CommandEncoder, store *core.GridStore) bool {
	if q.pending == 0 {
		return false
	}
	if err := q.bind(store); err != nil {
		enc.SetError(err)
		return false
	}
	size := store.Size()
	device.CopyBufferToBuffer(enc, store.Current(), store.Other())
	pass := enc.BeginComputePass("edit_flush")
	pass.SetPipeline(q.pipeline)
	pass.SetBindGroup(0, q.groups.Select(enc, store))
	pass.DispatchWorkgroups(device.WorkgroupCount(size.W, brushWorkgroup), device.WorkgroupCount(size.H, brushWorkgroup), 1)
	pass.End()
	q.flushed, q.pending = q.pending, 0
	return true
}

// Requeue marks the last flushed batch pending again. It is used when the
// command buffer holding the flush was never submitted; the slots still
// hold the batch, so nothing is rewritten. A batch enqueued since then
// takes precedence.
func (q *Queue) Requeue() {
	if q.pending == 0 {
		q.pending = q.flushed
	}
	q.flushed = 0
}

func brushShader(groups []*device.BindGroup) device.Invoke {
	cur := groups[0].Float32(0)
	other := groups[0].Float32(1)
	dims := groups[0].Int32(2)
	words := groups[0].Int32(3)
	count := int(groups[0].Int32(4)[0])
	w, h := dims[0], dims[1]

	count = min(count, len(words)/entryWords)
	active := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		if e := entryFrom(words[i*entryWords:]); !e.Noop() {
			active = append(active, e)
		}
	}
	return func(id device.GlobalID) {
		x, y := int32(id.X), int32(id.Y)
		if x >= w || y >= h {
			return
		}
		i := int(y)*int(w) + int(x)
		v := cur[i]
		for _, e := range active {
			v = e.Apply(v, x, y)
		}
		other[i] = v
	}
}
