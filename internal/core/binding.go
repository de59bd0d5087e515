package core

import (
	"fmt"

	"automata/internal/device"
)

// ParityGroups holds one bind group per store parity. Group p binds
// Buffer(p) as the read side and Buffer(1-p) as the write side, so a pass
// selects its group with store.Parity() and never rebinds per frame.
type ParityGroups struct {
	store  *GridStore
	epoch  uint64
	groups [2]*device.BindGroup
}

// BindParity builds both parity groups for layout. The first three layout
// entries are the current grid, the other grid and the dims buffer; extra
// resources follow in order.
func BindParity(dev *device.Device, store *GridStore, label string, layout *device.BindGroupLayout, extra ...device.Resource) (ParityGroups, error) {
	var pg ParityGroups
	for p := 0; p < 2; p++ {
		res := append([]device.Resource{store.Buffer(p), store.Buffer(1 - p), store.Dims()}, extra...)
		g, err := dev.CreateBindGroup(fmt.Sprintf("%s_%d", label, p), layout, res...)
		if err != nil {
			return ParityGroups{}, err
		}
		pg.groups[p] = g
	}
	pg.store, pg.epoch = store, store.Epoch()
	return pg, nil
}

// Bound reports whether the groups still reference store's buffers.
func (pg *ParityGroups) Bound(store *GridStore) bool {
	return pg.store != nil && pg.store == store && pg.epoch == store.Epoch()
}

// Select returns the group for the store's current parity. A stale or
// missing binding fails the encoder with ErrStaleBinding and returns nil.
func (pg *ParityGroups) Select(enc *device.CommandEncoder, store *GridStore) *device.BindGroup {
	if !pg.Bound(store) {
		enc.SetError(ErrStaleBinding)
		return nil
	}
	return pg.groups[store.Parity()]
}

// GridLayout returns a layout for passes that read the current grid, write
// the other grid and bind the dims buffer, followed by extra entries.
func GridLayout(label string, extra ...device.Kind) *device.BindGroupLayout {
	entries := append([]device.Kind{device.KindFloat32, device.KindFloat32, device.KindInt32}, extra...)
	return &device.BindGroupLayout{Label: label, Entries: entries}
}
