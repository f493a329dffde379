package updater

import "github.com/vellumdb/vellum/internal/schema"

// StorageHooks receives notifications after a DDL batch commits. The schema
// engine issues intents only; persisting rows and index entries is the
// storage engine's concern. Hooks run outside the validation path, after
// the new schema version is already visible to readers.
type StorageHooks interface {
	OnTableCreated(*schema.Table)
	OnTableAltered(*schema.Table)
	OnTableDropped(*schema.Table)
	OnIndexCreated(*schema.Index)
	OnIndexDropped(*schema.Index)
}

// NopHooks is a StorageHooks that does nothing.
type NopHooks struct{}

func (NopHooks) OnTableCreated(*schema.Table) {}
func (NopHooks) OnTableAltered(*schema.Table) {}
func (NopHooks) OnTableDropped(*schema.Table) {}
func (NopHooks) OnIndexCreated(*schema.Index) {}
func (NopHooks) OnIndexDropped(*schema.Index) {}

type eventKind int

const (
	eventTableCreated eventKind = iota
	eventTableAltered
	eventTableDropped
	eventIndexCreated
	eventIndexDropped
)

// hookEvent is one pending storage notification, captured while a batch is
// applied and delivered only if the batch commits.
type hookEvent struct {
	kind  eventKind
	table *schema.Table
	index *schema.Index
}

func (e hookEvent) deliver(h StorageHooks) {
	switch e.kind {
	case eventTableCreated:
		h.OnTableCreated(e.table)
	case eventTableAltered:
		h.OnTableAltered(e.table)
	case eventTableDropped:
		h.OnTableDropped(e.table)
	case eventIndexCreated:
		h.OnIndexCreated(e.index)
	case eventIndexDropped:
		h.OnIndexDropped(e.index)
	}
}
