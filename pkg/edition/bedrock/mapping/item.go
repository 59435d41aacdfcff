package mapping

import (
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Item translates an item stack. If toOlder is true the stack is in canonical
// id space and is translated to the legacy protocol, otherwise the reverse.
//
// Stacks on the wire carry no identifier, so the first mapping entry in file
// order whose target (toOlder) or source runtime id matches the stack is
// applied. Stacks without a matching entry are returned unchanged; unlike
// runtime ids they are never replaced by the placeholder.
func (t *Translator) Item(protocol int32, stack protocol.ItemStack, toOlder bool) protocol.ItemStack {
	tbl, ok := t.tables[protocol]
	if !ok || stack.NetworkID == 0 {
		return stack
	}
	id := stack.NetworkID

	if toOlder {
		idx := tbl.byTarget[id]
		if len(idx) == 0 {
			return stack
		}
		e := &tbl.entries[idx[0]]
		stack.NetworkID = e.Source.ID
		if meta, ok := metaOf(e.RemappedMetas, e.Target.Name); ok {
			stack.MetadataValue = meta
		}
		stack.BlockRuntimeID = t.nestedBlock(protocol, stack.BlockRuntimeID, true)
		return stack
	}

	idx := tbl.bySource[id]
	if len(idx) == 0 {
		return stack
	}
	e := &tbl.entries[idx[0]]
	stack.NetworkID = e.Target.ID
	if split, ok := e.RemappedMetas[stack.MetadataValue]; ok {
		if splitID, ok := tbl.targetID[split]; ok {
			stack.NetworkID = splitID
		}
		stack.MetadataValue = 0
	}
	stack.BlockRuntimeID = t.nestedBlock(protocol, stack.BlockRuntimeID, false)
	return stack
}

// nestedBlock translates the block runtime id of an item stack. Zero means
// the stack has no block.
func (t *Translator) nestedBlock(protocol, id int32, toOlder bool) int32 {
	if id == 0 {
		return 0
	}
	return int32(t.BlockRuntimeID(protocol, uint32(id), toOlder))
}

// metaOf returns the smallest damage value remapped to name.
func metaOf(metas map[uint32]string, name string) (uint32, bool) {
	var (
		meta  uint32
		found bool
	)
	for d, n := range metas {
		if n == name && (!found || d < meta) {
			meta, found = d, true
		}
	}
	return meta, found
}
