// Package palette provides the canonical game data of the server: its item
// palette, block palette and creative inventory, and readers for the bundled
// per-version palette files.
package palette

import (
	"maps"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// PlaceholderIdentifier is the identifier of the item and block substituted
// whenever an id has no counterpart in the target protocol.
const PlaceholderIdentifier = "minecraft:stone"

// Block is one state of a block palette: the block name and its state
// properties, addressed on the wire by RuntimeID.
type Block struct {
	protocol.BlockEntry
	RuntimeID uint32
}

// Clone returns a copy of b that shares no state with it.
func (b Block) Clone() Block {
	b.Properties = maps.Clone(b.Properties)
	return b
}

// Palette is the live canonical game data of the host server.
// Implementations must be safe for concurrent reads.
type Palette interface {
	// ItemEntries is the canonical item palette.
	ItemEntries() []protocol.ItemEntry
	// BlockStates is the canonical block palette.
	BlockStates() []Block
	// CreativeItems is the canonical creative inventory.
	CreativeItems() []protocol.CreativeItem
}

// Static is a Palette of fixed tables.
type Static struct {
	Items    []protocol.ItemEntry
	Blocks   []Block
	Creative []protocol.CreativeItem
}

var _ Palette = (*Static)(nil)

func (s *Static) ItemEntries() []protocol.ItemEntry      { return s.Items }
func (s *Static) BlockStates() []Block                   { return s.Blocks }
func (s *Static) CreativeItems() []protocol.CreativeItem { return s.Creative }

// ItemByName returns the first item of entries with the given name.
func ItemByName(entries []protocol.ItemEntry, name string) (protocol.ItemEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return protocol.ItemEntry{}, false
}

// BlockByName returns the first block state of blocks with the given name,
// which by palette convention is the default state of the block.
func BlockByName(blocks []Block, name string) (Block, bool) {
	for _, b := range blocks {
		if b.Name == name {
			return b, true
		}
	}
	return Block{}, false
}
