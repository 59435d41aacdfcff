package palette

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path"

	"github.com/sandertv/gophertunnel/minecraft/protocol"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/nbtutil"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
	"github.com/JukeboxMC/JBackwards/pkg/util/errs"
)

// ItemPalettePath is the bundled item palette of a version.
func ItemPalettePath(d *version.Descriptor) string {
	return path.Join("item_palette", "item_palette."+d.FileVersion()+".json")
}

// BlockPalettePath is the bundled block palette of a version.
func BlockPalettePath(d *version.Descriptor) string {
	return path.Join("block_palette", "block_palette."+d.FileVersion()+".nbt")
}

// CreativeItemsPath is the bundled creative inventory of a version.
func CreativeItemsPath(d *version.Descriptor) string {
	return path.Join("creative_items", "creative_items."+d.FileVersion()+".json")
}

// ErrUnknownItem is returned when a creative item is missing from its item palette.
var ErrUnknownItem = errors.New("item not in item palette")

type itemEntry struct {
	Name           string `json:"name"`
	ID             int32  `json:"id"`
	ComponentBased bool   `json:"component_based,omitempty"`
}

// ReadItemPalette reads the item palette of a version in file order.
func ReadItemPalette(fsys fs.FS, d *version.Descriptor) ([]protocol.ItemEntry, error) {
	file := ItemPalettePath(d)
	b, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, errs.NewConfigError(d.Version, file, err)
	}
	var entries []itemEntry
	if err = json.Unmarshal(b, &entries); err != nil {
		return nil, errs.NewConfigError(d.Version, file, err)
	}
	items := make([]protocol.ItemEntry, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, errs.NewConfigError(d.Version, file, fmt.Errorf("item with id %d has no name", e.ID))
		}
		if e.ID < math.MinInt16 || e.ID > math.MaxInt16 {
			return nil, errs.NewConfigError(d.Version, file, fmt.Errorf("item %q: id %d out of range", e.Name, e.ID))
		}
		items = append(items, protocol.ItemEntry{
			Name:           e.Name,
			RuntimeID:      int16(e.ID),
			ComponentBased: e.ComponentBased,
		})
	}
	return items, nil
}

// ReadBlockPalette reads the block palette of a version in file order.
// States without an explicit network_id get their palette index.
func ReadBlockPalette(fsys fs.FS, d *version.Descriptor) ([]Block, error) {
	file := BlockPalettePath(d)
	f, err := fsys.Open(file)
	if err != nil {
		return nil, errs.NewConfigError(d.Version, file, err)
	}
	defer f.Close()

	root, err := nbtutil.Decode(f, d.BlockPaletteEncoding)
	if err != nil {
		return nil, errs.NewConfigError(d.Version, file, err)
	}
	states := nbtutil.List(root, "blocks")
	if len(states) == 0 {
		return nil, errs.NewConfigError(d.Version, file, fmt.Errorf("palette has no blocks"))
	}
	blocks := make([]Block, 0, len(states))
	for i, b := range states {
		id, ok := nbtutil.Int(b, "network_id")
		if !ok {
			id = int64(i)
		}
		props := nbtutil.Compound(b, "states")
		if props == nil {
			props = map[string]any{}
		}
		blocks = append(blocks, Block{
			BlockEntry: protocol.BlockEntry{Name: nbtutil.String(b, "name"), Properties: props},
			RuntimeID:  uint32(id),
		})
	}
	return blocks, nil
}

type creativeFile struct {
	Items []creativeEntry `json:"items"`
}

type creativeEntry struct {
	ID         string `json:"id"`
	Damage     uint32 `json:"damage"`
	BlockState string `json:"block_state_b64"`
	NBT        string `json:"nbt_b64"`
}

// ReadCreativeItems reads the creative inventory of a version. Item ids are
// resolved against items, the item palette of the same version. Block states
// are matched against blocks.
func ReadCreativeItems(fsys fs.FS, d *version.Descriptor, items []protocol.ItemEntry, blocks []Block) ([]protocol.CreativeItem, error) {
	file := CreativeItemsPath(d)
	b, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, errs.NewConfigError(d.Version, file, err)
	}
	var cf creativeFile
	if err = json.Unmarshal(b, &cf); err != nil {
		return nil, errs.NewConfigError(d.Version, file, err)
	}

	byName := make(map[string]protocol.ItemEntry, len(items))
	for _, it := range items {
		if _, ok := byName[it.Name]; !ok {
			byName[it.Name] = it
		}
	}

	creative := make([]protocol.CreativeItem, 0, len(cf.Items))
	for i, e := range cf.Items {
		entry, ok := byName[e.ID]
		if !ok {
			return nil, errs.NewConfigError(d.Version, file,
				fmt.Errorf("creative item %d %q: %w", i, e.ID, ErrUnknownItem))
		}
		stack := protocol.ItemStack{
			ItemType: protocol.ItemType{
				NetworkID:     int32(entry.RuntimeID),
				MetadataValue: e.Damage,
			},
			Count: 1,
		}
		if e.BlockState != "" {
			state, err := nbtutil.DecodeBase64(e.BlockState)
			if err != nil {
				return nil, errs.NewConfigError(d.Version, file,
					fmt.Errorf("block state of creative item %d %q: %w", i, e.ID, err))
			}
			if blk, ok := matchBlock(blocks, state); ok {
				stack.BlockRuntimeID = int32(blk.RuntimeID)
			}
		}
		if e.NBT != "" {
			if stack.NBTData, err = nbtutil.DecodeBase64(e.NBT); err != nil {
				return nil, errs.NewConfigError(d.Version, file,
					fmt.Errorf("tag of creative item %d %q: %w", i, e.ID, err))
			}
		}
		creative = append(creative, protocol.CreativeItem{
			// Network ids are dense and 1-based per version.
			CreativeItemNetworkID: uint32(len(creative) + 1),
			Item:                  stack,
		})
	}
	return creative, nil
}

// matchBlock returns the block of blocks with the name and states of the
// given block state compound.
func matchBlock(blocks []Block, state map[string]any) (Block, bool) {
	name := nbtutil.String(state, "name")
	props := nbtutil.Compound(state, "states")
	for _, b := range blocks {
		if b.Name == name && nbtutil.StatesEqual(b.Properties, props) {
			return b, true
		}
	}
	return Block{}, false
}

// Load returns a Static palette of the bundled files of a version. It is used
// when no live host palette is available, e.g. by command-line tooling.
// All three files are required.
func Load(fsys fs.FS, d *version.Descriptor) (*Static, error) {
	items, err := ReadItemPalette(fsys, d)
	if err != nil {
		return nil, err
	}
	blocks, err := ReadBlockPalette(fsys, d)
	if err != nil {
		return nil, err
	}
	creative, err := ReadCreativeItems(fsys, d, items, blocks)
	if err != nil {
		return nil, err
	}
	return &Static{Items: items, Blocks: blocks, Creative: creative}, nil
}
