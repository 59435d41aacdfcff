package mapping

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strconv"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/palette"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
	"github.com/JukeboxMC/JBackwards/pkg/util/errs"
)

// ItemMappingPath is the bundled item mapping from version d to the canonical version.
func ItemMappingPath(d, canonical *version.Descriptor) string {
	return path.Join("mapping_items", fmt.Sprintf("item_mapping_%d_to_%d.json", d.Protocol, canonical.Protocol))
}

// BlockMappingPath is the bundled block mapping from version d to the canonical version.
func BlockMappingPath(d, canonical *version.Descriptor) string {
	return path.Join("mapping_blocks", fmt.Sprintf("block_mapping_%d_to_%d.json", d.Protocol, canonical.Protocol))
}

// ItemRef identifies an item in one protocol version.
type ItemRef struct {
	Name string `json:"name"`
	ID   int32  `json:"id"`
}

// ItemEntry maps an item of a legacy version (Source) to the canonical
// version (Target).
type ItemEntry struct {
	Source ItemRef `json:"source"`
	Target ItemRef `json:"target"`
	// RemappedMetas maps legacy damage values to the canonical identifier of
	// items that were split into one identifier per damage value.
	RemappedMetas map[uint32]string `json:"remappedMetas,omitempty"`
}

// Placeholder holds the legacy runtime ids substituted on translation misses.
type Placeholder struct {
	Item  int32
	Block uint32
}

// table is the immutable mapping data of one legacy version.
type table struct {
	desc    *version.Descriptor
	entries []ItemEntry

	// item runtime ids
	itemToOld       map[int32]int32
	itemToCanonical map[int32]int32
	// entry indexes in file order
	byTarget map[int32][]int
	bySource map[int32][]int
	// canonical runtime id of a canonical identifier
	targetID map[string]int32

	// block runtime ids
	blockToOld       map[uint32]uint32
	blockToCanonical map[uint32]uint32
	// legacy block states by runtime id
	blocks map[uint32]palette.Block

	placeholder Placeholder
}

// tableLoader reads the mapping files of one legacy version.
type tableLoader struct {
	fsys       fs.FS
	desc       *version.Descriptor
	canonical  *version.Descriptor
	stoneBlock uint32 // canonical stone block runtime id
}

func (l *tableLoader) load() (*table, error) {
	entries, err := l.itemEntries()
	if err != nil {
		return nil, err
	}
	blockMapping, err := l.blockMapping()
	if err != nil {
		return nil, err
	}
	blocks, err := palette.ReadBlockPalette(l.fsys, l.desc)
	if err != nil {
		return nil, err
	}

	t := &table{
		desc:             l.desc,
		entries:          entries,
		itemToOld:        make(map[int32]int32, len(entries)),
		itemToCanonical:  make(map[int32]int32, len(entries)),
		byTarget:         make(map[int32][]int, len(entries)),
		bySource:         make(map[int32][]int, len(entries)),
		targetID:         make(map[string]int32, len(entries)),
		blockToOld:       make(map[uint32]uint32, len(blockMapping)),
		blockToCanonical: blockMapping,
		blocks:           make(map[uint32]palette.Block, len(blocks)),
	}

	// The first entry in file order wins for every key.
	itemPlaceholder := false
	for i, e := range entries {
		if _, ok := t.itemToOld[e.Target.ID]; !ok {
			t.itemToOld[e.Target.ID] = e.Source.ID
		}
		if _, ok := t.itemToCanonical[e.Source.ID]; !ok {
			t.itemToCanonical[e.Source.ID] = e.Target.ID
		}
		if _, ok := t.targetID[e.Target.Name]; !ok {
			t.targetID[e.Target.Name] = e.Target.ID
		}
		t.byTarget[e.Target.ID] = append(t.byTarget[e.Target.ID], i)
		t.bySource[e.Source.ID] = append(t.bySource[e.Source.ID], i)
		if !itemPlaceholder && e.Source.Name == palette.PlaceholderIdentifier {
			t.placeholder.Item = e.Source.ID
			itemPlaceholder = true
		}
	}
	if !itemPlaceholder {
		return nil, errs.NewConfigError(l.desc.Version, ItemMappingPath(l.desc, l.canonical),
			fmt.Errorf("no %s item: %w", palette.PlaceholderIdentifier, errs.ErrNoPlaceholder))
	}

	// Several legacy states may map to the same canonical state. The
	// smallest legacy id is used for the reverse direction to stay deterministic.
	blockPlaceholder := false
	for old, canonical := range blockMapping {
		if cur, ok := t.blockToOld[canonical]; !ok || old < cur {
			t.blockToOld[canonical] = old
		}
		if canonical == l.stoneBlock && (!blockPlaceholder || old < t.placeholder.Block) {
			t.placeholder.Block = old
			blockPlaceholder = true
		}
	}
	if !blockPlaceholder {
		return nil, errs.NewConfigError(l.desc.Version, BlockMappingPath(l.desc, l.canonical),
			fmt.Errorf("no block maps to canonical %s: %w", palette.PlaceholderIdentifier, errs.ErrNoPlaceholder))
	}

	for _, b := range blocks {
		if _, ok := t.blocks[b.RuntimeID]; !ok {
			t.blocks[b.RuntimeID] = b
		}
	}
	return t, nil
}

func (l *tableLoader) itemEntries() ([]ItemEntry, error) {
	file := ItemMappingPath(l.desc, l.canonical)
	b, err := fs.ReadFile(l.fsys, file)
	if err != nil {
		return nil, errs.NewConfigError(l.desc.Version, file, err)
	}
	var entries []ItemEntry
	if err = json.Unmarshal(b, &entries); err != nil {
		return nil, errs.NewConfigError(l.desc.Version, file, err)
	}
	return entries, nil
}

func (l *tableLoader) blockMapping() (map[uint32]uint32, error) {
	file := BlockMappingPath(l.desc, l.canonical)
	b, err := fs.ReadFile(l.fsys, file)
	if err != nil {
		return nil, errs.NewConfigError(l.desc.Version, file, err)
	}
	var raw map[string]int64
	if err = json.Unmarshal(b, &raw); err != nil {
		return nil, errs.NewConfigError(l.desc.Version, file, err)
	}
	m := make(map[uint32]uint32, len(raw))
	for k, v := range raw {
		old, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			return nil, errs.NewConfigError(l.desc.Version, file, fmt.Errorf("invalid runtime id %q: %w", k, err))
		}
		if v < 0 || v > 1<<32-1 {
			return nil, errs.NewConfigError(l.desc.Version, file, fmt.Errorf("runtime id %d of %s out of range", v, k))
		}
		m[uint32(old)] = uint32(v)
	}
	return m, nil
}
