// Package bedrocktest builds a small, self-consistent set of bundled
// resource files and a matching canonical palette for tests.
//
// Every legacy version of the registry gets its own id space: item and block
// runtime ids are the canonical ids shifted by Offset. Legacy versions still
// know the merged minecraft:wool item and block that the canonical version
// split into white and red wool, and each side has an id without counterpart.
package bedrocktest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing/fstest"

	"github.com/sandertv/gophertunnel/minecraft/protocol"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/palette"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/nbtutil"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
)

// Canonical item runtime ids.
const (
	Stone           int32 = 1
	GrassBlock      int32 = 2
	WhiteWool       int32 = 35
	RedWool         int32 = 36
	Chest           int32 = 54
	DiamondSword    int32 = 316
	Gunpowder       int32 = 328
	Potion          int32 = 425
	SplashPotion    int32 = 561
	LingeringPotion int32 = 562
	DragonBreath    int32 = 563
	// NewItem only exists in the canonical version.
	NewItem int32 = 900
	// OldItem only exists in legacy versions, before applying Offset.
	OldItem int32 = 800
)

// Canonical block runtime ids.
const (
	BlockAir       uint32 = 0
	BlockStone     uint32 = 1
	BlockChest     uint32 = 2 // facing_direction 2, the chest states span 2-5
	BlockWhiteWool uint32 = 6
	BlockRedWool   uint32 = 7
	// BlockNew only exists in the canonical version.
	BlockNew uint32 = 8
	// BlockOld only exists in legacy versions, before applying Offset.
	BlockOld uint32 = 50
)

// RedWoolDamage is the legacy metadata value of red wool.
const RedWoolDamage = 14

// Fixture is the bundled data of all versions of a Registry.
type Fixture struct {
	Registry *version.Registry
	FS       fstest.MapFS
	Palette  *palette.Static
}

// New builds the fixture for all versions of reg.
func New(reg *version.Registry) *Fixture {
	f := &Fixture{
		Registry: reg,
		FS:       fstest.MapFS{},
	}
	f.Palette = &palette.Static{
		Items:  canonicalItems(),
		Blocks: canonicalBlocks(),
	}
	f.Palette.Creative = f.canonicalCreative()
	for _, d := range reg.Supported() {
		f.writeVersion(d)
	}
	return f
}

// Offset is the distance of a version's runtime ids to the canonical ones.
func (f *Fixture) Offset(d *version.Descriptor) int32 {
	if d.Protocol == f.Registry.Canonical().Protocol {
		return 0
	}
	return d.Protocol - 500
}

// LegacyItem returns the runtime id of a canonical item in version d.
// Both wool colours share the runtime id of the merged legacy wool.
func (f *Fixture) LegacyItem(d *version.Descriptor, canonical int32) int32 {
	if canonical == RedWool {
		canonical = WhiteWool
	}
	return canonical + f.Offset(d)
}

// LegacyBlock returns the runtime id of a canonical block state in version d.
func (f *Fixture) LegacyBlock(d *version.Descriptor, canonical uint32) uint32 {
	return canonical + uint32(f.Offset(d))
}

// Remove deletes the bundled file of version d in dir, e.g. "item_palette".
func (f *Fixture) Remove(d *version.Descriptor, dir string) {
	mapping := fmt.Sprintf("_%d_to_%d.", d.Protocol, f.Registry.Canonical().Protocol)
	for name := range f.FS {
		if !strings.HasPrefix(name, dir+"/") {
			continue
		}
		if strings.Contains(name, "."+d.FileVersion()+".") || strings.Contains(name, mapping) {
			delete(f.FS, name)
		}
	}
}

type item struct {
	name string
	id   int32
}

func canonicalItemTable() []item {
	return []item{
		{"minecraft:stone", Stone},
		{"minecraft:grass_block", GrassBlock},
		{"minecraft:white_wool", WhiteWool},
		{"minecraft:red_wool", RedWool},
		{"minecraft:chest", Chest},
		{"minecraft:diamond_sword", DiamondSword},
		{"minecraft:gunpowder", Gunpowder},
		{"minecraft:potion", Potion},
		{"minecraft:splash_potion", SplashPotion},
		{"minecraft:lingering_potion", LingeringPotion},
		{"minecraft:dragon_breath", DragonBreath},
		{"minecraft:new_item", NewItem},
	}
}

// legacyName is the identifier of a canonical item in legacy versions.
func legacyName(canonical string) string {
	switch canonical {
	case "minecraft:grass_block":
		return "minecraft:grass"
	case "minecraft:white_wool", "minecraft:red_wool":
		return "minecraft:wool"
	}
	return canonical
}

func canonicalItems() []protocol.ItemEntry {
	var entries []protocol.ItemEntry
	for _, it := range canonicalItemTable() {
		entries = append(entries, protocol.ItemEntry{Name: it.name, RuntimeID: int16(it.id)})
	}
	return entries
}

type block struct {
	name  string
	id    uint32
	state map[string]any
}

func canonicalBlockTable() []block {
	blocks := []block{
		{"minecraft:air", BlockAir, map[string]any{}},
		{"minecraft:stone", BlockStone, map[string]any{}},
	}
	for i := uint32(0); i < 4; i++ {
		blocks = append(blocks, block{"minecraft:chest", BlockChest + i, map[string]any{"facing_direction": int32(2 + i)}})
	}
	return append(blocks,
		block{"minecraft:white_wool", BlockWhiteWool, map[string]any{}},
		block{"minecraft:red_wool", BlockRedWool, map[string]any{}},
		block{"minecraft:new_block", BlockNew, map[string]any{}},
	)
}

func legacyBlockTable(offset uint32) []block {
	var blocks []block
	for _, b := range canonicalBlockTable() {
		switch b.id {
		case BlockNew:
			continue
		case BlockWhiteWool:
			b = block{"minecraft:wool", b.id, map[string]any{"color": "white"}}
		case BlockRedWool:
			b = block{"minecraft:wool", b.id, map[string]any{"color": "red"}}
		}
		b.id += offset
		blocks = append(blocks, b)
	}
	return append(blocks, block{"minecraft:old_block", BlockOld + offset, map[string]any{}})
}

func canonicalBlocks() []palette.Block {
	var blocks []palette.Block
	for _, b := range canonicalBlockTable() {
		blocks = append(blocks, palette.Block{
			BlockEntry: protocol.BlockEntry{Name: b.name, Properties: b.state},
			RuntimeID:  b.id,
		})
	}
	return blocks
}

// canonicalCreative is the creative inventory the canonical creative file
// decodes to, in file order.
func (f *Fixture) canonicalCreative() []protocol.CreativeItem {
	stack := func(id int32, block uint32) protocol.ItemStack {
		for _, e := range f.Palette.Items {
			if int32(e.RuntimeID) == id {
				return protocol.ItemStack{
					ItemType:       protocol.ItemType{NetworkID: id},
					BlockRuntimeID: int32(block),
					Count:          1,
				}
			}
		}
		panic("unknown item " + strconv.Itoa(int(id)))
	}
	chest := stack(Chest, BlockChest)
	chest.NBTData = chestTag()
	stacks := []protocol.ItemStack{
		stack(Stone, BlockStone),
		stack(WhiteWool, BlockWhiteWool),
		stack(RedWool, BlockRedWool),
		chest,
		stack(DiamondSword, 0),
		stack(GrassBlock, 0),
	}
	creative := make([]protocol.CreativeItem, 0, len(stacks))
	for i, s := range stacks {
		creative = append(creative, protocol.CreativeItem{CreativeItemNetworkID: uint32(i + 1), Item: s})
	}
	return creative
}

func chestTag() map[string]any {
	return map[string]any{"display": map[string]any{"Name": "Loot"}}
}

func (f *Fixture) writeVersion(d *version.Descriptor) {
	fv := d.FileVersion()
	canonical := f.Registry.Canonical()
	legacy := d.Protocol != canonical.Protocol
	offset := f.Offset(d)

	f.put("biome_definitions/biome_definitions."+fv+".dat", nbtFile(map[string]any{
		"version": d.Version,
		"plains":  map[string]any{"temperature": float32(0.8), "downfall": float32(0.4)},
	}, d.BiomeEncoding))
	f.put("entity_identifiers/entity_identifiers."+fv+".dat", nbtFile(map[string]any{
		"version": d.Version,
		"idlist":  map[string]any{"minecraft:player": int32(63)},
	}, d.EntityEncoding))

	type paletteEntry struct {
		Name string `json:"name"`
		ID   int32  `json:"id"`
	}
	var itemPalette []paletteEntry
	for _, it := range canonicalItemTable() {
		if !legacy {
			itemPalette = append(itemPalette, paletteEntry{it.name, it.id})
			continue
		}
		if it.id == NewItem || it.id == RedWool {
			continue
		}
		itemPalette = append(itemPalette, paletteEntry{legacyName(it.name), it.id + offset})
	}
	if legacy {
		itemPalette = append(itemPalette, paletteEntry{"minecraft:old_item", OldItem + offset})
	}
	f.put("item_palette/item_palette."+fv+".json", jsonFile(itemPalette))

	type creativeEntry struct {
		ID         string `json:"id"`
		Damage     int32  `json:"damage,omitempty"`
		BlockState string `json:"block_state_b64,omitempty"`
		NBT        string `json:"nbt_b64,omitempty"`
	}
	blockState := func(name string, state map[string]any) string {
		return b64(map[string]any{"name": name, "states": state, "version": int32(18090528)})
	}
	var creative []creativeEntry
	if legacy {
		creative = []creativeEntry{
			{ID: "minecraft:stone", BlockState: blockState("minecraft:stone", map[string]any{})},
			{ID: "minecraft:wool", Damage: RedWoolDamage},
			{ID: "minecraft:diamond_sword"},
		}
	} else {
		creative = []creativeEntry{
			{ID: "minecraft:stone", BlockState: blockState("minecraft:stone", map[string]any{})},
			{ID: "minecraft:white_wool", BlockState: blockState("minecraft:white_wool", map[string]any{})},
			{ID: "minecraft:red_wool", BlockState: blockState("minecraft:red_wool", map[string]any{})},
			{ID: "minecraft:chest", BlockState: blockState("minecraft:chest", map[string]any{"facing_direction": int32(2)}), NBT: b64(chestTag())},
			{ID: "minecraft:diamond_sword"},
			{ID: "minecraft:grass_block"},
		}
	}
	f.put("creative_items/creative_items."+fv+".json", jsonFile(map[string]any{"items": creative}))

	var blocks []block
	if legacy {
		blocks = legacyBlockTable(uint32(offset))
	} else {
		blocks = canonicalBlockTable()
	}
	entries := make([]map[string]any, 0, len(blocks))
	for _, b := range blocks {
		entries = append(entries, map[string]any{
			"name":       b.name,
			"states":     b.state,
			"network_id": int32(b.id),
		})
	}
	f.put("block_palette/block_palette."+fv+".nbt", nbtFile(map[string]any{"blocks": entries}, d.BlockPaletteEncoding))

	if !legacy {
		return
	}

	type ref struct {
		Name string `json:"name"`
		ID   int32  `json:"id"`
	}
	type mappingEntry struct {
		Source        ref               `json:"source"`
		Target        ref               `json:"target"`
		RemappedMetas map[string]string `json:"remappedMetas,omitempty"`
	}
	woolMetas := map[string]string{
		"0":  "minecraft:white_wool",
		"14": "minecraft:red_wool",
	}
	var mappings []mappingEntry
	for _, it := range canonicalItemTable() {
		if it.id == NewItem {
			continue
		}
		e := mappingEntry{
			Source: ref{legacyName(it.name), f.LegacyItem(d, it.id)},
			Target: ref{it.name, it.id},
		}
		if e.Source.Name == "minecraft:wool" {
			e.RemappedMetas = woolMetas
		}
		mappings = append(mappings, e)
	}
	prefix := fmt.Sprintf("%d_to_%d.json", d.Protocol, canonical.Protocol)
	f.put("mapping_items/item_mapping_"+prefix, jsonFile(mappings))

	blockMapping := map[string]uint32{}
	for _, b := range canonicalBlockTable() {
		if b.id == BlockNew {
			continue
		}
		blockMapping[strconv.Itoa(int(b.id+uint32(offset)))] = b.id
	}
	f.put("mapping_blocks/block_mapping_"+prefix, jsonFile(blockMapping))
}

func (f *Fixture) put(name string, data []byte) {
	f.FS[name] = &fstest.MapFile{Data: data}
}

func nbtFile(m map[string]any, enc version.Encoding) []byte {
	b, err := nbtutil.EncodeBytes(m, enc)
	if err != nil {
		panic(err)
	}
	return b
}

func jsonFile(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func b64(m map[string]any) string {
	s, err := nbtutil.EncodeBase64(m)
	if err != nil {
		panic(err)
	}
	return s
}
