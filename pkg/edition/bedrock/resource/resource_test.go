package resource_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JukeboxMC/JBackwards/internal/bedrocktest"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/palette"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/nbtutil"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/resource"
	"github.com/JukeboxMC/JBackwards/pkg/util/errs"
)

func load(t *testing.T, fx *bedrocktest.Fixture) *resource.Catalog {
	t.Helper()
	c, err := resource.Load(context.Background(), fx.FS, fx.Registry, fx.Palette)
	require.NoError(t, err)
	return c
}

func TestLoadAllVersions(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	c := load(t, fx)

	for _, d := range version.Default.Supported() {
		t.Run(d.Version, func(t *testing.T) {
			biomes, ok := c.BiomeDefinitions(d.Protocol)
			require.True(t, ok)
			assert.Equal(t, d.Version, biomes["version"], "biomes decoded with %s encoding", d.BiomeEncoding)

			entities, ok := c.EntityIdentifiers(d.Protocol)
			require.True(t, ok)
			assert.Equal(t, d.Version, entities["version"])

			items := c.ItemPalette(d.Protocol)
			sword, ok := palette.ItemByName(items, "minecraft:diamond_sword")
			require.True(t, ok)
			assert.EqualValues(t, fx.LegacyItem(d, bedrocktest.DiamondSword), sword.RuntimeID)

			b := c.Bundle(d.Protocol)
			assert.Same(t, d, b.Version)
		})
	}
}

func TestCreativeItems(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	c := load(t, fx)

	canonical := version.Default.Canonical()
	items := c.CreativeItems(canonical.Protocol)
	require.Len(t, items, 6)

	// file order and dense 1-based network ids
	ids := make([]int32, len(items))
	for i, it := range items {
		ids[i] = it.Item.NetworkID
		assert.Equal(t, uint32(i+1), it.CreativeItemNetworkID)
		assert.Equal(t, uint16(1), it.Item.Count)
	}
	assert.Equal(t, []int32{
		bedrocktest.Stone,
		bedrocktest.WhiteWool,
		bedrocktest.RedWool,
		bedrocktest.Chest,
		bedrocktest.DiamondSword,
		bedrocktest.GrassBlock,
	}, ids)

	// block states resolved against the canonical block palette
	assert.EqualValues(t, bedrocktest.BlockRedWool, items[2].Item.BlockRuntimeID)
	assert.EqualValues(t, bedrocktest.BlockChest, items[3].Item.BlockRuntimeID)
	assert.Equal(t, map[string]any{"display": map[string]any{"Name": "Loot"}}, items[3].Item.NBTData)
	assert.Zero(t, items[4].Item.BlockRuntimeID)
	assert.Nil(t, items[4].Item.NBTData)

	assert.Equal(t, fx.Palette.Creative, items)
}

func TestCreativeItemsLegacy(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	c := load(t, fx)

	d := version.Bedrock_1_20_0
	items := c.CreativeItems(d.Protocol)
	require.Len(t, items, 3)
	assert.Equal(t, fx.LegacyItem(d, bedrocktest.Stone), items[0].Item.NetworkID)
	assert.EqualValues(t, bedrocktest.BlockStone, items[0].Item.BlockRuntimeID)

	assert.Equal(t, fx.LegacyItem(d, bedrocktest.WhiteWool), items[1].Item.NetworkID)
	assert.EqualValues(t, bedrocktest.RedWoolDamage, items[1].Item.MetadataValue)
	assert.Equal(t, []uint32{1, 2, 3}, []uint32{
		items[0].CreativeItemNetworkID,
		items[1].CreativeItemNetworkID,
		items[2].CreativeItemNetworkID,
	})
}

func TestSerialisedTrees(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	c := load(t, fx)

	for _, d := range []*version.Descriptor{version.Bedrock_1_20_0, version.Bedrock_1_20_50} {
		data, ok := c.SerialisedBiomeDefinitions(d.Protocol)
		require.True(t, ok)
		tree, err := nbtutil.Decode(bytes.NewReader(data), version.Network)
		require.NoError(t, err)
		biomes, _ := c.BiomeDefinitions(d.Protocol)
		assert.Equal(t, biomes, tree)

		data, ok = c.SerialisedEntityIdentifiers(d.Protocol)
		require.True(t, ok)
		tree, err = nbtutil.Decode(bytes.NewReader(data), version.Network)
		require.NoError(t, err)
		assert.Equal(t, d.Version, tree["version"])
	}

	_, ok := c.SerialisedBiomeDefinitions(1)
	assert.False(t, ok)
}

func TestUnknownProtocolFallsBack(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	c := load(t, fx)

	assert.Equal(t, fx.Palette.Items, c.ItemPalette(1))
	assert.Equal(t, fx.Palette.Creative, c.CreativeItems(1))
	_, ok := c.BiomeDefinitions(1)
	assert.False(t, ok)
	_, ok = c.EntityIdentifiers(1)
	assert.False(t, ok)
	_, ok = c.SerialisedEntityIdentifiers(1)
	assert.False(t, ok)
}

func TestCanonicalFilesOptional(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	canonical := version.Default.Canonical()
	for _, dir := range []string{"biome_definitions", "entity_identifiers", "item_palette", "creative_items"} {
		fx.Remove(canonical, dir)
	}
	c := load(t, fx)

	assert.Equal(t, fx.Palette.Items, c.ItemPalette(canonical.Protocol))
	assert.Equal(t, fx.Palette.Creative, c.CreativeItems(canonical.Protocol))
	_, ok := c.BiomeDefinitions(canonical.Protocol)
	assert.False(t, ok)
	_, ok = c.SerialisedBiomeDefinitions(canonical.Protocol)
	assert.False(t, ok)
}

func TestLegacyFilesRequired(t *testing.T) {
	for _, dir := range []string{"biome_definitions", "entity_identifiers", "item_palette", "creative_items"} {
		t.Run(dir, func(t *testing.T) {
			fx := bedrocktest.New(version.Default)
			fx.Remove(version.Bedrock_1_20_40, dir)

			_, err := resource.Load(context.Background(), fx.FS, fx.Registry, fx.Palette)
			var cfgErr *errs.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "1.20.40", cfgErr.Version)
			assert.True(t, errs.IsMissingFile(err))
		})
	}
}

func TestFilteredRegistryIgnoresOtherVersions(t *testing.T) {
	reg, err := version.Default.Filter([]string{"1.20.10"})
	require.NoError(t, err)
	fx := bedrocktest.New(reg)
	c := load(t, fx)

	_, ok := c.BiomeDefinitions(version.Bedrock_1_20_0.Protocol)
	assert.False(t, ok)
	_, ok = c.BiomeDefinitions(version.Bedrock_1_20_10.Protocol)
	assert.True(t, ok)
}

func TestUnknownCreativeItem(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	d := version.Bedrock_1_20_30
	fx.FS[palette.CreativeItemsPath(d)].Data = []byte(`{"items":[{"id":"minecraft:nope"}]}`)

	_, err := resource.Load(context.Background(), fx.FS, fx.Registry, fx.Palette)
	assert.ErrorIs(t, err, palette.ErrUnknownItem)
	var cfgErr *errs.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
