package backwards

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JukeboxMC/JBackwards/internal/bedrocktest"
	"github.com/JukeboxMC/JBackwards/pkg/backwards/config"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/host"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/palette"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
	"github.com/JukeboxMC/JBackwards/pkg/util/errs"
)

type session struct {
	protocol int32
	written  []packet.Packet
}

func (s *session) Protocol() int32        { return s.protocol }
func (s *session) SetCodec(version.Codec) {}
func (s *session) SetCompression(uint16)  {}
func (s *session) WritePacketImmediately(pk packet.Packet) error {
	s.written = append(s.written, pk)
	return nil
}

func newOptions(fx *bedrocktest.Fixture) Options {
	cfg := config.DefaultConfig
	return Options{
		Config:    &cfg,
		Event:     event.New(),
		Scheduler: host.NewTickScheduler(logr.Discard()),
		FS:        fx.FS,
	}
}

func TestNew(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	opts := newOptions(fx)
	b, err := New(context.Background(), opts)
	require.NoError(t, err)
	defer b.Close()

	assert.Same(t, version.Default.Canonical(), b.Registry().Canonical())
	assert.Equal(t, fx.Palette.Items, b.Catalog().ItemPalette(version.Default.Canonical().Protocol),
		"canonical palette is loaded from the bundled files")

	d := version.Bedrock_1_20_30
	e := host.NewPacketSendEvent(&session{protocol: d.Protocol}, &packet.LevelSoundEvent{
		SoundType: packet.SoundEventPlace,
		ExtraData: int32(bedrocktest.BlockChest),
	})
	opts.Event.Fire(e)
	assert.EqualValues(t, fx.LegacyBlock(d, bedrocktest.BlockChest), e.Packet().(*packet.LevelSoundEvent).ExtraData)
}

func TestNewLoadsCanonicalCreativeItems(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	opts := newOptions(fx)
	b, err := New(context.Background(), opts)
	require.NoError(t, err)
	defer b.Close()

	canonical := version.Default.Canonical()
	assert.Equal(t, fx.Palette.Creative, b.Catalog().CreativeItems(canonical.Protocol))

	pk := &packet.CreativeContent{}
	opts.Event.Fire(host.NewPacketSendEvent(&session{protocol: version.Bedrock_1_20_0.Protocol}, pk))
	assert.Len(t, pk.Items, len(fx.Palette.Creative))
}

func TestNewRequiresCanonicalCreativeItems(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	canonical := version.Default.Canonical()
	fx.Remove(canonical, "creative_items")

	_, err := New(context.Background(), newOptions(fx))
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, palette.CreativeItemsPath(canonical), cfgErr.File)

	// a host palette makes the canonical files optional
	opts := newOptions(fx)
	opts.Palette = fx.Palette
	b, err := New(context.Background(), opts)
	require.NoError(t, err)
	defer b.Close()

	pk := &packet.CreativeContent{}
	opts.Event.Fire(host.NewPacketSendEvent(&session{protocol: version.Bedrock_1_20_0.Protocol}, pk))
	assert.NotEmpty(t, pk.Items)
}

func TestNewFilteredVersions(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	fx.Remove(version.Bedrock_1_20_0, "item_palette")
	opts := newOptions(fx)
	opts.Palette = fx.Palette
	opts.Config.Versions = []string{"1.20.50"}

	b, err := New(context.Background(), opts)
	require.NoError(t, err, "files of unconfigured versions are not read")
	defer b.Close()

	assert.Len(t, b.Registry().Supported(), 2)
	_, ok := b.Registry().ByProtocol(version.Bedrock_1_20_0.Protocol)
	assert.False(t, ok)
}

func TestNewMissingData(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	fx.Remove(version.Bedrock_1_20_10, "mapping_items")
	opts := newOptions(fx)
	opts.Palette = fx.Palette

	_, err := New(context.Background(), opts)
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, version.Bedrock_1_20_10.Version, cfgErr.Version)
}

func TestNewInvalidOptions(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	_, err := New(context.Background(), Options{})
	assert.ErrorIs(t, err, errs.ErrMissingConfig)

	for name, mutate := range map[string]func(*Options){
		"config":    func(o *Options) { o.Config = nil },
		"event":     func(o *Options) { o.Event = nil },
		"scheduler": func(o *Options) { o.Scheduler = nil },
		"invalid":   func(o *Options) { o.Config.Compression = "zstd" },
	} {
		opts := newOptions(fx)
		mutate(&opts)
		_, err := New(context.Background(), opts)
		assert.Error(t, err, name)
	}
}

func TestClose(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	opts := newOptions(fx)
	b, err := New(context.Background(), opts)
	require.NoError(t, err)
	b.Close()

	s := &session{protocol: version.Bedrock_1_20_0.Protocol}
	e := host.NewPacketSendEvent(s, &packet.PlayStatus{Status: packet.PlayStatusLoginFailedClient})
	opts.Event.Fire(e)
	assert.False(t, e.Cancelled())
	assert.Empty(t, s.written)
}

func TestStats(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	opts := newOptions(fx)
	opts.Palette = fx.Palette
	b, err := New(context.Background(), opts)
	require.NoError(t, err)
	defer b.Close()

	stats := b.Stats()
	require.Len(t, stats, len(version.Default.Supported()))

	first := stats[0]
	assert.Equal(t, version.Bedrock_1_20_0.Version, first.Version)
	assert.False(t, first.Canonical)
	assert.True(t, first.Biomes)
	assert.True(t, first.Entities)
	assert.Equal(t, 3, first.CreativeItems)
	assert.NotZero(t, first.ItemMappings)
	assert.Equal(t, fx.LegacyItem(version.Bedrock_1_20_0, bedrocktest.Stone), first.Placeholder.Item)

	last := stats[len(stats)-1]
	assert.True(t, last.Canonical)
	assert.Zero(t, last.ItemMappings)
	assert.Equal(t, len(fx.Palette.Creative), last.CreativeItems)
	assert.Equal(t, bedrocktest.Stone, last.Placeholder.Item)
}
