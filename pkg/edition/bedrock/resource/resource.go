// Package resource holds the resource tables a client of every supported
// protocol version expects in place of the canonical ones: biome definitions,
// entity identifiers, the item palette and the creative inventory.
package resource

import (
	"context"
	"io/fs"
	"path"

	"github.com/go-logr/logr"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/palette"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/nbtutil"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
	"github.com/JukeboxMC/JBackwards/pkg/util/errs"
)

// BiomeDefinitionsPath is the bundled biome definition blob of a version.
func BiomeDefinitionsPath(d *version.Descriptor) string {
	return path.Join("biome_definitions", "biome_definitions."+d.FileVersion()+".dat")
}

// EntityIdentifiersPath is the bundled entity identifier blob of a version.
func EntityIdentifiersPath(d *version.Descriptor) string {
	return path.Join("entity_identifiers", "entity_identifiers."+d.FileVersion()+".dat")
}

// Bundle is the resource set of one protocol version.
type Bundle struct {
	Version *version.Descriptor
	// Biomes is the biome definition tree, nil if not bundled.
	Biomes map[string]any
	// Entities is the entity identifier tree, nil if not bundled.
	Entities map[string]any
	// SerialisedBiomes and SerialisedEntities are Biomes and Entities in
	// network NBT, as carried by the packets that send them.
	SerialisedBiomes   []byte
	SerialisedEntities []byte
	// Items is the item palette of the version in file order.
	Items []protocol.ItemEntry
	// Creative is the creative inventory in file order.
	Creative []protocol.CreativeItem
}

// Catalog holds the Bundle of every supported protocol version.
// It is immutable after Load and safe for concurrent use.
type Catalog struct {
	reg       *version.Registry
	canonical palette.Palette
	bundles   map[int32]*Bundle
}

var tracer = otel.Tracer("bedrock/resource")

// Load reads the bundled resources of all versions of reg from fsys.
//
// All files of a legacy version are required. Files of the canonical
// version are optional and fall back to the live canonical palette.
func Load(ctx context.Context, fsys fs.FS, reg *version.Registry, canonical palette.Palette) (*Catalog, error) {
	ctx, span := tracer.Start(ctx, "resource.Load", trace.WithAttributes(
		attribute.String("versions", reg.String()),
	))
	defer span.End()

	log := logr.FromContextOrDiscard(ctx).WithName("resource")

	supported := reg.Supported()
	bundles := make([]*Bundle, len(supported))
	eg, ctx := errgroup.WithContext(ctx)
	for i, d := range supported {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			l := loader{
				fsys:      fsys,
				desc:      d,
				optional:  d.Protocol == reg.Canonical().Protocol,
				canonical: canonical,
			}
			b, err := l.load()
			if err != nil {
				return err
			}
			bundles[i] = b
			log.V(1).Info("loaded resources", "version", d.Version,
				"items", len(b.Items), "creativeItems", len(b.Creative))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	c := &Catalog{
		reg:       reg,
		canonical: canonical,
		bundles:   make(map[int32]*Bundle, len(bundles)),
	}
	for _, b := range bundles {
		c.bundles[b.Version.Protocol] = b
	}
	return c, nil
}

// Bundle returns the resource set of a protocol. Unknown protocols get a
// Bundle of the live canonical palette without biome and entity trees.
func (c *Catalog) Bundle(protocol int32) *Bundle {
	if b, ok := c.bundles[protocol]; ok {
		return b
	}
	return &Bundle{
		Version:  c.reg.Canonical(),
		Items:    c.canonical.ItemEntries(),
		Creative: c.canonical.CreativeItems(),
	}
}

// BiomeDefinitions returns the biome definition tree of a protocol.
func (c *Catalog) BiomeDefinitions(protocol int32) (map[string]any, bool) {
	b, ok := c.bundles[protocol]
	if !ok || b.Biomes == nil {
		return nil, false
	}
	return b.Biomes, true
}

// EntityIdentifiers returns the entity identifier tree of a protocol.
func (c *Catalog) EntityIdentifiers(protocol int32) (map[string]any, bool) {
	b, ok := c.bundles[protocol]
	if !ok || b.Entities == nil {
		return nil, false
	}
	return b.Entities, true
}

// SerialisedBiomeDefinitions returns the biome definitions of a protocol in
// the wire format of the BiomeDefinitionList packet.
func (c *Catalog) SerialisedBiomeDefinitions(protocol int32) ([]byte, bool) {
	b, ok := c.bundles[protocol]
	if !ok || b.SerialisedBiomes == nil {
		return nil, false
	}
	return b.SerialisedBiomes, true
}

// SerialisedEntityIdentifiers returns the entity identifiers of a protocol in
// the wire format of the AvailableActorIdentifiers packet.
func (c *Catalog) SerialisedEntityIdentifiers(protocol int32) ([]byte, bool) {
	b, ok := c.bundles[protocol]
	if !ok || b.SerialisedEntities == nil {
		return nil, false
	}
	return b.SerialisedEntities, true
}

// ItemPalette returns the item palette of a protocol.
// The returned slice must not be modified.
func (c *Catalog) ItemPalette(protocol int32) []protocol.ItemEntry {
	return c.Bundle(protocol).Items
}

// CreativeItems returns the creative inventory of a protocol.
// The returned slice must not be modified.
func (c *Catalog) CreativeItems(protocol int32) []protocol.CreativeItem {
	return c.Bundle(protocol).Creative
}

type loader struct {
	fsys      fs.FS
	desc      *version.Descriptor
	optional  bool
	canonical palette.Palette
}

// skip reports whether err is a missing file that may be substituted.
func (l *loader) skip(err error) bool {
	return l.optional && errs.IsMissingFile(err)
}

func (l *loader) load() (*Bundle, error) {
	b := &Bundle{Version: l.desc}
	var err error
	if b.Biomes, b.SerialisedBiomes, err = l.tree(BiomeDefinitionsPath(l.desc), l.desc.BiomeEncoding); err != nil {
		return nil, err
	}
	if b.Entities, b.SerialisedEntities, err = l.tree(EntityIdentifiersPath(l.desc), l.desc.EntityEncoding); err != nil {
		return nil, err
	}

	b.Items, err = palette.ReadItemPalette(l.fsys, l.desc)
	if l.skip(err) {
		b.Items, err = l.canonical.ItemEntries(), nil
	}
	if err != nil {
		return nil, err
	}

	// Creative block states always resolve against the canonical block
	// palette, the one the creative stacks are sent with.
	b.Creative, err = palette.ReadCreativeItems(l.fsys, l.desc, b.Items, l.canonical.BlockStates())
	if l.skip(err) {
		b.Creative, err = l.canonical.CreativeItems(), nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// tree decodes an NBT resource and re-encodes it in network NBT.
func (l *loader) tree(file string, enc version.Encoding) (map[string]any, []byte, error) {
	f, err := l.fsys.Open(file)
	if err != nil {
		if l.skip(err) {
			return nil, nil, nil
		}
		return nil, nil, errs.NewConfigError(l.desc.Version, file, err)
	}
	defer f.Close()
	m, err := nbtutil.Decode(f, enc)
	if err != nil {
		return nil, nil, errs.NewConfigError(l.desc.Version, file, err)
	}
	data, err := nbtutil.EncodeBytes(m, version.Network)
	if err != nil {
		return nil, nil, errs.NewConfigError(l.desc.Version, file, err)
	}
	return m, data, nil
}
