// Package mapping translates item and block runtime ids, block definitions
// and item stacks between legacy protocol versions and the canonical one.
//
// Lookups never fail: ids without a counterpart in the target version are
// replaced by the placeholder (stone) of that version.
package mapping

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/palette"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
	"github.com/JukeboxMC/JBackwards/pkg/util/errs"
)

var tracer = otel.Tracer("bedrock/mapping")

// Translator holds the mapping tables of all legacy versions.
// It is immutable after Load and safe for concurrent use.
type Translator struct {
	reg    *version.Registry
	tables map[int32]*table

	// canonical blocks by runtime id
	canonicalBlocks map[uint32]palette.Block
	stoneItem       int32
	stoneBlock      palette.Block

	misses metric.Int64Counter
}

// Load reads the mapping tables of all legacy versions of reg from fsys.
// The canonical palette provides the block definitions and placeholder ids
// of the canonical version.
func Load(ctx context.Context, fsys fs.FS, reg *version.Registry, canonical palette.Palette) (*Translator, error) {
	ctx, span := tracer.Start(ctx, "mapping.Load", trace.WithAttributes(
		attribute.String("versions", reg.String()),
	))
	defer span.End()

	log := logr.FromContextOrDiscard(ctx).WithName("mapping")

	stoneItem, ok := palette.ItemByName(canonical.ItemEntries(), palette.PlaceholderIdentifier)
	if !ok {
		return nil, fmt.Errorf("canonical item palette has no %s: %w", palette.PlaceholderIdentifier, errs.ErrNoPlaceholder)
	}
	stoneBlock, ok := palette.BlockByName(canonical.BlockStates(), palette.PlaceholderIdentifier)
	if !ok {
		return nil, fmt.Errorf("canonical block palette has no %s: %w", palette.PlaceholderIdentifier, errs.ErrNoPlaceholder)
	}

	// The meter is resolved per Load to follow replacements of the global provider.
	misses, err := otel.Meter("bedrock/mapping").Int64Counter("backwards.translation_misses",
		metric.WithDescription("Runtime ids without counterpart that were replaced by the placeholder"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating translation miss counter: %w", err)
	}

	t := &Translator{
		reg:             reg,
		tables:          make(map[int32]*table, len(reg.Legacy())),
		canonicalBlocks: make(map[uint32]palette.Block),
		stoneItem:       int32(stoneItem.RuntimeID),
		stoneBlock:      stoneBlock,
		misses:          misses,
	}
	for _, b := range canonical.BlockStates() {
		if _, ok := t.canonicalBlocks[b.RuntimeID]; !ok {
			t.canonicalBlocks[b.RuntimeID] = b
		}
	}

	legacy := reg.Legacy()
	tables := make([]*table, len(legacy))
	eg, ctx := errgroup.WithContext(ctx)
	for i, d := range legacy {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			l := tableLoader{
				fsys:       fsys,
				desc:       d,
				canonical:  reg.Canonical(),
				stoneBlock: stoneBlock.RuntimeID,
			}
			tbl, err := l.load()
			if err != nil {
				return err
			}
			tables[i] = tbl
			log.V(1).Info("loaded mappings", "version", d.Version,
				"items", len(tbl.entries), "blocks", len(tbl.blockToCanonical),
				"placeholderItem", tbl.placeholder.Item, "placeholderBlock", tbl.placeholder.Block)
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	for _, tbl := range tables {
		t.tables[tbl.desc.Protocol] = tbl
	}
	return t, nil
}

// Placeholder returns the legacy placeholder ids of a protocol.
// It reports false for the canonical and unknown protocols.
func (t *Translator) Placeholder(protocol int32) (Placeholder, bool) {
	tbl, ok := t.tables[protocol]
	if !ok {
		return Placeholder{}, false
	}
	return tbl.placeholder, true
}

// CanonicalPlaceholder returns the canonical placeholder ids.
func (t *Translator) CanonicalPlaceholder() Placeholder {
	return Placeholder{Item: t.stoneItem, Block: t.stoneBlock.RuntimeID}
}

// Entries returns the item mapping entries of a protocol in file order.
// The returned slice must not be modified.
func (t *Translator) Entries(protocol int32) []ItemEntry {
	if tbl, ok := t.tables[protocol]; ok {
		return tbl.entries
	}
	return nil
}

// ItemRuntimeID translates an item runtime id. If toOlder is true, id is a
// canonical id and the id of the legacy protocol is returned, otherwise the
// reverse. Ids of the canonical or unknown protocols are returned unchanged.
func (t *Translator) ItemRuntimeID(protocol, id int32, toOlder bool) int32 {
	tbl, ok := t.tables[protocol]
	if !ok {
		return id
	}
	if toOlder {
		if old, ok := tbl.itemToOld[id]; ok {
			return old
		}
		t.miss(protocol, "item")
		return tbl.placeholder.Item
	}
	if canonical, ok := tbl.itemToCanonical[id]; ok {
		return canonical
	}
	t.miss(protocol, "item")
	return t.stoneItem
}

// BlockRuntimeID translates a block runtime id like ItemRuntimeID.
func (t *Translator) BlockRuntimeID(protocol int32, id uint32, toOlder bool) uint32 {
	tbl, ok := t.tables[protocol]
	if !ok {
		return id
	}
	if toOlder {
		if old, ok := tbl.blockToOld[id]; ok {
			return old
		}
		t.miss(protocol, "block")
		return tbl.placeholder.Block
	}
	if canonical, ok := tbl.blockToCanonical[id]; ok {
		return canonical
	}
	t.miss(protocol, "block")
	return t.stoneBlock.RuntimeID
}

// BlockDefinition translates a block state. The returned block is rebuilt
// from the block palette of the target version and owns its properties.
func (t *Translator) BlockDefinition(protocol int32, b palette.Block, toOlder bool) palette.Block {
	tbl, ok := t.tables[protocol]
	if !ok {
		return b
	}
	id := t.BlockRuntimeID(protocol, b.RuntimeID, toOlder)
	if toOlder {
		if old, ok := tbl.blocks[id]; ok {
			return old.Clone()
		}
		placeholder := palette.Block{RuntimeID: tbl.placeholder.Block}
		placeholder.Name = palette.PlaceholderIdentifier
		placeholder.Properties = map[string]any{}
		return placeholder
	}
	if canonical, ok := t.canonicalBlocks[id]; ok {
		return canonical.Clone()
	}
	return t.stoneBlock.Clone()
}

func (t *Translator) miss(protocol int32, kind string) {
	t.misses.Add(context.Background(), 1, metric.WithAttributes(
		attribute.Int("protocol", int(protocol)),
		attribute.String("kind", kind),
	))
}
