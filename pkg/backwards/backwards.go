// Package backwards lets clients of older Bedrock protocol versions join a
// server that only speaks the newest one, by translating their packets on
// the packet events of the host.
package backwards

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/JukeboxMC/JBackwards/pkg/backwards/config"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/host"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/mapping"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/palette"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/resource"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/rewrite"
	"github.com/JukeboxMC/JBackwards/pkg/util/errs"
)

var tracer = otel.Tracer("backwards")

// Options are the options for a Backwards.
type Options struct {
	Config    *config.Config // required
	Event     event.Manager  // required
	Scheduler host.Scheduler // required

	// FS holds the bundled data files.
	// Defaults to the configured data directory.
	FS fs.FS
	// Palette is the canonical game data of the server. It is loaded from
	// the bundled files of the canonical version if nil, in which case the
	// canonical item palette, block palette and creative items are required.
	Palette palette.Palette
	// Chunks is optional, see rewrite.Options.
	Chunks host.ChunkSerializer
}

// Backwards is the translation layer subscribed to a host's packet events.
type Backwards struct {
	registry   *version.Registry
	palette    palette.Palette
	catalog    *resource.Catalog
	translator *mapping.Translator
	rewriter   *rewrite.Rewriter

	unsubscribe func()
}

// New loads the bundled data of all configured versions and subscribes the
// packet rewriter to opts.Event. The logger is taken from ctx.
func New(ctx context.Context, opts Options) (b *Backwards, err error) {
	if opts.Config == nil {
		return nil, errs.ErrMissingConfig
	}
	if opts.Event == nil {
		return nil, errors.New("event manager must not be nil")
	}
	if opts.Scheduler == nil {
		return nil, errors.New("scheduler must not be nil")
	}
	cfg := opts.Config
	if _, verrs := cfg.Validate(); len(verrs) != 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(verrs...))
	}
	log := logr.FromContextOrDiscard(ctx).WithName("backwards")

	ctx, span := tracer.Start(ctx, "backwards.New", trace.WithAttributes(
		attribute.String("dataDir", cfg.DataDir),
	))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
	}()

	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = os.DirFS(cfg.DataDir)
	}
	pal := opts.Palette
	if pal == nil {
		if pal, err = palette.Load(fsys, reg.Canonical()); err != nil {
			return nil, fmt.Errorf("error loading canonical palette: %w", err)
		}
	}

	b = &Backwards{registry: reg, palette: pal}
	if b.catalog, err = resource.Load(ctx, fsys, reg, pal); err != nil {
		return nil, err
	}
	if b.translator, err = mapping.Load(ctx, fsys, reg, pal); err != nil {
		return nil, err
	}

	algorithm, _ := cfg.Compression.Algorithm()
	b.rewriter, err = rewrite.New(rewrite.Options{
		Registry:             reg,
		Catalog:              b.catalog,
		Translator:           b.translator,
		Scheduler:            opts.Scheduler,
		Chunks:               opts.Chunks,
		CompressionAlgorithm: algorithm,
		CompressionThreshold: cfg.CompressionThreshold,
		Logger:               log,
	})
	if err != nil {
		return nil, err
	}
	b.unsubscribe = b.rewriter.Subscribe(opts.Event)

	log.Info("backwards compatibility enabled",
		"versions", reg.String(), "canonical", reg.Canonical().Version)
	return b, nil
}

// Close unsubscribes from the packet events.
func (b *Backwards) Close() {
	b.unsubscribe()
}

// Registry returns the supported protocol versions.
func (b *Backwards) Registry() *version.Registry { return b.registry }

// Catalog returns the resource catalog.
func (b *Backwards) Catalog() *resource.Catalog { return b.catalog }

// Translator returns the mapping translator.
func (b *Backwards) Translator() *mapping.Translator { return b.translator }

// Rewriter returns the packet rewriter.
func (b *Backwards) Rewriter() *rewrite.Rewriter { return b.rewriter }

// VersionStats describes the data loaded for one protocol version.
type VersionStats struct {
	Version       string
	Protocol      int32
	Canonical     bool
	Items         int
	CreativeItems int
	ItemMappings  int
	Biomes        bool
	Entities      bool
	Placeholder   mapping.Placeholder
}

// Stats returns the VersionStats of all supported versions, oldest first.
func (b *Backwards) Stats() []VersionStats {
	stats := make([]VersionStats, 0, len(b.registry.Supported()))
	for _, d := range b.registry.Supported() {
		s := VersionStats{
			Version:       d.Version,
			Protocol:      d.Protocol,
			Canonical:     !b.registry.NeedsTranslation(d.Protocol),
			Items:         len(b.catalog.ItemPalette(d.Protocol)),
			CreativeItems: len(b.catalog.CreativeItems(d.Protocol)),
			ItemMappings:  len(b.translator.Entries(d.Protocol)),
		}
		_, s.Biomes = b.catalog.BiomeDefinitions(d.Protocol)
		_, s.Entities = b.catalog.EntityIdentifiers(d.Protocol)
		if p, ok := b.translator.Placeholder(d.Protocol); ok {
			s.Placeholder = p
		} else {
			s.Placeholder = b.translator.CanonicalPlaceholder()
		}
		stats = append(stats, s)
	}
	return stats
}
