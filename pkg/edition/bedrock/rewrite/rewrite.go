// Package rewrite translates packets exchanged with clients of legacy protocol
// versions between their id space and the canonical one of the server.
//
// Rewrites mutate packets in place. The only packet ever dropped is the
// login rejection of a supported legacy client, which is replaced by the
// network settings negotiation.
package rewrite

import (
	"errors"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/host"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/mapping"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/resource"
)

// Options are the dependencies of a Rewriter.
type Options struct {
	Registry   *version.Registry   // required
	Catalog    *resource.Catalog   // required
	Translator *mapping.Translator // required
	Scheduler  host.Scheduler      // required
	// Chunks re-serializes chunks for legacy clients.
	// LevelChunk packets are passed through unchanged if nil.
	Chunks host.ChunkSerializer

	// CompressionAlgorithm and CompressionThreshold are sent in the
	// NetworkSettings that replace a login rejection.
	CompressionAlgorithm uint16
	CompressionThreshold uint16

	Logger logr.Logger
}

// Rewriter rewrites the packets of legacy clients.
// It holds no per-session state and is safe for concurrent use.
type Rewriter struct {
	reg        *version.Registry
	catalog    *resource.Catalog
	translator *mapping.Translator
	scheduler  host.Scheduler
	chunks     host.ChunkSerializer

	compressionAlgorithm uint16
	compressionThreshold uint16

	log logr.Logger
}

// New returns a new Rewriter.
func New(opts Options) (*Rewriter, error) {
	switch {
	case opts.Registry == nil:
		return nil, errors.New("missing protocol registry")
	case opts.Catalog == nil:
		return nil, errors.New("missing resource catalog")
	case opts.Translator == nil:
		return nil, errors.New("missing mapping translator")
	case opts.Scheduler == nil:
		return nil, errors.New("missing scheduler")
	}
	return &Rewriter{
		reg:                  opts.Registry,
		catalog:              opts.Catalog,
		translator:           opts.Translator,
		scheduler:            opts.Scheduler,
		chunks:               opts.Chunks,
		compressionAlgorithm: opts.CompressionAlgorithm,
		compressionThreshold: opts.CompressionThreshold,
		log:                  opts.Logger.WithName("rewrite"),
	}, nil
}

// Subscribe registers the Rewriter for the packet events fired on mgr.
// Cancelled events are skipped.
func (r *Rewriter) Subscribe(mgr event.Manager) (unsubscribe func()) {
	unsubSend := event.Subscribe(mgr, 0, func(e *host.PacketSendEvent) {
		if e.Cancelled() {
			return
		}
		if r.HandleSend(e.Session(), e.Packet()) {
			e.SetCancelled(true)
		}
	})
	unsubReceive := event.Subscribe(mgr, 0, func(e *host.PacketReceiveEvent) {
		if e.Cancelled() {
			return
		}
		if r.HandleReceive(e.Session(), e.Packet()) {
			e.SetCancelled(true)
		}
	})
	return func() {
		unsubSend()
		unsubReceive()
	}
}

// legacy returns the descriptor of the session's protocol if its packets
// must be translated.
func (r *Rewriter) legacy(s host.Session) (*version.Descriptor, bool) {
	d, ok := r.reg.ByProtocol(s.Protocol())
	if !ok || !r.reg.NeedsTranslation(d.Protocol) {
		return nil, false
	}
	return d, true
}

// item translates the stack of an item instance in place. The stack network
// id is kept.
func (r *Rewriter) item(p int32, it *protocol.ItemInstance, toOlder bool) {
	it.Stack = r.translator.Item(p, it.Stack, toOlder)
}

func (r *Rewriter) inventoryTransaction(p int32, pk *packet.InventoryTransaction, toOlder bool) {
	for i := range pk.Actions {
		a := &pk.Actions[i]
		r.item(p, &a.OldItem, toOlder)
		r.item(p, &a.NewItem, toOlder)
	}
	switch data := pk.TransactionData.(type) {
	case *protocol.UseItemTransactionData:
		r.item(p, &data.HeldItem, toOlder)
		data.BlockRuntimeID = r.translator.BlockRuntimeID(p, data.BlockRuntimeID, toOlder)
	case *protocol.UseItemOnEntityTransactionData:
		r.item(p, &data.HeldItem, toOlder)
	case *protocol.ReleaseItemTransactionData:
		r.item(p, &data.HeldItem, toOlder)
	}
}
