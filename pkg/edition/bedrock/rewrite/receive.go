package rewrite

import (
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/host"
)

// HandleReceive rewrites a packet received from s before the server handles
// it and reports whether it must be cancelled, which it never is.
func (r *Rewriter) HandleReceive(s host.Session, pk packet.Packet) (cancel bool) {
	if req, ok := pk.(*packet.RequestNetworkSettings); ok {
		// Unknown protocols keep the canonical codec, which rejects them.
		if d, ok := r.reg.ByProtocol(req.ClientProtocol); ok {
			s.SetCodec(d.Codec)
			r.log.V(1).Info("switched codec", "version", d.Version)
		}
		return false
	}

	d, ok := r.legacy(s)
	if !ok {
		return false
	}
	if pk, ok := pk.(*packet.InventoryTransaction); ok {
		r.inventoryTransaction(d.Protocol, pk, false)
	}
	return false
}
