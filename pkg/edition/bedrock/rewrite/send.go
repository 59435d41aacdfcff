package rewrite

import (
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/host"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
)

// blockSounds are the sound events whose extra data is a block runtime id.
var blockSounds = map[uint32]bool{
	packet.SoundEventPlace:      true,
	packet.SoundEventBreak:      true,
	packet.SoundEventBreakBlock: true,
	packet.SoundEventStep:       true,
	packet.SoundEventHeavyStep:  true,
	packet.SoundEventJump:       true,
	packet.SoundEventFall:       true,
	packet.SoundEventFallBig:    true,
	packet.SoundEventFallSmall:  true,
}

// HandleSend rewrites a packet about to be sent to s and reports whether it
// must be cancelled.
func (r *Rewriter) HandleSend(s host.Session, pk packet.Packet) (cancel bool) {
	if status, ok := pk.(*packet.PlayStatus); ok && status.Status == packet.PlayStatusLoginFailedClient {
		if d, ok := r.reg.ByProtocol(s.Protocol()); ok {
			// The rejection still goes out if the client cannot be told
			// the network settings.
			return r.allowLogin(s, d)
		}
		return false
	}

	d, ok := r.legacy(s)
	if !ok {
		return false
	}
	if !r.rewriteSend(d, pk) {
		r.log.V(1).Info("unhandled outbound packet kind", "id", pk.ID(), "version", d.Version)
	}
	return false
}

// allowLogin replaces the rejection of a client that the canonical codec
// considers outdated with the network settings negotiation. It reports
// whether the network settings were written.
func (r *Rewriter) allowLogin(s host.Session, d *version.Descriptor) bool {
	settings := &packet.NetworkSettings{
		CompressionThreshold: r.compressionThreshold,
		CompressionAlgorithm: r.compressionAlgorithm,
	}
	if err := s.WritePacketImmediately(settings); err != nil {
		r.log.Error(err, "error writing network settings to legacy client", "version", d.Version)
		return false
	}
	algorithm := settings.CompressionAlgorithm
	r.scheduler.ScheduleDelayed(1, func() {
		s.SetCompression(algorithm)
	})
	r.log.V(1).Info("allowed login of legacy client", "version", d.Version)
	return true
}

// rewriteSend translates pk from canonical to legacy id space and reports
// whether the packet kind is known.
func (r *Rewriter) rewriteSend(d *version.Descriptor, pk packet.Packet) bool {
	p := d.Protocol
	switch pk := pk.(type) {
	case *packet.AvailableActorIdentifiers:
		if data, ok := r.catalog.SerialisedEntityIdentifiers(p); ok {
			pk.SerialisedEntityIdentifiers = data
			r.log.V(1).Info("replaced entity identifiers", "version", d.Version)
		}
	case *packet.BiomeDefinitionList:
		if data, ok := r.catalog.SerialisedBiomeDefinitions(p); ok {
			pk.SerialisedBiomeDefinitions = data
			r.log.V(1).Info("replaced biome definitions", "version", d.Version)
		}
	case *packet.StartGame:
		pk.Items = r.catalog.ItemPalette(p)
		r.log.V(1).Info("replaced item palette", "version", d.Version)
	case *packet.CreativeContent:
		creative := r.catalog.CreativeItems(r.reg.Canonical().Protocol)
		items := make([]protocol.CreativeItem, len(creative))
		for i, it := range creative {
			items[i] = protocol.CreativeItem{
				CreativeItemNetworkID: it.CreativeItemNetworkID,
				Item:                  r.translator.Item(p, it.Item, true),
			}
		}
		pk.Items = items
		r.log.V(1).Info("replaced creative items", "version", d.Version, "items", len(items))
	case *packet.InventoryContent:
		for i := range pk.Content {
			r.item(p, &pk.Content[i], true)
		}
	case *packet.InventorySlot:
		r.item(p, &pk.NewItem, true)
	case *packet.InventoryTransaction:
		r.inventoryTransaction(p, pk, true)
	case *packet.MobEquipment:
		r.item(p, &pk.NewItem, true)
	case *packet.MobArmourEquipment:
		r.item(p, &pk.Helmet, true)
		r.item(p, &pk.Chestplate, true)
		r.item(p, &pk.Leggings, true)
		r.item(p, &pk.Boots, true)
	case *packet.UpdateBlock:
		pk.NewBlockRuntimeID = r.translator.BlockRuntimeID(p, pk.NewBlockRuntimeID, true)
	case *packet.LevelChunk:
		r.levelChunk(d, pk)
	case *packet.CraftingData:
		r.craftingData(p, pk)
	case *packet.AddPlayer:
		r.item(p, &pk.HeldItem, true)
	case *packet.AddItemActor:
		r.item(p, &pk.Item, true)
	case *packet.LevelEvent:
		switch pk.EventType {
		case packet.LevelEventParticlesDestroyBlock, packet.LevelEventParticlesCrackBlock:
			pk.EventData = int32(r.translator.BlockRuntimeID(p, uint32(pk.EventData), true))
		}
	case *packet.LevelSoundEvent:
		if blockSounds[pk.SoundType] && pk.ExtraData > 0 {
			pk.ExtraData = int32(r.translator.BlockRuntimeID(p, uint32(pk.ExtraData), true))
		}
	case *packet.PlayStatus, *packet.NetworkSettings, *packet.RequestNetworkSettings:
		// nothing to translate
	default:
		return false
	}
	return true
}

func (r *Rewriter) levelChunk(d *version.Descriptor, pk *packet.LevelChunk) {
	if r.chunks == nil {
		return
	}
	payload, err := r.chunks.SerializeChunk(pk.Position, pk.Dimension, func(id uint32) uint32 {
		return r.translator.BlockRuntimeID(d.Protocol, id, true)
	})
	if err != nil {
		r.log.Error(err, "error serializing chunk for legacy client, sending canonical chunk",
			"version", d.Version, "pos", pk.Position, "dimension", pk.Dimension)
		return
	}
	pk.RawPayload = payload
}
