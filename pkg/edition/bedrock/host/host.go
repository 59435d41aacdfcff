// Package host defines what the translation layer needs from the server it
// runs in: access to client sessions, a tick scheduler, chunk serialization
// and the packet events it hooks into.
package host

import (
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
)

// Session is the connection of a Bedrock client.
type Session interface {
	// Protocol is the protocol number the client negotiated,
	// or 0 if the client did not yet request network settings.
	Protocol() int32
	// SetCodec switches the packet codec of the connection.
	SetCodec(version.Codec)
	// SetCompression enables compression with one of the
	// packet.CompressionAlgorithm* values.
	SetCompression(algorithm uint16)
	// WritePacketImmediately writes a packet bypassing the send queue
	// and without firing a PacketSendEvent.
	WritePacketImmediately(packet.Packet) error
}

// Scheduler runs tasks on the server's tick loop.
type Scheduler interface {
	// ScheduleDelayed runs fn once, the given number of ticks from now.
	ScheduleDelayed(ticks int, fn func())
}

// RewriteFunc maps the block runtime id of a chunk's block storage.
type RewriteFunc func(runtimeID uint32) uint32

// ChunkSerializer serializes the block storage of loaded chunks.
type ChunkSerializer interface {
	// SerializeChunk serializes the chunk at pos in dimension as sent in a
	// LevelChunk payload, passing every block runtime id through rewrite.
	SerializeChunk(pos protocol.ChunkPos, dimension int32, rewrite RewriteFunc) ([]byte, error)
}
