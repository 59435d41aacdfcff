package host

import (
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// PacketSendEvent is fired before a packet is written to a client.
// Subscribers may modify the packet in place or cancel sending it.
type PacketSendEvent struct {
	session   Session
	packet    packet.Packet
	cancelled bool
}

// NewPacketSendEvent returns a new PacketSendEvent.
func NewPacketSendEvent(s Session, pk packet.Packet) *PacketSendEvent {
	return &PacketSendEvent{session: s, packet: pk}
}

// Session is the client the packet is sent to.
func (e *PacketSendEvent) Session() Session { return e.session }

// Packet is the packet to send.
func (e *PacketSendEvent) Packet() packet.Packet { return e.packet }

// SetCancelled sets whether the packet is dropped.
func (e *PacketSendEvent) SetCancelled(cancelled bool) { e.cancelled = cancelled }

// Cancelled reports whether the packet is dropped.
func (e *PacketSendEvent) Cancelled() bool { return e.cancelled }

// PacketReceiveEvent is fired after a packet was read from a client and
// before the server handles it.
type PacketReceiveEvent struct {
	session   Session
	packet    packet.Packet
	cancelled bool
}

// NewPacketReceiveEvent returns a new PacketReceiveEvent.
func NewPacketReceiveEvent(s Session, pk packet.Packet) *PacketReceiveEvent {
	return &PacketReceiveEvent{session: s, packet: pk}
}

// Session is the client the packet was received from.
func (e *PacketReceiveEvent) Session() Session { return e.session }

// Packet is the received packet.
func (e *PacketReceiveEvent) Packet() packet.Packet { return e.packet }

// SetCancelled sets whether the packet is discarded.
func (e *PacketReceiveEvent) SetCancelled(cancelled bool) { e.cancelled = cancelled }

// Cancelled reports whether the packet is discarded.
func (e *PacketReceiveEvent) Cancelled() bool { return e.cancelled }
