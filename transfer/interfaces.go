// Package transfer implements the Space Packet pub/sub dispatch hub:
// producers hand a completed packet to Transmit, the service stamps
// its per-APID sequence count, validates it, dispatches it to matching
// listeners, and optionally forwards it to a sub-layer; inbound
// packets arrive from that same sub-layer through
// ReceiveFromSubLayer.
package transfer

import (
	"github.com/lumen-space/spacepacket/bitio"
)

// Listener is notified synchronously, during Transmit or
// ReceiveFromSubLayer, of a packet's whole backing buffer. Listeners
// must not retain the buffer beyond the call, and must not mutate it.
type Listener interface {
	OnPacket(buf bitio.Buffer)
}

// SubLayer is the one downstream communication layer a Service may
// forward outbound packets to. It delivers inbound packets by calling
// back into Service.ReceiveFromSubLayer.
type SubLayer interface {
	PushOutbound(buf bitio.Buffer) error
}

// Packet is the minimal surface Transmit needs: both
// *spacepacket.Builder and *spacepacket.IdleBuilder satisfy it.
type Packet interface {
	Finalize() error
	IsValid() bool
	Buffer() bitio.Buffer
	APID() uint16
	SetSequenceCount(uint16)
}
