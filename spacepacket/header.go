// Package spacepacket assembles and extracts CCSDS Space Packets
// (CCSDS 133.0-B, the "pink book"): a 6-octet primary header, an
// optional secondary header, and a user data field.
package spacepacket

import (
	"github.com/lumen-space/spacepacket/bitio"
	"github.com/lumen-space/spacepacket/field"
)

// PrimaryHeaderSize is the fixed octet size of a primary header.
const PrimaryHeaderSize = 6

// ApidIdle is the reserved all-ones APID denoting an idle packet
// (pink book, section 4.1.2.3.4.4).
const ApidIdle uint16 = 0x7FF

const (
	versionWidth  = 3
	apidWidth     = 11
	seqFlagsWidth = 2
	seqCountWidth = 14
	lengthWidth   = 16
)

// Sequence flag values (pink book, section 4.1.2.4.2.2).
const (
	SequenceContinuation uint8 = 0b00
	SequenceFirstSegment uint8 = 0b01
	SequenceLastSegment  uint8 = 0b10
	SequenceUnsegmented  uint8 = 0b11
)

// Packet type values (pink book, section 4.1.2.3.2.3).
const (
	PacketTypeTelemetry   uint8 = 0
	PacketTypeTelecommand uint8 = 1
)

// PrimaryHeader is the fixed 48-bit CCSDS primary header, encoded in
// the field order given by the pink book: version, type,
// sec_hdr_flag, apid, sequence_flags, sequence_count, length.
type PrimaryHeader struct {
	Version        *field.Field[uint8]
	Type           *field.Flag
	SecHdrFlag     *field.Flag
	Apid           *field.Field[uint16]
	SequenceFlags  *field.Field[uint8]
	SequenceCount  *field.Field[uint16]
	Length         *field.Field[uint16]
}

// NewPrimaryHeader constructs a zeroed primary header.
func NewPrimaryHeader() *PrimaryHeader {
	return &PrimaryHeader{
		Version:       field.New[uint8](versionWidth),
		Type:          field.NewFlag(),
		SecHdrFlag:    field.NewFlag(),
		Apid:          field.New[uint16](apidWidth),
		SequenceFlags: field.New[uint8](seqFlagsWidth),
		SequenceCount: field.New[uint16](seqCountWidth),
		Length:        field.New[uint16](lengthWidth),
	}
}

// Serialize writes the seven fields in wire order.
func (h *PrimaryHeader) Serialize(w *bitio.Writer) {
	h.Version.Serialize(w)
	h.Type.Serialize(w)
	h.SecHdrFlag.Serialize(w)
	h.Apid.Serialize(w)
	h.SequenceFlags.Serialize(w)
	h.SequenceCount.Serialize(w)
	h.Length.Serialize(w)
}

// Deserialize reads the seven fields in wire order.
func (h *PrimaryHeader) Deserialize(r *bitio.Reader) {
	h.Version.Deserialize(r)
	h.Type.Deserialize(r)
	h.SecHdrFlag.Deserialize(r)
	h.Apid.Deserialize(r)
	h.SequenceFlags.Deserialize(r)
	h.SequenceCount.Deserialize(r)
	h.Length.Deserialize(r)
}

// LengthOctets returns the octet count of the packet data field
// (secondary header + user data): the stored value plus one.
func (h *PrimaryHeader) LengthOctets() int {
	return int(h.Length.Value()) + 1
}

// SetLengthOctets stores n-1 as the length field; the caller must
// guarantee n >= 1.
func (h *PrimaryHeader) SetLengthOctets(n int) {
	h.Length.SetValue(uint16(n - 1))
}

// IsIdle reports whether the APID is the reserved idle value.
func (h *PrimaryHeader) IsIdle() bool {
	return h.Apid.Value() == ApidIdle
}

// IsValid enforces the one primary-header-local invariant from the
// spec: idle packets forbid a secondary header.
func (h *PrimaryHeader) IsValid() bool {
	return !(h.IsIdle() && h.SecHdrFlag.IsSet())
}
