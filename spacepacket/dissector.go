package spacepacket

import (
	"github.com/lumen-space/spacepacket/bitio"
	"github.com/lumen-space/spacepacket/field"
)

// Dissector matches a static field schema against a Space Packet for
// typed read/write round-trip: FromBuffer deserializes headers then
// fields; ToBuffer finalizes and serializes headers then fields. The
// total user-data bit width (the sum of the field widths) must be a
// multiple of 8, and either that sum or the secondary header's size
// must be positive.
type Dissector struct {
	Primary   *PrimaryHeader
	Secondary *SecondaryHeader
	Fields    *field.Collection

	secSize int
}

// NewDissector composes a dissector schema from an optional secondary
// header (nil or EmptySecondaryHeader() for none) and an ordered list
// of fields. It panics if the field width is not byte-aligned, or if
// both the secondary header and the fields are empty.
func NewDissector(secondary *SecondaryHeader, fields ...field.Serializable) *Dissector {
	secSize := secondary.Size()
	fc := field.NewCollection(fields...)
	if fc.WidthBits()%8 != 0 {
		panic("spacepacket: dissector field width must be an integral number of octets")
	}
	if fc.WidthBits() == 0 && secSize == 0 {
		panic("spacepacket: dissector must have a secondary header, field data, or both")
	}
	return &Dissector{
		Primary:   NewPrimaryHeader(),
		Secondary: secondary,
		Fields:    fc,
		secSize:   secSize,
	}
}

// Field returns the field at index i; an out-of-range index panics.
func (d *Dissector) Field(i int) field.Serializable {
	return d.Fields.Member(i)
}

// Size returns the packet's fixed total octet size.
func (d *Dissector) Size() int {
	return PrimaryHeaderSize + d.secSize + d.Fields.WidthBits()/8
}

// FromBuffer deserializes the primary header, secondary header, and
// fields from buf, in that order.
func (d *Dissector) FromBuffer(buf bitio.Buffer) error {
	headerBuf := buf.Slice(0, PrimaryHeaderSize)
	hr := bitio.NewReader(&headerBuf)
	d.Primary.Deserialize(hr)
	if hr.Bad() {
		return ErrBadStream
	}

	if d.secSize > 0 {
		secBuf := buf.Slice(PrimaryHeaderSize, PrimaryHeaderSize+d.secSize)
		sr := bitio.NewReader(&secBuf)
		d.Secondary.Deserialize(sr)
		if sr.Bad() {
			return ErrBadStream
		}
	}

	fieldBuf := buf.Slice(PrimaryHeaderSize+d.secSize, buf.Size())
	fr := bitio.NewReader(&fieldBuf)
	d.Fields.Deserialize(fr)
	if fr.Bad() {
		return ErrBadStream
	}
	return nil
}

// Finalize sets sec_hdr_flag and the primary length field from the
// dissector's fixed, compile-time-known size (mirroring Builder's
// Finalize).
func (d *Dissector) Finalize() {
	if d.secSize > 0 {
		d.Primary.SecHdrFlag.Set()
	} else {
		d.Primary.SecHdrFlag.Reset()
	}
	d.Primary.SetLengthOctets(d.secSize + d.Fields.WidthBits()/8)
}

// ToBuffer finalizes then serializes the primary header, secondary
// header, and fields into buf, in that order.
func (d *Dissector) ToBuffer(buf bitio.Buffer) error {
	d.Finalize()

	headerBuf := buf.Slice(0, PrimaryHeaderSize)
	hw := bitio.NewWriter(&headerBuf)
	d.Primary.Serialize(hw)
	if hw.Bad() {
		return ErrBadStream
	}

	if d.secSize > 0 {
		secBuf := buf.Slice(PrimaryHeaderSize, PrimaryHeaderSize+d.secSize)
		sw := bitio.NewWriter(&secBuf)
		d.Secondary.Serialize(sw)
		if sw.Bad() {
			return ErrBadStream
		}
	}

	fieldBuf := buf.Slice(PrimaryHeaderSize+d.secSize, buf.Size())
	fw := bitio.NewWriter(&fieldBuf)
	d.Fields.Serialize(fw)
	if fw.Bad() {
		return ErrBadStream
	}
	return nil
}
