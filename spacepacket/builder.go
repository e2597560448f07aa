package spacepacket

import (
	"errors"

	"github.com/lumen-space/spacepacket/bitio"
)

// ErrBadStream is returned when the bit codec's sticky bad flag was
// set during a serialize/deserialize pass.
var ErrBadStream = errors.New("spacepacket: bit stream overrun")

// MinPacketSize and MaxPacketSize bound a valid Space Packet's total
// octet size (pink book, section 4.1).
const (
	MinPacketSize = 7
	MaxPacketSize = 65542
)

// Builder produces a Space Packet into a caller-owned octet buffer by
// streaming a user data field, then finalizing the headers. The
// buffer is carved as [primary(6) | secondary(secSize) | user data].
type Builder struct {
	Primary   *PrimaryHeader
	Secondary *SecondaryHeader

	buf     bitio.Buffer
	data    *bitio.Writer
	secSize int
}

// NewBuilder attaches a Builder to buf, whose size must be the
// projected total packet size. secondary may be nil or
// EmptySecondaryHeader() to build without a secondary header.
func NewBuilder(buf bitio.Buffer, secondary *SecondaryHeader) *Builder {
	secSize := secondary.Size()
	if buf.Size() < PrimaryHeaderSize+secSize {
		panic("spacepacket: buffer too small for the primary and secondary headers")
	}
	userData := buf.Slice(PrimaryHeaderSize+secSize, buf.Size())
	return &Builder{
		Primary:   NewPrimaryHeader(),
		Secondary: secondary,
		buf:       buf,
		data:      bitio.NewWriter(&userData),
		secSize:   secSize,
	}
}

// Buffer returns the whole backing buffer, headers and user data
// alike -- the form a listener or sub-layer receives.
func (b *Builder) Buffer() bitio.Buffer {
	return b.buf
}

// APID returns the packet's application process identifier.
func (b *Builder) APID() uint16 {
	return b.Primary.Apid.Value()
}

// SetSequenceCount stamps the primary header's sequence count.
func (b *Builder) SetSequenceCount(v uint16) {
	b.Primary.SequenceCount.SetValue(v)
}

// Data returns the BitWriter over the user-data slice; callers write
// arbitrary fields, collections, or raw unsigned values into it.
func (b *Builder) Data() *bitio.Writer {
	return b.data
}

// Size returns the packet's total octet size so far:
// 6 + secSize + ceil(user_bits/8).
func (b *Builder) Size() int {
	return PrimaryHeaderSize + b.secSize + b.data.SizeBytes()
}

// Finalize sets sec_hdr_flag according to whether a secondary header
// is present, sets the primary length field, then serializes the
// primary and secondary headers at the start of the buffer. It is
// idempotent for unchanged state.
func (b *Builder) Finalize() error {
	if b.secSize > 0 {
		b.Primary.SecHdrFlag.Set()
	} else {
		b.Primary.SecHdrFlag.Reset()
	}
	b.Primary.SetLengthOctets(b.secSize + b.data.SizeBytes())

	headerBuf := b.buf.Slice(0, PrimaryHeaderSize)
	hw := bitio.NewWriter(&headerBuf)
	b.Primary.Serialize(hw)
	if hw.Bad() {
		return ErrBadStream
	}

	if b.secSize > 0 {
		secBuf := b.buf.Slice(PrimaryHeaderSize, PrimaryHeaderSize+b.secSize)
		sw := bitio.NewWriter(&secBuf)
		b.Secondary.Serialize(sw)
		if sw.Bad() {
			return ErrBadStream
		}
	}
	return nil
}

// IsValid enforces the full set of builder invariants: a secondary
// header or user data must be present; the user data must be a whole
// number of octets; the total size must fall in [7,65542]; sec_hdr_flag
// must agree with whether a secondary header is present; idle packets
// forbid a secondary header; the stored length must equal
// secSize+userBytes; and the primary header itself must be valid.
func (b *Builder) IsValid() bool {
	userBytes := b.data.SizeBytes()

	if b.secSize == 0 && userBytes == 0 {
		return false
	}
	if b.data.WidthBits()%8 != 0 {
		return false
	}
	total := b.Size()
	if total < MinPacketSize || total > MaxPacketSize {
		return false
	}
	wantSecFlag := b.secSize > 0
	if b.Primary.SecHdrFlag.IsSet() != wantSecFlag {
		return false
	}
	if b.Primary.IsIdle() && b.secSize > 0 {
		return false
	}
	if b.Primary.LengthOctets() != b.secSize+userBytes {
		return false
	}
	return b.Primary.IsValid()
}
