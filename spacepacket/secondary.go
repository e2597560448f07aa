package spacepacket

import (
	"github.com/lumen-space/spacepacket/bitio"
	"github.com/lumen-space/spacepacket/field"
)

// SecondaryHeader is a (time_code, ancillary) tuple; both members must
// be of integral-octet width. Go has no equivalent of the source's
// SpSecondaryHeader<TC,Ancilliary> template parametrization (there is
// no non-type width parameter to check at compile time), so the width
// invariant is enforced once, at construction, per the composition
// design note's constructor-time fallback.
type SecondaryHeader struct {
	TimeCode  field.Serializable
	Ancillary field.Serializable
}

// NewSecondaryHeader composes a secondary header from a time-code
// field and an ancillary-data field. It panics if either member's
// width is not a whole number of octets (pink book, sections
// 4.1.3.2.2.1 and 4.1.3.2.3).
func NewSecondaryHeader(timeCode, ancillary field.Serializable) *SecondaryHeader {
	if timeCode.WidthBits()%8 != 0 {
		panic("spacepacket: time code field must consist of an integral number of octets")
	}
	if ancillary.WidthBits()%8 != 0 {
		panic("spacepacket: ancillary data field must consist of an integral number of octets")
	}
	return &SecondaryHeader{TimeCode: timeCode, Ancillary: ancillary}
}

// EmptySecondaryHeader returns the zero-width secondary header used to
// signal "no secondary header present".
func EmptySecondaryHeader() *SecondaryHeader {
	return &SecondaryHeader{TimeCode: field.Empty(), Ancillary: field.Empty()}
}

// Size returns the secondary header's octet size, 0 if empty.
func (s *SecondaryHeader) Size() int {
	if s == nil {
		return 0
	}
	return (s.TimeCode.WidthBits() + s.Ancillary.WidthBits()) / 8
}

// Serialize writes the time code then the ancillary data.
func (s *SecondaryHeader) Serialize(w *bitio.Writer) {
	if s == nil {
		return
	}
	s.TimeCode.Serialize(w)
	s.Ancillary.Serialize(w)
}

// Deserialize reads the time code then the ancillary data.
func (s *SecondaryHeader) Deserialize(r *bitio.Reader) {
	if s == nil {
		return
	}
	s.TimeCode.Deserialize(r)
	s.Ancillary.Deserialize(r)
}
