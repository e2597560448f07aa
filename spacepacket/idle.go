package spacepacket

import (
	"unsafe"

	"github.com/lumen-space/spacepacket/bitio"
)

// IdleBuilder is a Builder specialization with no secondary header,
// used to generate filler packets on a fixed-rate link. The fill
// pattern and its type are part of the packet shape, encoded here as
// the type parameter to NewIdleBuilder (the closest Go equivalent of
// the source's compile-time IdlePattern descriptor).
type IdleBuilder struct {
	*Builder
}

// NewIdleBuilder attaches an IdleBuilder to buf (sized to the
// projected total packet size), sets APID to the reserved idle value,
// and fills the entire user-data slice with whole copies of pattern
// followed by a big-endian-truncated residue. The caller sets
// SequenceFlags afterward; unsegmented is the common choice for idle
// packets.
func NewIdleBuilder[P bitio.Unsigned](buf bitio.Buffer, pattern P) *IdleBuilder {
	b := NewBuilder(buf, EmptySecondaryHeader())
	b.Primary.Apid.SetValue(ApidIdle)
	fillIdlePattern(b.data, pattern)
	return &IdleBuilder{Builder: b}
}

func fillIdlePattern[P bitio.Unsigned](w *bitio.Writer, pattern P) {
	var zero P
	patSize := int(unsafe.Sizeof(zero))
	total := w.MaxBits() / 8

	whole := total / patSize
	for i := 0; i < whole; i++ {
		w.Put(uint64(pattern), patSize*8, false)
	}

	residue := total - whole*patSize
	if residue > 0 {
		shift := uint((patSize - residue) * 8)
		w.Put(uint64(pattern)>>shift, residue*8, false)
	}
}
