package spacepacket

import "github.com/lumen-space/spacepacket/bitio"

// Extractor consumes a Space Packet from a borrowed Buffer presumed to
// contain exactly one packet. It never writes to the buffer.
type Extractor struct {
	Primary   *PrimaryHeader
	Secondary *SecondaryHeader

	data *bitio.Reader
}

// NewExtractor deserializes the primary header, then the caller-typed
// secondary header (pass EmptySecondaryHeader() if none is expected),
// and positions a Reader at the start of the user data.
func NewExtractor(buf bitio.Buffer, secondary *SecondaryHeader) *Extractor {
	headerBuf := buf.Slice(0, PrimaryHeaderSize)
	hr := bitio.NewReader(&headerBuf)
	primary := NewPrimaryHeader()
	primary.Deserialize(hr)

	secSize := secondary.Size()
	if secSize > 0 {
		secBuf := buf.Slice(PrimaryHeaderSize, PrimaryHeaderSize+secSize)
		sr := bitio.NewReader(&secBuf)
		secondary.Deserialize(sr)
	}

	userBuf := buf.Slice(PrimaryHeaderSize+secSize, buf.Size())
	return &Extractor{
		Primary:   primary,
		Secondary: secondary,
		data:      bitio.NewReader(&userBuf),
	}
}

// Data returns a Reader positioned at the start of the user data,
// whose remaining length is buffer_size - 6 - secSize octets.
func (e *Extractor) Data() *bitio.Reader {
	return e.data
}
