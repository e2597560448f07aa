package spacepacket

import (
	"fmt"
	"io"

	"github.com/lumen-space/spacepacket/bitio"
)

// ReadPackets reads r as a back-to-back stream of Space Packets with
// no framing between them, reading each packet's primary header
// first to determine its total octet length, then passing the whole
// packet to callback. The same backing array is reused for every
// call; a callback that needs to retain a packet must copy it.
func ReadPackets(r io.Reader, callback func(raw []byte)) error {
	buf := make([]byte, MaxPacketSize)
	for {
		if err := readFull(r, buf[:PrimaryHeaderSize]); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("spacepacket: reading primary header: %w", err)
		}

		headerBuf := bitio.Borrow(buf[:PrimaryHeaderSize])
		primary := NewPrimaryHeader()
		primary.Deserialize(bitio.NewReader(&headerBuf))
		bodyLen := primary.LengthOctets()
		total := PrimaryHeaderSize + bodyLen
		if total > MaxPacketSize {
			return fmt.Errorf("spacepacket: packet length %d exceeds maximum packet size", total)
		}

		if err := readFull(r, buf[PrimaryHeaderSize:total]); err != nil {
			return fmt.Errorf("spacepacket: reading packet body (%d octets): %w", bodyLen, err)
		}

		callback(buf[:total])
	}
}

func readFull(r io.Reader, p []byte) error {
	_, err := io.ReadFull(r, p)
	return err
}
