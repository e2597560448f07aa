package spacepacket

import (
	"bytes"
	"testing"

	"github.com/lumen-space/spacepacket/bitio"
	"github.com/lumen-space/spacepacket/field"
)

func TestBuilderEmptyTelemetryNoSecondaryHeader(t *testing.T) {
	buf := bitio.NewBuffer(7)
	b := NewBuilder(buf, EmptySecondaryHeader())
	b.Primary.Version.SetValue(0)
	b.Primary.Type.Reset()
	b.Primary.Apid.SetValue(0x002)
	b.Primary.SequenceFlags.SetValue(SequenceUnsegmented)
	field.NewValue[uint8](8, 0xAB).Serialize(b.Data())

	if err := b.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !b.IsValid() {
		t.Fatal("expected valid packet")
	}

	want := []byte{0x00, 0x02, 0xC0, 0x00, 0x00, 0x00, 0xAB}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % X, want % X", buf.Bytes(), want)
	}
}

func TestBuilder32BitAncillarySecondaryHeader(t *testing.T) {
	secondary := NewSecondaryHeader(field.Empty(), field.NewValue[uint32](32, 0x19999991))
	buf := bitio.NewBuffer(6 + 4 + 12)
	b := NewBuilder(buf, secondary)
	b.Primary.Apid.SetValue(0x01F)
	b.Primary.SequenceFlags.SetValue(SequenceUnsegmented)

	field.NewValue[uint64](64, 0xEEEECCCCB000000B).Serialize(b.Data())
	field.NewValue[uint32](32, 0xFAAAAAAF).Serialize(b.Data())

	if err := b.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !b.IsValid() {
		t.Fatal("expected valid packet")
	}
	if got := b.Primary.LengthOctets(); got != 16 {
		t.Errorf("length_octets() = %d, want 16", got)
	}

	want := []byte{
		0x08, 0x1F, 0xC0, 0x00, 0x00, 0x0F,
		0x19, 0x99, 0x99, 0x91,
		0xEE, 0xEE, 0xCC, 0xCC, 0xB0, 0x00, 0x00, 0x0B,
		0xFA, 0xAA, 0xAA, 0xAF,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % X, want % X", buf.Bytes(), want)
	}
}

func TestIdleBuilderPattern(t *testing.T) {
	buf := bitio.NewBuffer(259)
	idle := NewIdleBuilder[uint8](buf, 0xFF)
	idle.Primary.SequenceFlags.SetValue(SequenceUnsegmented)

	if err := idle.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !idle.IsValid() {
		t.Fatal("expected valid idle packet")
	}

	wantHeader := []byte{0x07, 0xFF, 0xC0, 0x00, 0x00, 0xFC}
	got := buf.Bytes()
	if !bytes.Equal(got[:6], wantHeader) {
		t.Errorf("header: got % X, want % X", got[:6], wantHeader)
	}
	for i, b := range got[6:] {
		if b != 0xFF {
			t.Fatalf("body byte %d = %#x, want 0xFF", i, b)
		}
	}
}

func TestBuilderRejectsEmptyPacket(t *testing.T) {
	buf := bitio.NewBuffer(PrimaryHeaderSize)
	b := NewBuilder(buf, EmptySecondaryHeader())
	b.Finalize()
	if b.IsValid() {
		t.Error("expected an empty packet (no secondary header, no user data) to be invalid")
	}
}

func TestBuilderIdleWithSecondaryHeaderIsInvalid(t *testing.T) {
	secondary := NewSecondaryHeader(field.Empty(), field.NewValue[uint8](8, 0))
	buf := bitio.NewBuffer(PrimaryHeaderSize + 1 + 1)
	b := NewBuilder(buf, secondary)
	b.Primary.Apid.SetValue(ApidIdle)
	field.NewValue[uint8](8, 0).Serialize(b.Data())
	b.Finalize()
	if b.IsValid() {
		t.Error("expected an idle packet carrying a secondary header to be invalid")
	}
}
