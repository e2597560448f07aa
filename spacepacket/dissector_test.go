package spacepacket

import (
	"bytes"
	"testing"

	"github.com/lumen-space/spacepacket/bitio"
	"github.com/lumen-space/spacepacket/field"
)

func newScenarioDissector() *Dissector {
	return NewDissector(EmptySecondaryHeader(),
		field.NewValue[uint64](64, 0),
		field.NewValue[uint8](4, 0),
		field.NewFlag(),
		field.NewFlag(),
		field.NewFlag(),
		field.NewFlag(),
		field.NewValue[uint32](24, 0),
		field.NewValue[uint8](8, 0),
	)
}

func TestDissectorRoundTrip(t *testing.T) {
	d := newScenarioDissector()
	d.Primary.Apid.SetValue(0x055)
	d.Primary.SequenceFlags.SetValue(SequenceUnsegmented)

	d.Field(0).(*field.Field[uint64]).SetValue(0x0123456789ABCDEF)
	d.Field(1).(*field.Field[uint8]).SetValue(0x9)
	d.Field(2).(*field.Flag).Set()
	d.Field(3).(*field.Flag).Reset()
	d.Field(4).(*field.Flag).Set()
	d.Field(5).(*field.Flag).Reset()
	d.Field(6).(*field.Field[uint32]).SetValue(0xABCDEF)
	d.Field(7).(*field.Field[uint8]).SetValue(0x42)

	buf := bitio.NewBuffer(d.Size())
	if err := d.ToBuffer(buf); err != nil {
		t.Fatalf("ToBuffer: %v", err)
	}

	first := make([]byte, buf.Size())
	copy(first, buf.Bytes())

	fresh := newScenarioDissector()
	if err := fresh.FromBuffer(buf); err != nil {
		t.Fatalf("FromBuffer: %v", err)
	}

	if got := fresh.Field(0).(*field.Field[uint64]).Value(); got != 0x0123456789ABCDEF {
		t.Errorf("field 0: got %#x, want %#x", got, uint64(0x0123456789ABCDEF))
	}
	if got := fresh.Field(1).(*field.Field[uint8]).Value(); got != 0x9 {
		t.Errorf("field 1: got %#x, want 0x9", got)
	}
	if !fresh.Field(2).(*field.Flag).IsSet() {
		t.Error("field 2: expected flag set")
	}
	if fresh.Field(3).(*field.Flag).IsSet() {
		t.Error("field 3: expected flag clear")
	}
	if !fresh.Field(4).(*field.Flag).IsSet() {
		t.Error("field 4: expected flag set")
	}
	if fresh.Field(5).(*field.Flag).IsSet() {
		t.Error("field 5: expected flag clear")
	}
	if got := fresh.Field(6).(*field.Field[uint32]).Value(); got != 0xABCDEF {
		t.Errorf("field 6: got %#x, want 0xABCDEF", got)
	}
	if got := fresh.Field(7).(*field.Field[uint8]).Value(); got != 0x42 {
		t.Errorf("field 7: got %#x, want 0x42", got)
	}
	if fresh.Primary.Apid.Value() != 0x055 {
		t.Errorf("apid: got %#x, want 0x055", fresh.Primary.Apid.Value())
	}

	rebuf := bitio.NewBuffer(fresh.Size())
	if err := fresh.ToBuffer(rebuf); err != nil {
		t.Fatalf("re-serialize: %v", err)
	}
	if !bytes.Equal(first, rebuf.Bytes()) {
		t.Errorf("serialized buffer changed across round trip: got % X, want % X", rebuf.Bytes(), first)
	}
}

func TestExtractorReadsDissectorOutput(t *testing.T) {
	d := newScenarioDissector()
	d.Primary.Apid.SetValue(0x7AB)
	d.Field(0).(*field.Field[uint64]).SetValue(0xFEEDFACECAFEBEEF)
	d.Field(6).(*field.Field[uint32]).SetValue(0x010203)

	buf := bitio.NewBuffer(d.Size())
	if err := d.ToBuffer(buf); err != nil {
		t.Fatalf("ToBuffer: %v", err)
	}

	ex := NewExtractor(buf, EmptySecondaryHeader())
	if ex.Primary.Apid.Value() != 0x7AB {
		t.Errorf("apid: got %#x, want 0x7AB", ex.Primary.Apid.Value())
	}
	r := ex.Data()
	if got := bitio.GetValue[uint64](r); got != 0xFEEDFACECAFEBEEF {
		t.Errorf("first field: got %#x, want %#x", got, uint64(0xFEEDFACECAFEBEEF))
	}
}
