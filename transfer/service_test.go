package transfer

import (
	"testing"

	"github.com/lumen-space/spacepacket/bitio"
	"github.com/lumen-space/spacepacket/field"
	"github.com/lumen-space/spacepacket/spacepacket"
)

func newTestPacket(t *testing.T, apid uint16) *spacepacket.Builder {
	t.Helper()
	buf := bitio.NewBuffer(spacepacket.PrimaryHeaderSize + 1)
	b := spacepacket.NewBuilder(buf, spacepacket.EmptySecondaryHeader())
	b.Primary.Apid.SetValue(apid)
	b.Primary.SequenceFlags.SetValue(spacepacket.SequenceUnsegmented)
	field.NewValue[uint8](8, 0x00).Serialize(b.Data())
	return b
}

func TestTransmitSequenceCounting(t *testing.T) {
	svc := NewService()
	const apid = uint16(0x100)

	for i := 0; i < 5; i++ {
		pkt := newTestPacket(t, apid)
		if err := svc.Transmit(pkt); err != nil {
			t.Fatalf("transmit %d: %v", i, err)
		}
		if got := pkt.Primary.SequenceCount.Value(); int(got) != i {
			t.Errorf("packet %d: sequence_count = %d, want %d", i, got, i)
		}
	}
	if ctx := svc.ApidContext(apid); ctx.NextCount != 5 || ctx.TxCount != 5 {
		t.Errorf("context after 5 transmits: %+v", ctx)
	}
}

func TestReceiveFromSubLayerOutOfOrder(t *testing.T) {
	svc := NewService()
	const apid = uint16(0x100)

	first := newTestPacket(t, apid)
	first.SetSequenceCount(0)
	first.Finalize()

	second := newTestPacket(t, apid)
	second.SetSequenceCount(2)
	second.Finalize()

	if err := svc.ReceiveFromSubLayer(first.Buffer()); err != nil {
		t.Fatalf("receive first: %v", err)
	}
	ctx := svc.ApidContext(apid)
	if ctx.RxCount != 1 || ctx.NextCount != 1 {
		t.Fatalf("after first: %+v", ctx)
	}

	if err := svc.ReceiveFromSubLayer(second.Buffer()); err != nil {
		t.Fatalf("receive second: %v", err)
	}
	ctx = svc.ApidContext(apid)
	if ctx.NextCount != 1 {
		t.Errorf("next_count changed after an out-of-order packet: got %d, want 1", ctx.NextCount)
	}
	if svc.Telemetry().RxErr != 1 {
		t.Errorf("rx_err = %d, want 1", svc.Telemetry().RxErr)
	}
}

type countingListener struct {
	apids []uint16
}

func (l *countingListener) OnPacket(buf bitio.Buffer) {
	headerBuf := buf.Slice(0, spacepacket.PrimaryHeaderSize)
	r := bitio.NewReader(&headerBuf)
	primary := spacepacket.NewPrimaryHeader()
	primary.Deserialize(r)
	l.apids = append(l.apids, primary.Apid.Value())
}

func TestListenerFiltering(t *testing.T) {
	svc := NewService()
	l1 := &countingListener{}
	l2 := &countingListener{}

	if err := svc.RegisterListener(l1); err != nil {
		t.Fatal(err)
	}
	if err := svc.RegisterListenerForApid(l2, 0x100); err != nil {
		t.Fatal(err)
	}

	for _, apid := range []uint16{0x100, 0x200, 0x100} {
		if err := svc.Transmit(newTestPacket(t, apid)); err != nil {
			t.Fatal(err)
		}
	}

	if len(l1.apids) != 3 {
		t.Errorf("l1 saw %d packets, want 3", len(l1.apids))
	}
	if len(l2.apids) != 2 {
		t.Errorf("l2 saw %d packets, want 2", len(l2.apids))
	}
	for _, apid := range l2.apids {
		if apid != 0x100 {
			t.Errorf("l2 saw apid %#x, want 0x100", apid)
		}
	}

	if err := svc.UnregisterListener(l1); err != nil {
		t.Fatal(err)
	}
	if err := svc.Transmit(newTestPacket(t, 0x100)); err != nil {
		t.Fatal(err)
	}
	if len(l1.apids) != 3 {
		t.Errorf("l1 saw a packet after unregistering, count = %d", len(l1.apids))
	}
	if len(l2.apids) != 3 {
		t.Errorf("l2 should have seen a fourth packet, count = %d", len(l2.apids))
	}
}

type reentrantListener struct {
	svc *Service
	err error
}

func (l *reentrantListener) OnPacket(buf bitio.Buffer) {
	l.err = l.svc.RegisterListener(l)
}

func TestReentrancyRejected(t *testing.T) {
	svc := NewService()
	l := &reentrantListener{svc: svc}
	if err := svc.RegisterListener(l); err != nil {
		t.Fatal(err)
	}
	pkt := newTestPacket(t, 0x100)
	if err := svc.Transmit(pkt); err != nil {
		t.Fatal(err)
	}
	if l.err != ErrReentrantDispatch {
		t.Errorf("expected ErrReentrantDispatch during dispatch, got %v", l.err)
	}
}
