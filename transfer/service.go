package transfer

import (
	"errors"

	"github.com/lumen-space/spacepacket/bitio"
	"github.com/lumen-space/spacepacket/spacepacket"
)

// DefaultMaxListeners is the default listener table capacity.
const DefaultMaxListeners = 1000

// apidSpace is 2^11, the full range of an 11-bit APID including the
// reserved idle value.
const apidSpace = 1 << 11

// ErrReentrantDispatch is returned when a dispatch callback attempts
// to call back into Transmit, ReceiveFromSubLayer, RegisterListener,
// or UnregisterListener on the same Service. The service disallows
// reentrancy rather than snapshotting the listener table (design
// note, policy (b)).
var ErrReentrantDispatch = errors.New("transfer: reentrant call during packet dispatch")

type apidMatcher struct {
	apid  uint16
	any   bool
}

func (m apidMatcher) matches(apid uint16) bool {
	return m.any || m.apid == apid
}

type listenerEntry struct {
	listener Listener
	matcher  apidMatcher
}

// ApidContext tracks the per-APID sequence-count state described in
// spec.md section 3.
type ApidContext struct {
	NextCount uint16
	TxCount   uint64
	RxCount   uint64
}

// Telemetry is the single observable for dropped or malformed
// packets: successful and failed transmit/receive counts.
type Telemetry struct {
	Rx    uint64
	Tx    uint64
	RxErr uint64
	TxErr uint64
}

// Service is the pub/sub transfer hub. It is single-owner and not
// safe for concurrent use from multiple goroutines without external
// synchronization (spec.md section 5); the reentrancy guard only
// protects against a listener callback re-entering the same call
// stack, not against concurrent callers.
type Service struct {
	listeners    []listenerEntry
	maxListeners int
	contexts     [apidSpace]ApidContext
	subLayer     SubLayer
	telemetry    Telemetry
	dispatching  bool
}

// NewService constructs a Service with the default listener capacity.
func NewService() *Service {
	return NewServiceWithCapacity(DefaultMaxListeners)
}

// NewServiceWithCapacity constructs a Service with a caller-chosen
// listener table capacity.
func NewServiceWithCapacity(maxListeners int) *Service {
	return &Service{maxListeners: maxListeners}
}

// SetSubLayer wires (or clears, with nil) the single downstream
// communication layer.
func (s *Service) SetSubLayer(sl SubLayer) {
	s.subLayer = sl
}

// Telemetry returns a snapshot of the service's counters.
func (s *Service) Telemetry() Telemetry {
	return s.telemetry
}

// ApidContext returns a snapshot of the per-APID sequencing state.
func (s *Service) ApidContext(apid uint16) ApidContext {
	return s.contexts[apid]
}

// RegisterListener appends l as an any-APID listener, silently
// ignoring a nil listener or a full table.
func (s *Service) RegisterListener(l Listener) error {
	if s.dispatching {
		return ErrReentrantDispatch
	}
	if l == nil || len(s.listeners) >= s.maxListeners {
		return nil
	}
	s.listeners = append(s.listeners, listenerEntry{listener: l, matcher: apidMatcher{any: true}})
	return nil
}

// RegisterListenerForApid appends l as a listener matching only apid,
// silently ignoring a nil listener or a full table.
func (s *Service) RegisterListenerForApid(l Listener, apid uint16) error {
	if s.dispatching {
		return ErrReentrantDispatch
	}
	if l == nil || len(s.listeners) >= s.maxListeners {
		return nil
	}
	s.listeners = append(s.listeners, listenerEntry{listener: l, matcher: apidMatcher{apid: apid}})
	return nil
}

// UnregisterListener removes l by identity using swap-with-last; the
// order of remaining listeners is not preserved.
func (s *Service) UnregisterListener(l Listener) error {
	if s.dispatching {
		return ErrReentrantDispatch
	}
	for i := range s.listeners {
		if s.listeners[i].listener == l {
			last := len(s.listeners) - 1
			s.listeners[i] = s.listeners[last]
			s.listeners = s.listeners[:last]
			return nil
		}
	}
	return nil
}

// Transmit stamps packet's sequence count from the per-APID context,
// finalizes it, and validates it. An invalid packet is dropped
// silently and counted in TxErr, consuming no sequence count.
// Otherwise matching listeners are notified, the packet is pushed to
// the sub-layer if one is wired, and the per-APID counters advance.
func (s *Service) Transmit(pkt Packet) error {
	if s.dispatching {
		return ErrReentrantDispatch
	}

	apid := pkt.APID()
	ctx := &s.contexts[apid]
	pkt.SetSequenceCount(ctx.NextCount)

	if err := pkt.Finalize(); err != nil {
		s.telemetry.TxErr++
		return nil
	}
	if !pkt.IsValid() {
		s.telemetry.TxErr++
		return nil
	}

	buf := pkt.Buffer()
	s.dispatch(buf, apid)

	if s.subLayer != nil {
		if err := s.subLayer.PushOutbound(buf); err != nil {
			s.telemetry.TxErr++
			return nil
		}
	}

	s.telemetry.Tx++
	ctx.TxCount++
	ctx.NextCount = (ctx.NextCount + 1) & 0x3FFF
	return nil
}

// ReceiveFromSubLayer accepts a buffer handed up by the sub-layer.
// Idle packets are dispatched unconditionally. Non-idle packets are
// dispatched only if their sequence count exactly matches the
// context's expected next count; any gap (out-of-order or missing
// packet) is counted as an error with no recovery attempted. Received
// packets are never re-pushed to the sub-layer.
func (s *Service) ReceiveFromSubLayer(buf bitio.Buffer) error {
	if s.dispatching {
		return ErrReentrantDispatch
	}

	headerBuf := buf.Slice(0, spacepacket.PrimaryHeaderSize)
	hr := bitio.NewReader(&headerBuf)
	primary := spacepacket.NewPrimaryHeader()
	primary.Deserialize(hr)

	apid := primary.Apid.Value()
	ctx := &s.contexts[apid]

	if primary.IsIdle() {
		s.dispatch(buf, apid)
		s.telemetry.Rx++
		ctx.RxCount++
		return nil
	}

	if primary.SequenceCount.Value() != ctx.NextCount {
		s.telemetry.RxErr++
		return nil
	}

	s.dispatch(buf, apid)
	s.telemetry.Rx++
	ctx.RxCount++
	ctx.NextCount = (ctx.NextCount + 1) & 0x3FFF
	return nil
}

func (s *Service) dispatch(buf bitio.Buffer, apid uint16) {
	s.dispatching = true
	for _, e := range s.listeners {
		if e.matcher.matches(apid) {
			e.listener.OnPacket(buf)
		}
	}
	s.dispatching = false
}
