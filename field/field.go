// Package field implements the typed field composition model that
// sits on top of bitio: individual Fields, FieldArrays of identical
// shape, heterogeneous FieldCollections, and the single-bit Flag.
package field

import (
	"fmt"
	"unsafe"

	"github.com/lumen-space/spacepacket/bitio"
)

// Serializable is the capability set every field-like value exposes:
// a statically known bit width plus serialize/deserialize through the
// bit codec. Field, FieldArray, Collection and Flag all satisfy it.
type Serializable interface {
	WidthBits() int
	Serialize(w *bitio.Writer)
	Deserialize(r *bitio.Reader)
}

// Field carries one unsigned integer value; its semantic value is the
// low Width bits. Width is fixed at construction (the closest Go gets
// to the source's compile-time template width, per the composition
// design note).
type Field[T bitio.Unsigned] struct {
	value        T
	width        int
	littleEndian bool
}

func maxWidth[T bitio.Unsigned]() int {
	var v T
	return int(unsafe.Sizeof(v)) * 8
}

// New constructs a big-endian Field of the given width with value 0.
func New[T bitio.Unsigned](width int) *Field[T] {
	return NewValue[T](width, 0)
}

// NewValue constructs a big-endian Field of the given width, masked to
// its low width bits.
func NewValue[T bitio.Unsigned](width int, v T) *Field[T] {
	if width <= 0 {
		panic("field: width can't be zero")
	}
	if width > maxWidth[T]() {
		panic(fmt.Sprintf("field: width %d is wider than the field type", width))
	}
	f := &Field[T]{width: width}
	f.SetValue(v)
	return f
}

// NewLittleEndian constructs a little-endian Field. Non-integral-byte
// widths are rejected: little-endian behavior for such widths is
// undefined by the pink book and unsupported here.
func NewLittleEndian[T bitio.Unsigned](width int, v T) *Field[T] {
	if width%8 != 0 {
		panic("field: little-endian fields must have a byte-aligned width")
	}
	f := NewValue[T](width, v)
	f.littleEndian = true
	return f
}

// WidthBits returns the field's static bit width.
func (f *Field[T]) WidthBits() int {
	return f.width
}

// IsLittleEndian reports the field's compile-time-fixed endianness.
func (f *Field[T]) IsLittleEndian() bool {
	return f.littleEndian
}

// Value returns the field's current value.
func (f *Field[T]) Value() T {
	return f.value
}

// SetValue stores v, normalizing by masking to the low Width bits.
func (f *Field[T]) SetValue(v T) {
	f.value = v & T(mask(f.width))
}

// Serialize writes the field's value through w.
func (f *Field[T]) Serialize(w *bitio.Writer) {
	w.Put(uint64(f.value), f.width, f.littleEndian)
}

// Deserialize reads the field's value from r.
func (f *Field[T]) Deserialize(r *bitio.Reader) {
	f.value = T(r.Get(f.width, f.littleEndian))
}

// Bit returns bit n of the value (bit 0 is the LSB). Out-of-range n
// returns false.
func (f *Field[T]) Bit(n int) bool {
	if n < 0 || n >= f.width {
		return false
	}
	return (f.value>>uint(n))&1 != 0
}

// SetBit sets or clears bit n of the value. Out-of-range n is a no-op.
func (f *Field[T]) SetBit(n int, v bool) {
	if n < 0 || n >= f.width {
		return
	}
	if v {
		f.value |= T(1) << uint(n)
	} else {
		f.value &^= T(1) << uint(n)
	}
	f.value &= T(mask(f.width))
}

// Increment adds 1, wrapping modulo 2^Width.
func (f *Field[T]) Increment() {
	f.SetValue(f.value + 1)
}

// Decrement subtracts 1, wrapping modulo 2^Width.
func (f *Field[T]) Decrement() {
	f.SetValue(f.value - 1)
}

func mask(width int) uint64 {
	if width <= 0 {
		return 0
	}
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}
