package field

import "github.com/lumen-space/spacepacket/bitio"

// FieldArray is N Fields of identical shape (type, width, endianness).
// Static total width is N*Width.
type FieldArray[T bitio.Unsigned] struct {
	values []Field[T]
}

// NewArray constructs a big-endian FieldArray of n elements, each of
// the given width, all initialized to 0.
func NewArray[T bitio.Unsigned](n, width int) *FieldArray[T] {
	if n <= 0 {
		panic("field: array field must contain at least 1 element")
	}
	values := make([]Field[T], n)
	for i := range values {
		values[i] = *NewValue[T](width, 0)
	}
	return &FieldArray[T]{values: values}
}

// Len returns the number of elements in the array.
func (a *FieldArray[T]) Len() int {
	return len(a.values)
}

// WidthBits returns the array's static total bit width.
func (a *FieldArray[T]) WidthBits() int {
	if len(a.values) == 0 {
		return 0
	}
	return a.values[0].WidthBits() * len(a.values)
}

// Value returns the value stored at index i.
func (a *FieldArray[T]) Value(i int) T {
	return a.values[i].Value()
}

// SetValue stores v at index i, masked to the element width.
func (a *FieldArray[T]) SetValue(i int, v T) {
	a.values[i].SetValue(v)
}

// Bit returns bit n of the element at index i.
func (a *FieldArray[T]) Bit(index, n int) bool {
	return a.values[index].Bit(n)
}

// SetBit sets or clears bit n of the element at index.
func (a *FieldArray[T]) SetBit(index, n int, v bool) {
	a.values[index].SetBit(n, v)
}

// Serialize writes each element in index order.
func (a *FieldArray[T]) Serialize(w *bitio.Writer) {
	for i := range a.values {
		a.values[i].Serialize(w)
	}
}

// Deserialize reads each element in index order.
func (a *FieldArray[T]) Deserialize(r *bitio.Reader) {
	for i := range a.values {
		a.values[i].Deserialize(r)
	}
}
