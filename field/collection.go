package field

import "github.com/lumen-space/spacepacket/bitio"

// Collection is a heterogeneous, ordered composition of fields (any
// mix of Field, FieldArray, or nested Collections). Its static total
// width is the sum of its members' widths; an empty Collection is
// permitted and does no I/O. This is the interface/slice fallback the
// composition design note calls for where the target language lacks
// variadic templates.
type Collection struct {
	members []Serializable
}

// NewCollection composes members in declaration order.
func NewCollection(members ...Serializable) *Collection {
	return &Collection{members: members}
}

// Empty returns a zero-width Collection, the Go equivalent of
// FieldCollection<> used for an absent secondary-header component.
func Empty() *Collection {
	return &Collection{}
}

// WidthBits is the sum of member widths.
func (c *Collection) WidthBits() int {
	total := 0
	for _, m := range c.members {
		total += m.WidthBits()
	}
	return total
}

// Len returns the number of members.
func (c *Collection) Len() int {
	return len(c.members)
}

// Member returns the member at index i.
func (c *Collection) Member(i int) Serializable {
	return c.members[i]
}

// Serialize writes each member in declaration order.
func (c *Collection) Serialize(w *bitio.Writer) {
	for _, m := range c.members {
		m.Serialize(w)
	}
}

// Deserialize reads each member in declaration order.
func (c *Collection) Deserialize(r *bitio.Reader) {
	for _, m := range c.members {
		m.Deserialize(r)
	}
}
