package fitfile

import "encoding/binary"

// FieldDef is one 3-byte field descriptor of a definition record.
type FieldDef struct {
	Num  uint8
	Size uint8
	Type BaseType
}

// Definition is the layout a definition record declared for one local
// message type slot.
type Definition struct {
	LocalType uint8
	ArchByte  uint8 // 0 little-endian, 1 big-endian
	Global    uint16
	Fields    []FieldDef
}

// Arch returns the byte order governing this definition's multi-byte field
// values. It never governs the header, the trailer, or the definition
// record's own global message number.
func (d *Definition) Arch() binary.ByteOrder {
	if d.ArchByte == 1 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// DataSize is the exact byte length of a data message governed by d.
func (d *Definition) DataSize() int {
	n := 0
	for _, f := range d.Fields {
		n += int(f.Size)
	}
	return n
}

func (d *Definition) sameLayout(global uint16, fields []FieldDef) bool {
	if d.Global != global || len(d.Fields) != len(fields) {
		return false
	}
	for i, f := range d.Fields {
		if f != fields[i] {
			return false
		}
	}
	return true
}

// maxLocalTypes is fixed by the 4-bit local message type field.
const maxLocalTypes = 16

// Registry holds the latest definition per local message type for one
// decode or encode session. It is never shared across files.
type Registry struct {
	slots [maxLocalTypes]*Definition
	used  [maxLocalTypes]int
	tick  int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Define installs def in its slot, overwriting any prior definition. Slot
// reuse mid-file is deliberate protocol behavior, not an error.
func (r *Registry) Define(def *Definition) {
	slot := def.LocalType & 0x0F
	r.tick++
	r.slots[slot] = def
	r.used[slot] = r.tick
}

// Resolve returns the latest definition for a local message type.
func (r *Registry) Resolve(local uint8) (*Definition, bool) {
	slot := local & 0x0F
	def := r.slots[slot]
	if def == nil {
		return nil, false
	}
	r.tick++
	r.used[slot] = r.tick
	return def, true
}

// Lookup finds a slot already carrying exactly this layout, letting the
// encoder skip a redundant definition record.
func (r *Registry) Lookup(global uint16, fields []FieldDef) (uint8, bool) {
	for slot, def := range r.slots {
		if def != nil && def.sameLayout(global, fields) {
			r.tick++
			r.used[slot] = r.tick
			return uint8(slot), true
		}
	}
	return 0, false
}

// Assign picks a free slot, or evicts the least recently used one when all
// sixteen are taken.
func (r *Registry) Assign() uint8 {
	lru := 0
	for slot, def := range r.slots {
		if def == nil {
			return uint8(slot)
		}
		if r.used[slot] < r.used[lru] {
			lru = slot
		}
	}
	return uint8(lru)
}
