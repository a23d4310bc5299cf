package fitfile

// BaseType is a FIT base type code as it appears in a field descriptor.
// The high bit marks types wider than one byte; the low five bits select
// the type itself.
type BaseType uint8

const (
	BaseEnum    BaseType = 0x00
	BaseSint8   BaseType = 0x01
	BaseUint8   BaseType = 0x02
	BaseSint16  BaseType = 0x83
	BaseUint16  BaseType = 0x84
	BaseSint32  BaseType = 0x85
	BaseUint32  BaseType = 0x86
	BaseString  BaseType = 0x07
	BaseFloat32 BaseType = 0x88
	BaseFloat64 BaseType = 0x89
	BaseUint8z  BaseType = 0x0A
	BaseUint16z BaseType = 0x8B
	BaseUint32z BaseType = 0x8C
	BaseByte    BaseType = 0x0D
	BaseSint64  BaseType = 0x8E
	BaseUint64  BaseType = 0x8F
	BaseUint64z BaseType = 0x90
)

type baseSpec struct {
	name        string
	size        int
	signed      bool
	float       bool
	str         bool
	zeroInvalid bool
}

// For string and byte the descriptor's size field carries the actual length;
// size here is the per-element width.
var baseSpecs = map[BaseType]baseSpec{
	BaseEnum:    {name: "enum", size: 1},
	BaseSint8:   {name: "sint8", size: 1, signed: true},
	BaseUint8:   {name: "uint8", size: 1},
	BaseSint16:  {name: "sint16", size: 2, signed: true},
	BaseUint16:  {name: "uint16", size: 2},
	BaseSint32:  {name: "sint32", size: 4, signed: true},
	BaseUint32:  {name: "uint32", size: 4},
	BaseString:  {name: "string", size: 1, str: true},
	BaseFloat32: {name: "float32", size: 4, signed: true, float: true},
	BaseFloat64: {name: "float64", size: 8, signed: true, float: true},
	BaseUint8z:  {name: "uint8z", size: 1, zeroInvalid: true},
	BaseUint16z: {name: "uint16z", size: 2, zeroInvalid: true},
	BaseUint32z: {name: "uint32z", size: 4, zeroInvalid: true},
	BaseByte:    {name: "byte", size: 1},
	BaseSint64:  {name: "sint64", size: 8, signed: true},
	BaseUint64:  {name: "uint64", size: 8},
	BaseUint64z: {name: "uint64z", size: 8, zeroInvalid: true},
}

// Spec returns the width and interpretation of t. Unknown codes are an
// error, never a silent default.
func (t BaseType) Spec() (size int, signed, isFloat, isString bool, err error) {
	s, ok := baseSpecs[t]
	if !ok {
		return 0, false, false, false, &UnknownBaseTypeError{Code: uint8(t)}
	}
	return s.size, s.signed, s.float, s.str, nil
}

// Known reports whether t is a base type this codec understands.
func (t BaseType) Known() bool {
	_, ok := baseSpecs[t]
	return ok
}

func (t BaseType) String() string {
	if s, ok := baseSpecs[t]; ok {
		return s.name
	}
	return "unknown"
}
