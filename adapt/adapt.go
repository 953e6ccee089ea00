package adapt

import (
	"reflect"
)

// PostgreSQL format codes
const (
	TextFormatCode   int16 = 0
	BinaryFormatCode int16 = 1
)

// Dumper encodes Go values of one type into one wire format. Dump appends
// the encoded value to buf and returns the extended buffer. Implementations
// must not retain buf or the value.
type Dumper interface {
	// Format returns the wire format the dumper produces.
	Format() int16

	// OID returns the type OID outgoing data is tagged with. It may be
	// zero for dumpers whose output the server should type itself.
	OID() uint32

	// Dump appends the wire representation of value to buf.
	Dump(value interface{}, buf []byte) ([]byte, error)
}

// Loader decodes wire data of one type OID and format into a Go value.
type Loader interface {
	// Format returns the wire format the loader consumes.
	Format() int16

	// Load converts src into a Go value. src is only valid for the duration
	// of the call; implementations must copy any bytes they retain.
	Load(src []byte) (interface{}, error)
}

// DumperKey identifies the shape of a value for dumper refinement. Type is
// the canonical Go type the dumper is registered for; Elem is the
// shape discriminant, the element type for slices, or nil when the value
// carries no further shape information.
type DumperKey struct {
	Type reflect.Type
	Elem reflect.Type
}

// KeyedDumper is implemented by dumpers whose wire behavior depends on the
// value's shape, not only its Go type. The Map resolves such dumpers in two
// steps: Key extracts the shape, then Refine builds the specific dumper for
// it. Results are cached per shape, so Refine runs once per distinct shape
// per Map. Refine must be idempotent: refining a value whose shape already
// matches returns an equivalent dumper.
type KeyedDumper interface {
	Dumper

	// Key returns the refinement key for value.
	Key(value interface{}) DumperKey

	// Refine returns the dumper specific to value's shape.
	Refine(m *Map, value interface{}) (Dumper, error)
}
