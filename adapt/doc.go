// Package adapt converts between Go and PostgreSQL values.
/*
The primary type is Map. A Map is built once per connection from a Config
holding a ServerContext, the read-only view of the server parameters that
affect value representation (DateStyle, IntervalStyle, TimeZone,
client_encoding, server_version). NewMap derives all parameter-dependent
codec behavior up front, so an unrecognized DateStyle fails Map construction
rather than the first decode.

Encoding is performed by Dumpers, selected by the Go type of the value and
the requested wire format. Decoding is performed by Loaders, selected by the
PostgreSQL type OID and the wire format. Both directions support the text and
binary protocol representations. Map.Encode and Map.Decode are the high level
entry points; DumperForValue and LoaderForOID expose the codec instances for
callers that manage buffers themselves.

A Dumper may implement KeyedDumper when a single Go type requires different
wire behavior depending on the value's shape. Slices are the main case: the
registered []interface{} dumper inspects the first non-nil element and
refines itself into a dumper bound to that element type and the matching
array OID. Refined dumpers are cached by shape so each distinct shape is
resolved once per Map.

Failures are reported through four error kinds: InterfaceError for
configuration problems detected at Map construction, DataError for malformed
or out-of-range wire data, NotSupportedError for combinations the engine
recognizes but does not implement, and ProgrammingError for misuse such as
dumping an unregistered type.

Map is safe for concurrent use after construction; registration methods are
not safe to call concurrently with Encode or Decode.
*/
package adapt
