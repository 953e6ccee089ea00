package adapt

// PostgreSQL oids for common types
const (
	BoolOID             = 16
	ByteaOID            = 17
	CharOID             = 18
	NameOID             = 19
	Int8OID             = 20
	Int2OID             = 21
	Int4OID             = 23
	TextOID             = 25
	OIDOID              = 26
	TIDOID              = 27
	XIDOID              = 28
	CIDOID              = 29
	JSONOID             = 114
	JSONArrayOID        = 199
	Float4OID           = 700
	Float8OID           = 701
	UnknownOID          = 705
	BoolArrayOID        = 1000
	ByteaArrayOID       = 1001
	NameArrayOID        = 1003
	Int2ArrayOID        = 1005
	Int4ArrayOID        = 1007
	TextArrayOID        = 1009
	BPCharArrayOID      = 1014
	VarcharArrayOID     = 1015
	Int8ArrayOID        = 1016
	Float4ArrayOID      = 1021
	Float8ArrayOID      = 1022
	OIDArrayOID         = 1028
	BPCharOID           = 1042
	VarcharOID          = 1043
	DateOID             = 1082
	TimeOID             = 1083
	TimestampOID        = 1114
	TimestampArrayOID   = 1115
	DateArrayOID        = 1182
	TimeArrayOID        = 1183
	TimestamptzOID      = 1184
	TimestamptzArrayOID = 1185
	IntervalOID         = 1186
	IntervalArrayOID    = 1187
	NumericArrayOID     = 1231
	TimetzOID           = 1266
	TimetzArrayOID      = 1270
	BitOID              = 1560
	VarbitOID           = 1562
	NumericOID          = 1700
	RecordOID           = 2249
	UUIDOID             = 2950
	UUIDArrayOID        = 2951
	JSONBOID            = 3802
	JSONBArrayOID       = 3807
)

// TypeInfo describes a PostgreSQL data type: its name, its OID, and the OID
// of its array type (0 if none is known).
type TypeInfo struct {
	Name     string
	OID      uint32
	ArrayOID uint32
}

// builtinTypes lists the types the Map knows about out of the box. Array
// loaders are registered for every entry with a nonzero ArrayOID.
var builtinTypes = []TypeInfo{
	{Name: "bool", OID: BoolOID, ArrayOID: BoolArrayOID},
	{Name: "bytea", OID: ByteaOID, ArrayOID: ByteaArrayOID},
	{Name: "name", OID: NameOID, ArrayOID: NameArrayOID},
	{Name: "int8", OID: Int8OID, ArrayOID: Int8ArrayOID},
	{Name: "int2", OID: Int2OID, ArrayOID: Int2ArrayOID},
	{Name: "int4", OID: Int4OID, ArrayOID: Int4ArrayOID},
	{Name: "text", OID: TextOID, ArrayOID: TextArrayOID},
	{Name: "oid", OID: OIDOID, ArrayOID: OIDArrayOID},
	{Name: "json", OID: JSONOID, ArrayOID: JSONArrayOID},
	{Name: "float4", OID: Float4OID, ArrayOID: Float4ArrayOID},
	{Name: "float8", OID: Float8OID, ArrayOID: Float8ArrayOID},
	{Name: "bpchar", OID: BPCharOID, ArrayOID: BPCharArrayOID},
	{Name: "varchar", OID: VarcharOID, ArrayOID: VarcharArrayOID},
	{Name: "date", OID: DateOID, ArrayOID: DateArrayOID},
	{Name: "time", OID: TimeOID, ArrayOID: TimeArrayOID},
	{Name: "timestamp", OID: TimestampOID, ArrayOID: TimestampArrayOID},
	{Name: "timestamptz", OID: TimestamptzOID, ArrayOID: TimestamptzArrayOID},
	{Name: "interval", OID: IntervalOID, ArrayOID: IntervalArrayOID},
	{Name: "numeric", OID: NumericOID, ArrayOID: NumericArrayOID},
	{Name: "timetz", OID: TimetzOID, ArrayOID: TimetzArrayOID},
	{Name: "uuid", OID: UUIDOID, ArrayOID: UUIDArrayOID},
	{Name: "jsonb", OID: JSONBOID, ArrayOID: JSONBArrayOID},
}
