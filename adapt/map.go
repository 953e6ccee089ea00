package adapt

import (
	"context"
	"reflect"
	"sync"
	"time"
)

// Config holds the inputs for NewMap.
type Config struct {
	// Server supplies the runtime parameters codec behavior is derived
	// from. A nil Server yields built-in defaults: "ISO, DMY" dates, UTC
	// session zone, UTF8 client encoding, postgres interval style.
	Server ServerContext

	// Logger and LogLevel enable diagnostics for Map construction and
	// dumper refinement. Encode and Decode never log. A nil Logger
	// disables logging; a zero LogLevel with a Logger defaults to
	// LogLevelDebug.
	Logger   Logger
	LogLevel LogLevel

	// LegacyTimetzOffsets reproduces peers restricted to whole-minute zone
	// offsets: text timetz decoding ignores the seconds field of the
	// offset and binary timetz decoding rounds the offset to the nearest
	// minute.
	LegacyTimetzOffsets bool
}

type dumperRegKey struct {
	typ    reflect.Type
	format int16
}

type loaderRegKey struct {
	oid    uint32
	format int16
}

type refineKey struct {
	key    DumperKey
	format int16
}

// sliceType is the canonical registration key for slice dumpers. Any slice
// type without its own registration resolves through it.
var sliceType = reflect.TypeOf([]interface{}(nil))

// Map resolves dumpers by Go type and loaders by type OID, per wire format.
// It is built from the server parameters once per connection and is
// immutable afterwards, except for the shape-refinement cache, which is safe
// for concurrent use.
type Map struct {
	settings serverSettings

	dumpers map[dumperRegKey]Dumper
	loaders map[loaderRegKey]Loader

	typesByOID  map[uint32]TypeInfo
	typesByName map[string]TypeInfo

	refined sync.Map // refineKey -> Dumper

	logger   Logger
	logLevel LogLevel
}

// NewMap builds a Map for the server described by config. It fails with an
// InterfaceError if the server reports an unrecognized DateStyle and with a
// NotSupportedError if it reports a client encoding this package cannot
// transcode.
func NewMap(config Config) (*Map, error) {
	m := &Map{
		dumpers:     make(map[dumperRegKey]Dumper),
		loaders:     make(map[loaderRegKey]Loader),
		typesByOID:  make(map[uint32]TypeInfo),
		typesByName: make(map[string]TypeInfo),
		logger:      config.Logger,
		logLevel:    config.LogLevel,
	}
	if m.logger != nil && m.logLevel == 0 {
		m.logLevel = LogLevelDebug
	}

	settings, err := deriveServerSettings(config.Server, m.log)
	if err != nil {
		return nil, err
	}
	m.settings = settings

	for _, info := range builtinTypes {
		m.RegisterType(info)
	}
	m.registerDefaults(config)

	m.log(LogLevelDebug, "adapter map initialized", map[string]interface{}{
		"dateStyle":      settings.rawDateStyle,
		"intervalStyle":  settings.intervalStyle,
		"timeZone":       settings.location.String(),
		"clientEncoding": settings.encodingName,
		"serverVersion":  settings.version,
	})

	return m, nil
}

func (m *Map) shouldLog(lvl LogLevel) bool {
	return m.logger != nil && m.logLevel >= lvl
}

func (m *Map) log(lvl LogLevel, msg string, data map[string]interface{}) {
	if m.shouldLog(lvl) {
		m.logger.Log(context.Background(), lvl, msg, data)
	}
}

// RegisterType makes a type known by name and OID and, when info.ArrayOID
// is set, wires the element lookup used by array dumpers.
func (m *Map) RegisterType(info TypeInfo) {
	m.typesByOID[info.OID] = info
	m.typesByName[info.Name] = info
}

// TypeForOID returns the registered description of the type with the given
// OID.
func (m *Map) TypeForOID(oid uint32) (TypeInfo, bool) {
	info, ok := m.typesByOID[oid]
	return info, ok
}

// TypeForName returns the registered description of the named type.
func (m *Map) TypeForName(name string) (TypeInfo, bool) {
	info, ok := m.typesByName[name]
	return info, ok
}

// RegisterDumper registers d for values of type typ in d's format. A later
// registration for the same type and format replaces the earlier one;
// registrations are never removed.
func (m *Map) RegisterDumper(typ reflect.Type, d Dumper) {
	m.dumpers[dumperRegKey{typ: typ, format: d.Format()}] = d
}

// RegisterLoader registers l for wire data tagged with oid in l's format.
func (m *Map) RegisterLoader(oid uint32, l Loader) {
	m.loaders[loaderRegKey{oid: oid, format: l.Format()}] = l
}

// DumperForValue resolves the dumper for value in the given format,
// performing shape refinement when the registered dumper requires it.
// Refinement results are cached: values of the same shape get the same
// dumper instance for the lifetime of the Map.
func (m *Map) DumperForValue(value interface{}, format int16) (Dumper, error) {
	if format != TextFormatCode && format != BinaryFormatCode {
		return nil, programmingErrorf("unknown format code %d", format)
	}
	if value == nil {
		return nil, programmingErrorf("cannot adapt an untyped nil value")
	}

	typ := reflect.TypeOf(value)
	d, ok := m.dumpers[dumperRegKey{typ: typ, format: format}]
	if !ok && typ.Kind() == reflect.Slice {
		d, ok = m.dumpers[dumperRegKey{typ: sliceType, format: format}]
	}
	if !ok {
		return nil, programmingErrorf("cannot adapt type %T", value)
	}

	kd, ok := d.(KeyedDumper)
	if !ok {
		return d, nil
	}

	rk := refineKey{key: kd.Key(value), format: format}
	if cached, ok := m.refined.Load(rk); ok {
		return cached.(Dumper), nil
	}

	refined, err := kd.Refine(m, value)
	if err != nil {
		return nil, err
	}

	// Concurrent refinement of the same unseen shape may race; the first
	// stored dumper wins so lookups stay identity-stable.
	actual, loaded := m.refined.LoadOrStore(rk, refined)
	d = actual.(Dumper)
	if !loaded && m.shouldLog(LogLevelTrace) {
		data := map[string]interface{}{"type": rk.key.Type.String(), "oid": d.OID(), "value": logValue(value)}
		if rk.key.Elem != nil {
			data["elem"] = rk.key.Elem.String()
		}
		m.log(LogLevelTrace, "dumper refined", data)
	}
	return d, nil
}

// LoaderForOID resolves the loader for data tagged with oid in the given
// format. Data with an unregistered OID falls back to the loaders registered
// for UnknownOID: text as decoded strings, binary as raw bytes.
func (m *Map) LoaderForOID(oid uint32, format int16) (Loader, error) {
	if format != TextFormatCode && format != BinaryFormatCode {
		return nil, programmingErrorf("unknown format code %d", format)
	}

	if l, ok := m.loaders[loaderRegKey{oid: oid, format: format}]; ok {
		return l, nil
	}
	if l, ok := m.loaders[loaderRegKey{oid: UnknownOID, format: format}]; ok {
		return l, nil
	}
	return nil, programmingErrorf("no loader registered for OID %d", oid)
}

// Encode converts value to its wire representation in the given format and
// returns the bytes together with the OID to tag them with. A nil value
// encodes to a nil buffer with OID 0, the SQL NULL. The returned OID may
// also be 0 for dumpers whose output the server types itself.
func (m *Map) Encode(value interface{}, format int16) ([]byte, uint32, error) {
	if value == nil {
		return nil, 0, nil
	}

	d, err := m.DumperForValue(value, format)
	if err != nil {
		return nil, 0, err
	}

	buf, err := d.Dump(value, nil)
	if err != nil {
		return nil, 0, err
	}
	if buf == nil {
		// Empty text and empty bytea dump to zero bytes; keep that distinct
		// from the nil buffer that means NULL.
		buf = []byte{}
	}
	return buf, d.OID(), nil
}

// Decode converts wire data tagged with oid into a Go value. A nil src is
// the SQL NULL and decodes to nil.
func (m *Map) Decode(src []byte, oid uint32, format int16) (interface{}, error) {
	if src == nil {
		return nil, nil
	}

	l, err := m.LoaderForOID(oid, format)
	if err != nil {
		return nil, err
	}
	return l.Load(src)
}

// arrayOIDFor maps an element OID to the OID of its array type, falling
// back on text[] for known elements without a registered array type.
func (m *Map) arrayOIDFor(elemOID uint32) uint32 {
	if elemOID == 0 {
		return 0
	}
	if info, ok := m.typesByOID[elemOID]; ok && info.ArrayOID != 0 {
		return info.ArrayOID
	}
	return TextArrayOID
}

// registerDefaults installs the built-in codecs. Strings dump without a type
// OID so they play the role of the unknown type and the server can cast
// them; everything else is tagged with its concrete OID.
func (m *Map) registerDefaults(config Config) {
	s := m.settings

	reg := func(value interface{}, d Dumper) {
		m.RegisterDumper(reflect.TypeOf(value), d)
	}

	// text
	reg("", &StringDumper{enc: s.encoding, encName: s.encodingName})
	reg("", &StringBinaryDumper{enc: s.encoding, encName: s.encodingName})
	textLoader := &TextLoader{enc: s.encoding, encName: s.encodingName}
	textBinaryLoader := &TextBinaryLoader{enc: s.encoding, encName: s.encodingName}
	for _, oid := range []uint32{UnknownOID, BPCharOID, NameOID, TextOID, VarcharOID} {
		m.RegisterLoader(oid, textLoader)
	}
	for _, oid := range []uint32{BPCharOID, NameOID, TextOID, VarcharOID} {
		m.RegisterLoader(oid, textBinaryLoader)
	}

	// bytea
	reg([]byte(nil), BytesDumper{})
	reg([]byte(nil), BytesBinaryDumper{})
	m.RegisterLoader(ByteaOID, ByteaLoader{})
	m.RegisterLoader(ByteaOID, ByteaBinaryLoader{})
	m.RegisterLoader(UnknownOID, ByteaBinaryLoader{})

	// integers
	reg(int16(0), Int2Dumper{})
	reg(int16(0), Int2BinaryDumper{})
	reg(int8(0), Int2Dumper{})
	reg(int8(0), Int2BinaryDumper{})
	reg(uint8(0), Int2Dumper{})
	reg(uint8(0), Int2BinaryDumper{})
	reg(int32(0), Int4Dumper{})
	reg(int32(0), Int4BinaryDumper{})
	reg(uint16(0), Int4Dumper{})
	reg(uint16(0), Int4BinaryDumper{})
	reg(int64(0), Int8Dumper{})
	reg(int64(0), Int8BinaryDumper{})
	reg(int(0), Int8Dumper{})
	reg(int(0), Int8BinaryDumper{})
	reg(uint32(0), Int8Dumper{})
	reg(uint32(0), Int8BinaryDumper{})
	reg(uint64(0), Int8Dumper{})
	reg(uint64(0), Int8BinaryDumper{})
	reg(uint(0), Int8Dumper{})
	reg(uint(0), Int8BinaryDumper{})
	m.RegisterLoader(Int2OID, Int2Loader{})
	m.RegisterLoader(Int2OID, Int2BinaryLoader{})
	m.RegisterLoader(Int4OID, Int4Loader{})
	m.RegisterLoader(Int4OID, Int4BinaryLoader{})
	m.RegisterLoader(Int8OID, Int8Loader{})
	m.RegisterLoader(Int8OID, Int8BinaryLoader{})
	m.RegisterLoader(OIDOID, OidLoader{})
	m.RegisterLoader(OIDOID, OidBinaryLoader{})

	// floats
	reg(float32(0), Float4Dumper{})
	reg(float32(0), Float4BinaryDumper{})
	reg(float64(0), Float8Dumper{})
	reg(float64(0), Float8BinaryDumper{})
	m.RegisterLoader(Float4OID, Float4Loader{})
	m.RegisterLoader(Float4OID, Float4BinaryLoader{})
	m.RegisterLoader(Float8OID, Float8Loader{})
	m.RegisterLoader(Float8OID, Float8BinaryLoader{})

	// numeric
	numericDumper := &NumericDumper{version: s.version}
	numericBinaryDumper := &NumericBinaryDumper{version: s.version}
	reg(Numeric{}, numericDumper)
	reg(Numeric{}, numericBinaryDumper)
	reg(decimalZero, numericDumper)
	reg(decimalZero, numericBinaryDumper)
	m.RegisterLoader(NumericOID, NumericLoader{})
	m.RegisterLoader(NumericOID, NumericBinaryLoader{})

	// bool
	reg(false, BoolDumper{})
	reg(false, BoolBinaryDumper{})
	m.RegisterLoader(BoolOID, BoolLoader{})
	m.RegisterLoader(BoolOID, BoolBinaryLoader{})

	// date and time
	reg(Date{}, DateDumper{})
	reg(Date{}, DateBinaryDumper{})
	reg(Time{}, TimeDumper{})
	reg(Time{}, TimeBinaryDumper{})
	reg(Timetz{}, TimetzDumper{})
	reg(Timetz{}, TimetzBinaryDumper{})
	reg(Timestamp{}, TimestampDumper{})
	reg(Timestamp{}, TimestampBinaryDumper{})
	reg(time.Time{}, TimestamptzDumper{})
	reg(time.Time{}, TimestamptzBinaryDumper{})
	intervalStyle := ""
	if s.hasServer {
		intervalStyle = s.intervalStyle
	}
	reg(Interval{}, &IntervalDumper{sqlStandard: intervalStyle == "sql_standard"})
	reg(Interval{}, IntervalBinaryDumper{})
	reg(time.Duration(0), &DurationDumper{sqlStandard: intervalStyle == "sql_standard"})
	reg(time.Duration(0), DurationBinaryDumper{})
	m.RegisterLoader(DateOID, &DateLoader{order: s.order.dateFields()})
	m.RegisterLoader(DateOID, DateBinaryLoader{})
	m.RegisterLoader(TimeOID, TimeLoader{})
	m.RegisterLoader(TimeOID, TimeBinaryLoader{})
	m.RegisterLoader(TimetzOID, &TimetzLoader{legacyOffsets: config.LegacyTimetzOffsets})
	m.RegisterLoader(TimetzOID, &TimetzBinaryLoader{legacyOffsets: config.LegacyTimetzOffsets})
	m.RegisterLoader(TimestampOID, &TimestampLoader{order: s.order})
	m.RegisterLoader(TimestampOID, TimestampBinaryLoader{})
	if s.order == orderYMD {
		m.RegisterLoader(TimestamptzOID, &TimestamptzLoader{location: s.location})
	} else {
		m.RegisterLoader(TimestamptzOID, &TimestamptzNotImplementedLoader{dateStyle: s.rawDateStyle})
	}
	m.RegisterLoader(TimestamptzOID, &TimestamptzBinaryLoader{location: s.location})
	if !s.hasServer || s.intervalStyle == "postgres" {
		m.RegisterLoader(IntervalOID, IntervalLoader{})
	} else {
		m.RegisterLoader(IntervalOID, &IntervalNotImplementedLoader{style: s.intervalStyle})
	}
	m.RegisterLoader(IntervalOID, IntervalBinaryLoader{})

	// json
	reg(JSON{}, JSONDumper{})
	reg(JSON{}, JSONBinaryDumper{})
	reg(JSONB{}, JSONBDumper{})
	reg(JSONB{}, JSONBBinaryDumper{})
	m.RegisterLoader(JSONOID, JSONLoader{})
	m.RegisterLoader(JSONOID, JSONBinaryLoader{})
	m.RegisterLoader(JSONBOID, JSONBLoader{})
	m.RegisterLoader(JSONBOID, JSONBBinaryLoader{})

	// uuid
	reg(uuidZero, UUIDDumper{})
	reg(uuidZero, UUIDBinaryDumper{})
	m.RegisterLoader(UUIDOID, UUIDLoader{})
	m.RegisterLoader(UUIDOID, UUIDBinaryLoader{})

	// arrays
	reg([]interface{}(nil), &ListDumper{})
	reg([]interface{}(nil), &ListBinaryDumper{})
	for _, info := range builtinTypes {
		if info.ArrayOID == 0 {
			continue
		}
		m.RegisterLoader(info.ArrayOID, &ArrayLoader{m: m, elemOID: info.OID})
		m.RegisterLoader(info.ArrayOID, &ArrayBinaryLoader{m: m})
	}
}
