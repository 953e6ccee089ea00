package adapt

import (
	"encoding/json"
)

// JSON wraps any Go value for adaptation as the PostgreSQL json type; the
// wrapped value is serialized with encoding/json. Loaders return the
// deserialized value unwrapped.
type JSON struct {
	Value interface{}
}

// JSONB is JSON's jsonb counterpart.
type JSONB struct {
	Value interface{}
}

func dumpJSON(value interface{}, buf []byte) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, programmingErrorf("can't dump json: %s", err)
	}
	return append(buf, b...), nil
}

func loadJSON(src []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(src, &v); err != nil {
		return nil, dataErrorf(src, "can't parse json: %s", err)
	}
	return v, nil
}

type JSONDumper struct{}

func (JSONDumper) Format() int16 { return TextFormatCode }
func (JSONDumper) OID() uint32   { return JSONOID }

func (JSONDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	v, ok := value.(JSON)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as json", value)
	}
	return dumpJSON(v.Value, buf)
}

type JSONBinaryDumper struct{}

func (JSONBinaryDumper) Format() int16 { return BinaryFormatCode }
func (JSONBinaryDumper) OID() uint32   { return JSONOID }

func (JSONBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	v, ok := value.(JSON)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as json", value)
	}
	return dumpJSON(v.Value, buf)
}

type JSONBDumper struct{}

func (JSONBDumper) Format() int16 { return TextFormatCode }
func (JSONBDumper) OID() uint32   { return JSONBOID }

func (JSONBDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	v, ok := value.(JSONB)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as jsonb", value)
	}
	return dumpJSON(v.Value, buf)
}

type JSONBBinaryDumper struct{}

func (JSONBBinaryDumper) Format() int16 { return BinaryFormatCode }
func (JSONBBinaryDumper) OID() uint32   { return JSONBOID }

// Binary jsonb leads with a version byte.
func (JSONBBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	v, ok := value.(JSONB)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as jsonb", value)
	}
	return dumpJSON(v.Value, append(buf, 1))
}

type JSONLoader struct{}

func (JSONLoader) Format() int16 { return TextFormatCode }

func (JSONLoader) Load(src []byte) (interface{}, error) {
	return loadJSON(src)
}

type JSONBinaryLoader struct{}

func (JSONBinaryLoader) Format() int16 { return BinaryFormatCode }

func (JSONBinaryLoader) Load(src []byte) (interface{}, error) {
	return loadJSON(src)
}

type JSONBLoader struct{}

func (JSONBLoader) Format() int16 { return TextFormatCode }

func (JSONBLoader) Load(src []byte) (interface{}, error) {
	return loadJSON(src)
}

type JSONBBinaryLoader struct{}

func (JSONBBinaryLoader) Format() int16 { return BinaryFormatCode }

func (JSONBBinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) == 0 || src[0] != 1 {
		return nil, dataErrorf(src, "unexpected jsonb version number")
	}
	return loadJSON(src[1:])
}
