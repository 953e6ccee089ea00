package adapt_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c0nn3r/psycopg3/adapt"
)

func TestArrayDumpText(t *testing.T) {
	m := newMap(t, nil)

	tests := []struct {
		value interface{}
		text  string
		oid   uint32
	}{
		{[]string{"foo"}, `{foo}`, 0},
		{[]string{"foo", "bar baz"}, `{foo,"bar baz"}`, 0},
		{[]string{""}, `{""}`, 0},
		{[]string{"NULL", "null"}, `{"NULL","null"}`, 0},
		{[]string{`he said "hi"`, `back\slash`}, `{"he said \"hi\"","back\\slash"}`, 0},
		{[]string{"a,b", "{x}"}, `{"a,b","{x}"}`, 0},
		{[]interface{}{"a", nil, "b"}, `{a,NULL,b}`, 0},
		{[]string{}, `{}`, 0},
		{[]interface{}{nil, nil}, `{NULL,NULL}`, 0},
		{[]int64{1, 2, 3}, `{1,2,3}`, adapt.Int8ArrayOID},
		{[]bool{true, false}, `{t,f}`, adapt.BoolArrayOID},
		{[]float64{1.5, -2}, `{1.5,-2}`, adapt.Float8ArrayOID},
		{[][]int64{{1, 2}, {3, 4}}, `{{1,2},{3,4}}`, adapt.Int8ArrayOID},
		{[][]byte{{0x01, 0x02}, nil}, `{"\\x0102",NULL}`, adapt.ByteaArrayOID},
		{[]adapt.Date{{Year: 2023, Month: time.March, Day: 12}}, `{2023-03-12}`, adapt.DateArrayOID},
		// timestamps carry a space, so they ride in quotes
		{[]adapt.Timestamp{{Time: time.Date(2023, 3, 12, 10, 30, 0, 0, time.UTC)}},
			`{"2023-03-12 10:30:00"}`, adapt.TimestampArrayOID},
	}
	for _, tt := range tests {
		buf, oid := encode(t, m, tt.value, adapt.TextFormatCode)
		assert.Equalf(t, tt.text, string(buf), "%#v", tt.value)
		assert.Equalf(t, tt.oid, oid, "%#v", tt.value)
	}
}

// the element dumper comes from the first non-nil element; the rest of the
// slice must fit it
func TestArrayDumpMixedElements(t *testing.T) {
	m := newMap(t, nil)

	for _, format := range bothFormats {
		_, _, err := m.Encode([]interface{}{int64(1), "two"}, format)
		require.EqualError(t, err, "cannot dump string as an integer")
	}
}

func TestArrayDumpBinary(t *testing.T) {
	m := newMap(t, nil)

	// (ndims, hasnull, element OID, then per dimension length and lower
	// bound, then length-prefixed elements with -1 for NULL)
	buf, oid := encode(t, m, []interface{}{int64(1), nil, int64(2)}, adapt.BinaryFormatCode)
	assert.Equal(t, []byte{
		0, 0, 0, 1,
		0, 0, 0, 1,
		0, 0, 0, 20,
		0, 0, 0, 3,
		0, 0, 0, 1,
		0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 1,
		0xff, 0xff, 0xff, 0xff,
		0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 2,
	}, buf)
	assert.Equal(t, uint32(adapt.Int8ArrayOID), oid)

	// strings dump untyped, but the header needs a concrete element OID
	buf, oid = encode(t, m, []string{"ab"}, adapt.BinaryFormatCode)
	assert.Equal(t, []byte{
		0, 0, 0, 1,
		0, 0, 0, 0,
		0, 0, 0, 25,
		0, 0, 0, 1,
		0, 0, 0, 1,
		0, 0, 0, 2, 'a', 'b',
	}, buf)
	assert.Equal(t, uint32(adapt.TextArrayOID), oid)

	// an empty slice has no element to type; it goes out as text[]
	buf, oid = encode(t, m, []int64{}, adapt.BinaryFormatCode)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 25}, buf)
	assert.Equal(t, uint32(adapt.TextArrayOID), oid)

	buf, oid = encode(t, m, [][]int64{{1}, {2}}, adapt.BinaryFormatCode)
	assert.Equal(t, []byte{
		0, 0, 0, 2,
		0, 0, 0, 0,
		0, 0, 0, 20,
		0, 0, 0, 2,
		0, 0, 0, 1,
		0, 0, 0, 1,
		0, 0, 0, 1,
		0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 1,
		0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 2,
	}, buf)
	assert.Equal(t, uint32(adapt.Int8ArrayOID), oid)
}

func TestArrayDumpBinaryRagged(t *testing.T) {
	m := newMap(t, nil)

	_, _, err := m.Encode([][]int64{{1}, {2, 3}}, adapt.BinaryFormatCode)
	require.EqualError(t, err, "nested slices have inconsistent lengths")

	_, _, err = m.Encode([]interface{}{[]int64{1}, int64(2)}, adapt.BinaryFormatCode)
	require.EqualError(t, err, "nested slices have inconsistent depths")
}

func TestArrayLoadText(t *testing.T) {
	m := newMap(t, nil)

	tests := []struct {
		src  string
		oid  uint32
		want []interface{}
	}{
		{"{1,2,3}", adapt.Int8ArrayOID, []interface{}{int64(1), int64(2), int64(3)}},
		{"{}", adapt.Int8ArrayOID, []interface{}{}},
		{"{NULL}", adapt.Int8ArrayOID, []interface{}{nil}},
		{"{t,f,NULL}", adapt.BoolArrayOID, []interface{}{true, false, nil}},
		{`{foo,"bar baz",NULL}`, adapt.TextArrayOID, []interface{}{"foo", "bar baz", nil}},
		{`{"NULL"}`, adapt.TextArrayOID, []interface{}{"NULL"}},
		{`{""}`, adapt.TextArrayOID, []interface{}{""}},
		{`{"he said \"hi\"","back\\slash"}`, adapt.TextArrayOID, []interface{}{`he said "hi"`, `back\slash`}},
		{"{{1},{2}}", adapt.Int8ArrayOID, []interface{}{
			[]interface{}{int64(1)},
			[]interface{}{int64(2)},
		}},
	}
	for _, tt := range tests {
		v := decode(t, m, []byte(tt.src), tt.oid, adapt.TextFormatCode)
		assert.Equal(t, tt.want, v, tt.src)
	}
}

func TestArrayLoadTextErrors(t *testing.T) {
	m := newMap(t, nil)

	for _, src := range []string{"", "1,2", "{1,2", "{1}}"} {
		_, err := m.Decode([]byte(src), adapt.Int8ArrayOID, adapt.TextFormatCode)
		require.EqualErrorf(t, err, fmt.Sprintf("malformed array %q", src), "%q", src)
	}

	// element errors surface unchanged
	_, err := m.Decode([]byte("{a}"), adapt.Int8ArrayOID, adapt.TextFormatCode)
	require.EqualError(t, err, `can't parse int8 "a"`)
}

func TestArrayLoadBinary(t *testing.T) {
	m := newMap(t, nil)

	v := decode(t, m, []byte{
		0, 0, 0, 1,
		0, 0, 0, 1,
		0, 0, 0, 20,
		0, 0, 0, 3,
		0, 0, 0, 1,
		0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 1,
		0xff, 0xff, 0xff, 0xff,
		0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 2,
	}, adapt.Int8ArrayOID, adapt.BinaryFormatCode)
	assert.Equal(t, []interface{}{int64(1), nil, int64(2)}, v)

	// zero dimensions is the empty array
	v = decode(t, m, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 25}, adapt.Int8ArrayOID, adapt.BinaryFormatCode)
	assert.Equal(t, []interface{}{}, v)

	// elements with an unregistered OID fall back to raw bytes
	v = decode(t, m, []byte{
		0, 0, 0, 1,
		0, 0, 0, 0,
		0, 0, 2, 0x58, // 600
		0, 0, 0, 1,
		0, 0, 0, 1,
		0, 0, 0, 2, 0xde, 0xad,
	}, adapt.Int8ArrayOID, adapt.BinaryFormatCode)
	assert.Equal(t, []interface{}{[]byte{0xde, 0xad}}, v)
}

func TestArrayBinaryRoundTrip(t *testing.T) {
	m := newMap(t, nil)

	tests := []struct {
		value interface{}
		oid   uint32
		want  []interface{}
	}{
		{[]int64{7, 8}, adapt.Int8ArrayOID, []interface{}{int64(7), int64(8)}},
		{[]string{"x y", ""}, adapt.TextArrayOID, []interface{}{"x y", ""}},
		{[]bool{true}, adapt.BoolArrayOID, []interface{}{true}},
		{[][]int64{{1}, {2}}, adapt.Int8ArrayOID, []interface{}{
			[]interface{}{int64(1)},
			[]interface{}{int64(2)},
		}},
		{[]interface{}{[]byte{1}, nil}, adapt.ByteaArrayOID, []interface{}{[]byte{1}, nil}},
	}
	for _, tt := range tests {
		buf, oid, err := m.Encode(tt.value, adapt.BinaryFormatCode)
		require.NoError(t, err)
		require.Equal(t, tt.oid, oid)
		v, err := m.Decode(buf, oid, adapt.BinaryFormatCode)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v, "%#v", tt.value)
	}
}

func TestArrayLoadBinaryErrors(t *testing.T) {
	m := newMap(t, nil)

	_, err := m.Decode([]byte{0, 0, 0, 1}, adapt.Int8ArrayOID, adapt.BinaryFormatCode)
	require.EqualError(t, err, "malformed binary array: 4 header bytes")

	_, err = m.Decode([]byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0, 0, 0, 20}, adapt.Int8ArrayOID, adapt.BinaryFormatCode)
	require.EqualError(t, err, "malformed binary array: -1 dimensions")

	_, err = m.Decode([]byte{
		0, 0, 0, 1,
		0, 0, 0, 0,
		0, 0, 0, 20,
		0, 0, 0x10, 0, // dimension far beyond the payload
		0, 0, 0, 1,
	}, adapt.Int8ArrayOID, adapt.BinaryFormatCode)
	require.EqualError(t, err, "malformed binary array: bad dimension 4096")

	_, err = m.Decode([]byte{
		0, 0, 0, 1,
		0, 0, 0, 0,
		0, 0, 0, 20,
		0, 0, 0, 1,
		0, 0, 0, 1,
		0, 0, 0, 8, 0, 0, 0, 1, // element shorter than its length word
	}, adapt.Int8ArrayOID, adapt.BinaryFormatCode)
	require.EqualError(t, err, "malformed binary array: truncated element")

	_, err = m.Decode([]byte{
		0, 0, 0, 1,
		0, 0, 0, 0,
		0, 0, 0, 20,
		0, 0, 0, 1,
		0, 0, 0, 1,
		0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 1,
		9, // trailing garbage
	}, adapt.Int8ArrayOID, adapt.BinaryFormatCode)
	require.EqualError(t, err, "malformed binary array: 1 trailing bytes")
}
