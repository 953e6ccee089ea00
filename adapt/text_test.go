package adapt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c0nn3r/psycopg3/adapt"
)

// Strings dump untagged so the server derives the type from the query.
func TestStringDumpsWithoutOID(t *testing.T) {
	m := newMap(t, nil)
	for _, format := range bothFormats {
		buf, oid := encode(t, m, "hello", format)
		assert.Equal(t, "hello", string(buf))
		assert.Equal(t, uint32(0), oid)
	}
}

func TestTextLoadServesAllTextualOIDs(t *testing.T) {
	m := newMap(t, nil)
	oids := []uint32{adapt.TextOID, adapt.VarcharOID, adapt.BPCharOID, adapt.NameOID}
	for _, oid := range oids {
		for _, format := range bothFormats {
			v := decode(t, m, []byte("snippet"), oid, format)
			assert.Equal(t, "snippet", v, "oid %d format %d", oid, format)
		}
	}
	// unknown is textual in the text format only
	v := decode(t, m, []byte("snippet"), adapt.UnknownOID, adapt.TextFormatCode)
	assert.Equal(t, "snippet", v)
}

func TestStringTranscoding(t *testing.T) {
	tests := []struct {
		encoding string
		s        string
		wire     []byte
	}{
		{"LATIN1", "héllo", []byte{'h', 0xe9, 'l', 'l', 'o'}},
		{"latin-1", "héllo", []byte{'h', 0xe9, 'l', 'l', 'o'}},
		{"WIN1252", "€1", []byte{0x80, '1'}},
		{"EUC_JP", "あ", []byte{0xa4, 0xa2}},
		{"UTF8", "héllo", []byte("héllo")},
	}
	for _, tt := range tests {
		m := newMap(t, map[string]string{"client_encoding": tt.encoding})

		buf, _ := encode(t, m, tt.s, adapt.TextFormatCode)
		assert.Equal(t, tt.wire, buf, "dump in %s", tt.encoding)

		v := decode(t, m, tt.wire, adapt.TextOID, adapt.TextFormatCode)
		assert.Equal(t, tt.s, v, "load in %s", tt.encoding)
	}
}

func TestStringDumpUnencodableRune(t *testing.T) {
	m := newMap(t, map[string]string{"client_encoding": "LATIN1"})
	_, _, err := m.Encode("€", adapt.TextFormatCode)
	var perr *adapt.ProgrammingError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "client encoding LATIN1")
}

func TestBytesDump(t *testing.T) {
	m := newMap(t, nil)

	buf, oid := encode(t, m, []byte{0xde, 0xad, 0xbe, 0xef}, adapt.TextFormatCode)
	assert.Equal(t, `\xdeadbeef`, string(buf))
	assert.Equal(t, uint32(adapt.ByteaOID), oid)

	buf, oid = encode(t, m, []byte{0xde, 0xad}, adapt.BinaryFormatCode)
	assert.Equal(t, []byte{0xde, 0xad}, buf)
	assert.Equal(t, uint32(adapt.ByteaOID), oid)
}

func TestByteaLoadHex(t *testing.T) {
	m := newMap(t, nil)

	v := decode(t, m, []byte(`\xDEADbeef`), adapt.ByteaOID, adapt.TextFormatCode)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, v)

	v = decode(t, m, []byte(`\x`), adapt.ByteaOID, adapt.TextFormatCode)
	assert.Equal(t, []byte{}, v)

	_, err := m.Decode([]byte(`\xzz`), adapt.ByteaOID, adapt.TextFormatCode)
	var derr *adapt.DataError
	require.ErrorAs(t, err, &derr)
}

// The escape output style mixes literal bytes, doubled backslashes and octal
// escapes.
func TestByteaLoadEscape(t *testing.T) {
	m := newMap(t, nil)

	v := decode(t, m, []byte(`ab\001\\c`), adapt.ByteaOID, adapt.TextFormatCode)
	assert.Equal(t, []byte{'a', 'b', 0x01, '\\', 'c'}, v)

	v = decode(t, m, []byte(`\134`), adapt.ByteaOID, adapt.TextFormatCode)
	assert.Equal(t, []byte{'\\'}, v)

	_, err := m.Decode([]byte(`ab\9`), adapt.ByteaOID, adapt.TextFormatCode)
	require.EqualError(t, err, `can't parse bytea "ab\\9": invalid escape sequence`)
}

func TestByteaLoadBinaryCopies(t *testing.T) {
	m := newMap(t, nil)

	src := []byte{1, 2, 3}
	v := decode(t, m, src, adapt.ByteaOID, adapt.BinaryFormatCode)
	require.Equal(t, []byte{1, 2, 3}, v)

	// The loaded value must survive reuse of the source buffer.
	src[0] = 9
	require.Equal(t, []byte{1, 2, 3}, v)
}
