package adapt

import (
	"encoding/hex"

	"golang.org/x/text/encoding"
)

// StringDumper dumps Go strings in the text format. Strings are not tagged
// with the text OID: they play the role of the unknown type, so the server
// can cast them to whatever the query requires.
type StringDumper struct {
	enc     encoding.Encoding
	encName string
}

func (StringDumper) Format() int16 { return TextFormatCode }
func (StringDumper) OID() uint32   { return 0 }

func (d *StringDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	return dumpString(d.enc, d.encName, value, buf)
}

// StringBinaryDumper is StringDumper for the binary format. The wire bytes
// are identical; only the format tag differs.
type StringBinaryDumper struct {
	enc     encoding.Encoding
	encName string
}

func (StringBinaryDumper) Format() int16 { return BinaryFormatCode }
func (StringBinaryDumper) OID() uint32   { return 0 }

func (d *StringBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	return dumpString(d.enc, d.encName, value, buf)
}

func dumpString(enc encoding.Encoding, encName string, value interface{}, buf []byte) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as text", value)
	}

	if enc == nil {
		return append(buf, s...), nil
	}

	// Encoders are stateful, so one is built per call rather than shared.
	b, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, programmingErrorf("cannot encode string in client encoding %s: %v", encName, err)
	}
	return append(buf, b...), nil
}

// TextLoader loads textual types (text, varchar, bpchar, name) and is the
// fallback for data with an unregistered OID in the text format. The bytes
// are transcoded from the client encoding when one is in effect.
type TextLoader struct {
	enc     encoding.Encoding
	encName string
}

func (TextLoader) Format() int16 { return TextFormatCode }

func (l *TextLoader) Load(src []byte) (interface{}, error) {
	return loadText(l.enc, l.encName, src)
}

// TextBinaryLoader is TextLoader for the binary format.
type TextBinaryLoader struct {
	enc     encoding.Encoding
	encName string
}

func (TextBinaryLoader) Format() int16 { return BinaryFormatCode }

func (l *TextBinaryLoader) Load(src []byte) (interface{}, error) {
	return loadText(l.enc, l.encName, src)
}

func loadText(enc encoding.Encoding, encName string, src []byte) (interface{}, error) {
	if enc == nil {
		return string(src), nil
	}

	b, err := enc.NewDecoder().Bytes(src)
	if err != nil {
		return nil, dataErrorf(src, "cannot decode text in client encoding %s: %v", encName, err)
	}
	return string(b), nil
}

// BytesDumper dumps []byte as bytea in the hex text representation.
type BytesDumper struct{}

func (BytesDumper) Format() int16 { return TextFormatCode }
func (BytesDumper) OID() uint32   { return ByteaOID }

func (BytesDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	b, ok := value.([]byte)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as bytea", value)
	}

	buf = append(buf, '\\', 'x')
	n := len(buf)
	buf = append(buf, make([]byte, hex.EncodedLen(len(b)))...)
	hex.Encode(buf[n:], b)
	return buf, nil
}

// BytesBinaryDumper dumps []byte as bytea in the binary format, which is the
// raw bytes.
type BytesBinaryDumper struct{}

func (BytesBinaryDumper) Format() int16 { return BinaryFormatCode }
func (BytesBinaryDumper) OID() uint32   { return ByteaOID }

func (BytesBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	b, ok := value.([]byte)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as bytea", value)
	}
	return append(buf, b...), nil
}

// ByteaLoader loads the text representation of bytea: the \x hex form
// produced by modern servers, or the octal escape form of bytea_output =
// 'escape'.
type ByteaLoader struct{}

func (ByteaLoader) Format() int16 { return TextFormatCode }

func (ByteaLoader) Load(src []byte) (interface{}, error) {
	if len(src) >= 2 && src[0] == '\\' && src[1] == 'x' {
		b := make([]byte, hex.DecodedLen(len(src)-2))
		n, err := hex.Decode(b, src[2:])
		if err != nil {
			return nil, dataErrorf(src, "can't parse bytea %q: %v", src, err)
		}
		return b[:n], nil
	}
	return unescapeBytea(src)
}

func unescapeBytea(src []byte) (interface{}, error) {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' {
			out = append(out, src[i])
			continue
		}
		if i+1 < len(src) && src[i+1] == '\\' {
			out = append(out, '\\')
			i++
			continue
		}
		if i+3 < len(src) && isOctal(src[i+1]) && isOctal(src[i+2]) && isOctal(src[i+3]) {
			out = append(out, (src[i+1]-'0')<<6|(src[i+2]-'0')<<3|(src[i+3]-'0'))
			i += 3
			continue
		}
		return nil, dataErrorf(src, "can't parse bytea %q: invalid escape sequence", src)
	}
	return out, nil
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }

// ByteaBinaryLoader loads binary bytea and is the fallback for data with an
// unregistered OID in the binary format.
type ByteaBinaryLoader struct{}

func (ByteaBinaryLoader) Format() int16 { return BinaryFormatCode }

func (ByteaBinaryLoader) Load(src []byte) (interface{}, error) {
	b := make([]byte, len(src))
	copy(b, src)
	return b, nil
}
