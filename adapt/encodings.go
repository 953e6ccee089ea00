package adapt

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// pgEncodings maps normalized PostgreSQL encoding names to transcoders. A
// nil value means the encoding is byte-compatible with Go strings and needs
// no transcoding.
var pgEncodings = map[string]encoding.Encoding{
	"UTF8":     nil,
	"UNICODE":  nil,
	"SQLASCII": nil,

	"LATIN1":  charmap.ISO8859_1,
	"LATIN2":  charmap.ISO8859_2,
	"LATIN3":  charmap.ISO8859_3,
	"LATIN4":  charmap.ISO8859_4,
	"LATIN5":  charmap.ISO8859_9,
	"LATIN6":  charmap.ISO8859_10,
	"LATIN7":  charmap.ISO8859_13,
	"LATIN8":  charmap.ISO8859_14,
	"LATIN9":  charmap.ISO8859_15,
	"LATIN10": charmap.ISO8859_16,

	"ISO88595": charmap.ISO8859_5,
	"ISO88596": charmap.ISO8859_6,
	"ISO88597": charmap.ISO8859_7,
	"ISO88598": charmap.ISO8859_8,

	"WIN1250": charmap.Windows1250,
	"WIN1251": charmap.Windows1251,
	"WIN1252": charmap.Windows1252,
	"WIN1253": charmap.Windows1253,
	"WIN1254": charmap.Windows1254,
	"WIN1255": charmap.Windows1255,
	"WIN1256": charmap.Windows1256,
	"WIN1257": charmap.Windows1257,
	"WIN1258": charmap.Windows1258,
	"WIN866":  charmap.CodePage866,
	"WIN874":  charmap.Windows874,

	"KOI8":  charmap.KOI8R,
	"KOI8R": charmap.KOI8R,
	"KOI8U": charmap.KOI8U,

	"EUCJP":   japanese.EUCJP,
	"SJIS":    japanese.ShiftJIS,
	"EUCKR":   korean.EUCKR,
	"GBK":     simplifiedchinese.GBK,
	"GB18030": simplifiedchinese.GB18030,
	"BIG5":    traditionalchinese.Big5,
}

func normalizeEncodingName(name string) string {
	name = strings.ToUpper(name)
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, " ", "")
	return name
}

func encodingByName(name string) (encoding.Encoding, error) {
	enc, ok := pgEncodings[normalizeEncodingName(name)]
	if !ok {
		return nil, notSupportedErrorf("client encoding not supported: %q", name)
	}
	return enc, nil
}
