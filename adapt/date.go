package adapt

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/jackc/pgio"
)

// Date is the native type of the PostgreSQL date, a calendar day with no
// time or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) validate() error {
	if !validDate(d.Year, d.Month, d.Day) {
		return programmingErrorf("invalid date %04d-%02d-%02d", d.Year, int(d.Month), d.Day)
	}
	return nil
}

type DateDumper struct{}

func (DateDumper) Format() int16 { return TextFormatCode }
func (DateDumper) OID() uint32   { return DateOID }

func (DateDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	d, ok := value.(Date)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as date", value)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return appendDateText(buf, d.Year, d.Month, d.Day), nil
}

type DateBinaryDumper struct{}

func (DateBinaryDumper) Format() int16 { return BinaryFormatCode }
func (DateBinaryDumper) OID() uint32   { return DateOID }

func (DateBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	d, ok := value.(Date)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as date", value)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	secs := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Unix()
	return pgio.AppendInt32(buf, int32((secs-secFromUnixEpochToY2K)/86400)), nil
}

// DateLoader parses a date rendered in the session DateStyle. All three
// numeric orders keep the fields at fixed positions, so the text is sliced
// rather than tokenized.
type DateLoader struct {
	order dateOrder
}

func (*DateLoader) Format() int16 { return TextFormatCode }

func (l *DateLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 10 {
		return nil, dataErrorf(src, "date not supported: %q", src)
	}

	var yb, mb, db []byte
	switch l.order {
	case orderDMY:
		db, mb, yb = src[0:2], src[3:5], src[6:10]
	case orderMDY:
		mb, db, yb = src[0:2], src[3:5], src[6:10]
	default:
		yb, mb, db = src[0:4], src[5:7], src[8:10]
	}

	year, err1 := strconv.Atoi(string(yb))
	month, err2 := strconv.Atoi(string(mb))
	day, err3 := strconv.Atoi(string(db))
	if err1 != nil || err2 != nil || err3 != nil || !validDate(year, time.Month(month), day) {
		return nil, dataErrorf(src, "can't parse date %q", src)
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

type DateBinaryLoader struct{}

func (DateBinaryLoader) Format() int16 { return BinaryFormatCode }

func (DateBinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 4 {
		return nil, dataErrorf(src, "invalid length for date: %d", len(src))
	}

	days := int32(binary.BigEndian.Uint32(src))
	t := time.Unix(secFromUnixEpochToY2K+int64(days)*86400, 0).UTC()
	y, mo, d := t.Date()
	if y < 1 {
		return nil, dataErrorf(src, "date too small (before year 1)")
	}
	if y > 9999 {
		return nil, dataErrorf(src, "date too large (after year 10K)")
	}
	return Date{Year: y, Month: mo, Day: d}, nil
}
