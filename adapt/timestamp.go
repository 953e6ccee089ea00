package adapt

import (
	"bytes"
	"encoding/binary"
	"regexp"
	"strconv"
	"time"

	"github.com/jackc/pgio"
)

// Timestamp is the native type of the PostgreSQL timestamp without time
// zone. The wall clock reading of Time is the timestamp; its Location is
// ignored. Loaders return the Time in UTC.
type Timestamp struct {
	Time time.Time
}

func validTimestampYear(t time.Time) error {
	if y := t.Year(); y < 1 || y > 9999 {
		return programmingErrorf("timestamp out of range: year %d", y)
	}
	return nil
}

type TimestampDumper struct{}

func (TimestampDumper) Format() int16 { return TextFormatCode }
func (TimestampDumper) OID() uint32   { return TimestampOID }

func (TimestampDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	ts, ok := value.(Timestamp)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as timestamp", value)
	}
	if err := validTimestampYear(ts.Time); err != nil {
		return nil, err
	}
	return appendTimestampText(buf, ts.Time), nil
}

type TimestampBinaryDumper struct{}

func (TimestampBinaryDumper) Format() int16 { return BinaryFormatCode }
func (TimestampBinaryDumper) OID() uint32   { return TimestampOID }

func (TimestampBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	ts, ok := value.(Timestamp)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as timestamp", value)
	}
	if err := validTimestampYear(ts.Time); err != nil {
		return nil, err
	}

	// Reread the wall clock in UTC so the Location carried by the value
	// cannot shift the stored instant.
	y, mo, d := ts.Time.Date()
	h, mi, s := ts.Time.Clock()
	u := time.Date(y, mo, d, h, mi, s, ts.Time.Nanosecond(), time.UTC)

	micros := u.Unix()*microsecondsPerSecond + int64(u.Nanosecond())/1000 - microsecFromUnixEpochToY2K
	return pgio.AppendInt64(buf, micros), nil
}

var (
	timestampRegexp = regexp.MustCompile(
		`^(\d+)[^a-zA-Z0-9](\d+)[^a-zA-Z0-9](\d+)[^a-zA-Z0-9](\d+)[^a-zA-Z0-9](\d+)[^a-zA-Z0-9](\d+)(?:\.(\d+))?$`)

	// Postgres style spells out a weekday and renders the month by name, on
	// the side of the day given by the DateStyle order, with the year last.
	timestampPGRegexp = regexp.MustCompile(
		`^[A-Za-z]{3} (?:(\d+)|([A-Za-z]{3})) (?:(\d+)|([A-Za-z]{3})) (\d+):(\d+):(\d+)(?:\.(\d+))? (\d+)$`)
)

var monthAbbrs = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// buildTimestamp assembles a UTC time.Time from matched date and clock
// fields, rejecting readings outside year 1..9999 or hour 0..23.
func buildTimestamp(yb, mb, db, hb, mib, sb, fb []byte) (time.Time, bool) {
	y, mo, d, ok := civilFromGroups(yb, mb, db)
	if !ok {
		return time.Time{}, false
	}
	us, ok := clockFromGroups(hb, mib, sb, fb)
	if !ok || us >= microsecondsPerDay {
		return time.Time{}, false
	}
	t := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC).Add(time.Duration(us) * time.Microsecond)
	return t, true
}

type TimestampLoader struct {
	order dateOrder
}

func (*TimestampLoader) Format() int16 { return TextFormatCode }

func (l *TimestampLoader) Load(src []byte) (interface{}, error) {
	if bytes.HasSuffix(src, []byte("BC")) {
		return nil, dataErrorf(src, "BC timestamps not supported, got %q", src)
	}

	if l.order == orderPGDM || l.order == orderPGMD {
		return l.loadPG(src)
	}

	m := timestampRegexp.FindSubmatch(src)
	if m == nil {
		return nil, dataErrorf(src, "can't parse timestamp %q", src)
	}

	var yb, mb, db []byte
	switch l.order {
	case orderDMY:
		db, mb, yb = m[1], m[2], m[3]
	case orderMDY:
		mb, db, yb = m[1], m[2], m[3]
	default:
		yb, mb, db = m[1], m[2], m[3]
	}

	t, ok := buildTimestamp(yb, mb, db, m[4], m[5], m[6], m[7])
	if !ok {
		return nil, dataErrorf(src, "can't parse timestamp %q", src)
	}
	return Timestamp{Time: t}, nil
}

func (l *TimestampLoader) loadPG(src []byte) (interface{}, error) {
	m := timestampPGRegexp.FindSubmatch(src)
	if m == nil {
		return nil, dataErrorf(src, "can't parse timestamp %q", src)
	}

	var db, monb []byte
	if l.order == orderPGDM {
		db, monb = m[1], m[4]
	} else {
		monb, db = m[2], m[3]
	}
	if len(db) == 0 || len(monb) == 0 {
		return nil, dataErrorf(src, "can't parse timestamp %q", src)
	}

	mo, ok := monthAbbrs[string(monb)]
	if !ok {
		return nil, dataErrorf(src, "can't parse timestamp %q", src)
	}

	y, err1 := strconv.Atoi(string(m[9]))
	d, err2 := strconv.Atoi(string(db))
	if err1 != nil || err2 != nil || !validDate(y, mo, d) {
		return nil, dataErrorf(src, "can't parse timestamp %q", src)
	}

	us, ok := clockFromGroups(m[5], m[6], m[7], m[8])
	if !ok || us >= microsecondsPerDay {
		return nil, dataErrorf(src, "can't parse timestamp %q", src)
	}

	t := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC).Add(time.Duration(us) * time.Microsecond)
	return Timestamp{Time: t}, nil
}

type TimestampBinaryLoader struct{}

func (TimestampBinaryLoader) Format() int16 { return BinaryFormatCode }

func (TimestampBinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 8 {
		return nil, dataErrorf(src, "invalid length for timestamp: %d", len(src))
	}

	micros := int64(binary.BigEndian.Uint64(src))
	t, err := timeFromY2KMicros(src, micros)
	if err != nil {
		return nil, err
	}
	return Timestamp{Time: t}, nil
}

// timeFromY2KMicros turns a wire microsecond count into a UTC time.Time.
// The count is relative to 2000-01-01; readings outside year 1..9999,
// including the infinity sentinels at the int64 extremes, are rejected.
func timeFromY2KMicros(src []byte, micros int64) (time.Time, error) {
	sec := micros / microsecondsPerSecond
	nsec := micros % microsecondsPerSecond * 1000
	t := time.Unix(secFromUnixEpochToY2K+sec, nsec).UTC()
	if y := t.Year(); y < 1 || y > 9999 {
		if micros <= 0 {
			return time.Time{}, dataErrorf(src, "timestamp too small (before year 1)")
		}
		return time.Time{}, dataErrorf(src, "timestamp too large (after year 10K)")
	}
	return t, nil
}
