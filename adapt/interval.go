package adapt

import (
	"encoding/binary"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/jackc/pgio"
)

// Interval is the native type of the PostgreSQL interval, mirroring its wire
// components. Months and days stay apart from the microseconds because their
// length varies with the calendar.
type Interval struct {
	Microseconds int64
	Days         int32
	Months       int32
}

// IntervalDumper renders an Interval as explicit unit counts. Under the
// sql_standard IntervalStyle every count carries its sign so the server
// cannot reinterpret the leading sign as covering the whole literal.
type IntervalDumper struct {
	sqlStandard bool
}

func (*IntervalDumper) Format() int16 { return TextFormatCode }
func (*IntervalDumper) OID() uint32   { return IntervalOID }

func (d *IntervalDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	iv, ok := value.(Interval)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as interval", value)
	}

	if d.sqlStandard {
		buf = appendSignedInt(buf, int64(iv.Months))
		buf = append(buf, " month "...)
		buf = appendSignedInt(buf, int64(iv.Days))
		buf = append(buf, " day "...)
		buf = appendSignedInt(buf, iv.Microseconds/microsecondsPerSecond)
		buf = append(buf, " second "...)
		buf = appendSignedInt(buf, iv.Microseconds%microsecondsPerSecond)
		return append(buf, " microsecond"...), nil
	}

	buf = strconv.AppendInt(buf, int64(iv.Months), 10)
	buf = append(buf, " mons "...)
	buf = strconv.AppendInt(buf, int64(iv.Days), 10)
	buf = append(buf, " days "...)
	return appendIntervalClock(buf, iv.Microseconds), nil
}

type IntervalBinaryDumper struct{}

func (IntervalBinaryDumper) Format() int16 { return BinaryFormatCode }
func (IntervalBinaryDumper) OID() uint32   { return IntervalOID }

func (IntervalBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	iv, ok := value.(Interval)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as interval", value)
	}
	buf = pgio.AppendInt64(buf, iv.Microseconds)
	buf = pgio.AppendInt32(buf, iv.Days)
	return pgio.AppendInt32(buf, iv.Months), nil
}

// DurationDumper renders a time.Duration the way the wire renders intervals:
// whole days split off first, with the remaining clock always non-negative,
// so -1 hour becomes "-1 days 23:00:00".
type DurationDumper struct {
	sqlStandard bool
}

func (*DurationDumper) Format() int16 { return TextFormatCode }
func (*DurationDumper) OID() uint32   { return IntervalOID }

func (d *DurationDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	dur, ok := value.(time.Duration)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as interval", value)
	}

	days, rem := splitDuration(dur)

	if d.sqlStandard {
		buf = appendSignedInt(buf, days)
		buf = append(buf, " day "...)
		buf = appendSignedInt(buf, rem/microsecondsPerSecond)
		buf = append(buf, " second "...)
		buf = appendSignedInt(buf, rem%microsecondsPerSecond)
		return append(buf, " microsecond"...), nil
	}

	buf = strconv.AppendInt(buf, days, 10)
	buf = append(buf, " days "...)
	return appendClockText(buf, rem), nil
}

type DurationBinaryDumper struct{}

func (DurationBinaryDumper) Format() int16 { return BinaryFormatCode }
func (DurationBinaryDumper) OID() uint32   { return IntervalOID }

func (DurationBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	dur, ok := value.(time.Duration)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as interval", value)
	}

	days, rem := splitDuration(dur)
	buf = pgio.AppendInt64(buf, rem)
	buf = pgio.AppendInt32(buf, int32(days))
	return pgio.AppendInt32(buf, 0), nil
}

// splitDuration floors a duration into whole days and a clock remainder in
// microseconds, 0 <= rem < 24h.
func splitDuration(d time.Duration) (days, rem int64) {
	us := int64(d / time.Microsecond)
	days = us / microsecondsPerDay
	rem = us - days*microsecondsPerDay
	if rem < 0 {
		days--
		rem += microsecondsPerDay
	}
	return days, rem
}

func appendSignedInt(buf []byte, n int64) []byte {
	if n >= 0 {
		buf = append(buf, '+')
	}
	return strconv.AppendInt(buf, n, 10)
}

// appendIntervalClock is appendClockText without the day cap, for clock
// parts that may be negative or exceed 24 hours.
func appendIntervalClock(buf []byte, us int64) []byte {
	if us < 0 {
		buf = append(buf, '-')
	}
	abs := uint64(us)
	if us < 0 {
		abs = -abs
	}
	h := abs / microsecondsPerHour
	abs -= h * microsecondsPerHour
	mi := abs / microsecondsPerMinute
	abs -= mi * microsecondsPerMinute
	s := abs / microsecondsPerSecond
	abs -= s * microsecondsPerSecond

	buf = appendPadInt(buf, int(h), 2)
	buf = append(buf, ':')
	buf = appendPadInt(buf, int(mi), 2)
	buf = append(buf, ':')
	buf = appendPadInt(buf, int(s), 2)
	if abs != 0 {
		buf = append(buf, '.')
		buf = appendPadInt(buf, int(abs), 6)
	}
	return buf
}

var intervalRegexp = regexp.MustCompile(
	`^(?:([-+]?\d+) years? ?)?(?:([-+]?\d+) mons? ?)?(?:([-+]?\d+) days? ?)?(?:([-+])?(\d+):(\d+):(\d+)(?:\.(\d+))?)?$`)

// IntervalLoader parses the postgres IntervalStyle rendering into a
// time.Duration. Years and months have no fixed length, so they fold in at
// 365 and 30 days the way the server itself folds them under justify_days.
type IntervalLoader struct{}

func (IntervalLoader) Format() int16 { return TextFormatCode }

func (IntervalLoader) Load(src []byte) (interface{}, error) {
	m := intervalRegexp.FindSubmatch(src)
	if m == nil || (m[1] == nil && m[2] == nil && m[3] == nil && m[5] == nil) {
		return nil, dataErrorf(src, "can't parse interval %q", src)
	}

	var days int64
	for i, mult := range []int64{365, 30, 1} {
		g := m[i+1]
		if g == nil {
			continue
		}
		n, err := strconv.ParseInt(string(g), 10, 64)
		if err != nil {
			return nil, dataErrorf(src, "can't parse interval %q", src)
		}
		days += n * mult
	}

	var clock int64
	if m[5] != nil {
		us, ok := clockFromGroups(m[5], m[6], m[7], m[8])
		if !ok {
			return nil, dataErrorf(src, "can't parse interval %q", src)
		}
		clock = us
		if len(m[4]) > 0 && m[4][0] == '-' {
			clock = -clock
		}
	}

	dur, ok := durationFromParts(days, clock)
	if !ok {
		return nil, dataErrorf(src, "interval out of range: %q", src)
	}
	return dur, nil
}

type IntervalNotImplementedLoader struct {
	style string
}

func (*IntervalNotImplementedLoader) Format() int16 { return TextFormatCode }

func (l *IntervalNotImplementedLoader) Load(src []byte) (interface{}, error) {
	return nil, notSupportedErrorf("can't parse interval with IntervalStyle %q: %q", l.style, src)
}

type IntervalBinaryLoader struct{}

func (IntervalBinaryLoader) Format() int16 { return BinaryFormatCode }

func (IntervalBinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 16 {
		return nil, dataErrorf(src, "invalid length for interval: %d", len(src))
	}

	us := int64(binary.BigEndian.Uint64(src[0:8]))
	days := int64(int32(binary.BigEndian.Uint32(src[8:12])))
	months := int64(int32(binary.BigEndian.Uint32(src[12:16])))

	if months > 0 {
		years := months / 12
		months -= years * 12
		days += 365*years + 30*months
	} else if months < 0 {
		years := -months / 12
		months = -months - years*12
		days -= 365*years + 30*months
	}

	dur, ok := durationFromParts(days, us)
	if !ok {
		return nil, dataErrorf(src, "interval out of range: %q", src)
	}
	return dur, nil
}

const maxDurationMicroseconds = math.MaxInt64 / 1000

// durationFromParts combines day and microsecond counts, reporting rather
// than wrapping when the result leaves time.Duration's range.
func durationFromParts(days, micros int64) (time.Duration, bool) {
	const maxDays = maxDurationMicroseconds / microsecondsPerDay
	if micros < -maxDurationMicroseconds || micros > maxDurationMicroseconds {
		return 0, false
	}
	if days < -maxDays-1 || days > maxDays+1 {
		return 0, false
	}
	total := micros + days*microsecondsPerDay
	if total < -maxDurationMicroseconds || total > maxDurationMicroseconds {
		return 0, false
	}
	return time.Duration(total) * time.Microsecond, true
}
