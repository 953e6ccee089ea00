package adapt

import (
	"strconv"
	"time"
)

const (
	microsecondsPerSecond = 1000000
	microsecondsPerMinute = 60 * microsecondsPerSecond
	microsecondsPerHour   = 60 * microsecondsPerMinute
	microsecondsPerDay    = 24 * microsecondsPerHour
)

// The wire epoch of dates and timestamps is 2000-01-01, not the Unix epoch.
const (
	secFromUnixEpochToY2K      = 946684800
	microsecFromUnixEpochToY2K = secFromUnixEpochToY2K * microsecondsPerSecond
)

// uspad scales a fraction-of-second field to microseconds by the number of
// digits present, so ".5" reads as 500000.
var uspad = [...]int64{0, 100000, 10000, 1000, 100, 10, 1}

func fractionMicros(frac []byte) (int64, bool) {
	if len(frac) == 0 {
		return 0, true
	}
	if len(frac) > 6 {
		frac = frac[:6]
	}
	n, err := strconv.ParseInt(string(frac), 10, 64)
	if err != nil {
		return 0, false
	}
	return n * uspad[len(frac)], true
}

// maxClockHours keeps the hour field of any clock reading small enough that
// the microsecond arithmetic below cannot wrap. Interval clocks reach beyond
// 24 hours but never anywhere near this.
const maxClockHours = 2500 * 1000 * 1000

// clockFromGroups converts matched hour, minute, second and fraction fields
// to microseconds since midnight. The hour is left otherwise unbounded; each
// caller applies its own upper limit.
func clockFromGroups(hb, mb, sb, fb []byte) (int64, bool) {
	h, err1 := strconv.ParseInt(string(hb), 10, 64)
	mi, err2 := strconv.ParseInt(string(mb), 10, 64)
	s, err3 := strconv.ParseInt(string(sb), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || h > maxClockHours || mi > 59 || s > 59 {
		return 0, false
	}
	fr, ok := fractionMicros(fb)
	if !ok {
		return 0, false
	}
	return h*microsecondsPerHour + mi*microsecondsPerMinute + s*microsecondsPerSecond + fr, true
}

func civilFromGroups(yb, mb, db []byte) (int, time.Month, int, bool) {
	y, err1 := strconv.Atoi(string(yb))
	mo, err2 := strconv.Atoi(string(mb))
	d, err3 := strconv.Atoi(string(db))
	if err1 != nil || err2 != nil || err3 != nil || !validDate(y, time.Month(mo), d) {
		return 0, 0, 0, false
	}
	return y, time.Month(mo), d, true
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// validDate bounds years to 1..9999, the domain shared by every codec of the
// package. The server itself reaches further in both directions; values
// beyond the shared domain fail loudly instead of silently shifting.
func validDate(year int, month time.Month, day int) bool {
	return year >= 1 && year <= 9999 &&
		month >= time.January && month <= time.December &&
		day >= 1 && day <= daysInMonth(year, month)
}

func appendPadInt(buf []byte, n, width int) []byte {
	s := strconv.Itoa(n)
	for i := len(s); i < width; i++ {
		buf = append(buf, '0')
	}
	return append(buf, s...)
}

func appendDateText(buf []byte, year int, month time.Month, day int) []byte {
	buf = appendPadInt(buf, year, 4)
	buf = append(buf, '-')
	buf = appendPadInt(buf, int(month), 2)
	buf = append(buf, '-')
	return appendPadInt(buf, day, 2)
}

func appendTimeOfDayText(buf []byte, h, mi, s int, us int64) []byte {
	buf = appendPadInt(buf, h, 2)
	buf = append(buf, ':')
	buf = appendPadInt(buf, mi, 2)
	buf = append(buf, ':')
	buf = appendPadInt(buf, s, 2)
	if us != 0 {
		buf = append(buf, '.')
		buf = appendPadInt(buf, int(us), 6)
	}
	return buf
}

// appendClockText renders microseconds since midnight as HH:MM:SS with an
// optional six digit fraction.
func appendClockText(buf []byte, us int64) []byte {
	h := us / microsecondsPerHour
	us -= h * microsecondsPerHour
	mi := us / microsecondsPerMinute
	us -= mi * microsecondsPerMinute
	s := us / microsecondsPerSecond
	us -= s * microsecondsPerSecond
	return appendTimeOfDayText(buf, int(h), int(mi), int(s), us)
}

func appendTimestampText(buf []byte, t time.Time) []byte {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	buf = appendDateText(buf, y, mo, d)
	buf = append(buf, ' ')
	return appendTimeOfDayText(buf, h, mi, s, int64(t.Nanosecond()/1000))
}

// appendOffsetText renders a zone offset, seconds east of UTC, as +HH:MM
// with a trailing :SS only when the offset is not a whole number of minutes.
func appendOffsetText(buf []byte, offsetSeconds int) []byte {
	if offsetSeconds < 0 {
		buf = append(buf, '-')
		offsetSeconds = -offsetSeconds
	} else {
		buf = append(buf, '+')
	}
	buf = appendPadInt(buf, offsetSeconds/3600, 2)
	buf = append(buf, ':')
	buf = appendPadInt(buf, offsetSeconds/60%60, 2)
	if s := offsetSeconds % 60; s != 0 {
		buf = append(buf, ':')
		buf = appendPadInt(buf, s, 2)
	}
	return buf
}
