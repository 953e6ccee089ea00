package adapt

import (
	"encoding/binary"
	"regexp"
	"strconv"

	"github.com/jackc/pgio"
)

// Time is the native type of the PostgreSQL time without time zone, a clock
// reading held as microseconds since midnight. 24:00:00 is a valid value.
type Time struct {
	Microseconds int64
}

func (t Time) validate() error {
	if t.Microseconds < 0 || t.Microseconds > microsecondsPerDay {
		return programmingErrorf("invalid time: %d microseconds out of range", t.Microseconds)
	}
	return nil
}

type TimeDumper struct{}

func (TimeDumper) Format() int16 { return TextFormatCode }
func (TimeDumper) OID() uint32   { return TimeOID }

func (TimeDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	t, ok := value.(Time)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as time", value)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return appendClockText(buf, t.Microseconds), nil
}

type TimeBinaryDumper struct{}

func (TimeBinaryDumper) Format() int16 { return BinaryFormatCode }
func (TimeBinaryDumper) OID() uint32   { return TimeOID }

func (TimeBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	t, ok := value.(Time)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as time", value)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return pgio.AppendInt64(buf, t.Microseconds), nil
}

var timeRegexp = regexp.MustCompile(`^(\d+):(\d+):(\d+)(?:\.(\d+))?$`)

type TimeLoader struct{}

func (TimeLoader) Format() int16 { return TextFormatCode }

func (TimeLoader) Load(src []byte) (interface{}, error) {
	m := timeRegexp.FindSubmatch(src)
	if m == nil {
		return nil, dataErrorf(src, "can't parse time %q", src)
	}
	us, ok := clockFromGroups(m[1], m[2], m[3], m[4])
	if !ok || us > microsecondsPerDay {
		return nil, dataErrorf(src, "can't parse time %q", src)
	}
	return Time{Microseconds: us}, nil
}

type TimeBinaryLoader struct{}

func (TimeBinaryLoader) Format() int16 { return BinaryFormatCode }

func (TimeBinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 8 {
		return nil, dataErrorf(src, "invalid length for time: %d", len(src))
	}
	us := int64(binary.BigEndian.Uint64(src))
	if us < 0 || us > microsecondsPerDay {
		return nil, dataErrorf(src, "can't parse time: %d microseconds out of range", us)
	}
	return Time{Microseconds: us}, nil
}

// Timetz is the native type of the PostgreSQL time with time zone: a clock
// reading with a fixed UTC offset. The offset counts seconds east of UTC,
// as in time.Zone; the wire format counts west.
type Timetz struct {
	Microseconds  int64
	OffsetSeconds int
}

func (t Timetz) validate() error {
	if t.Microseconds < 0 || t.Microseconds > microsecondsPerDay {
		return programmingErrorf("invalid timetz: %d microseconds out of range", t.Microseconds)
	}
	if t.OffsetSeconds <= -86400 || t.OffsetSeconds >= 86400 {
		return programmingErrorf("invalid timetz: offset %d seconds out of range", t.OffsetSeconds)
	}
	return nil
}

type TimetzDumper struct{}

func (TimetzDumper) Format() int16 { return TextFormatCode }
func (TimetzDumper) OID() uint32   { return TimetzOID }

func (TimetzDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	t, ok := value.(Timetz)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as timetz", value)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	buf = appendClockText(buf, t.Microseconds)
	return appendOffsetText(buf, t.OffsetSeconds), nil
}

type TimetzBinaryDumper struct{}

func (TimetzBinaryDumper) Format() int16 { return BinaryFormatCode }
func (TimetzBinaryDumper) OID() uint32   { return TimetzOID }

func (TimetzBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	t, ok := value.(Timetz)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as timetz", value)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	buf = pgio.AppendInt64(buf, t.Microseconds)
	return pgio.AppendInt32(buf, int32(-t.OffsetSeconds)), nil
}

var timetzRegexp = regexp.MustCompile(`^(\d+):(\d+):(\d+)(?:\.(\d+))?([-+])(\d+)(?::(\d+))?(?::(\d+))?$`)

type TimetzLoader struct {
	legacyOffsets bool
}

func (*TimetzLoader) Format() int16 { return TextFormatCode }

func (l *TimetzLoader) Load(src []byte) (interface{}, error) {
	m := timetzRegexp.FindSubmatch(src)
	if m == nil {
		return nil, dataErrorf(src, "can't parse timetz %q", src)
	}

	us, ok := clockFromGroups(m[1], m[2], m[3], m[4])
	if !ok || us > microsecondsPerDay {
		return nil, dataErrorf(src, "can't parse timetz %q", src)
	}

	oh, err := strconv.Atoi(string(m[6]))
	if err != nil {
		return nil, dataErrorf(src, "can't parse timetz %q", src)
	}
	off := oh * 3600
	if len(m[7]) > 0 {
		om, err := strconv.Atoi(string(m[7]))
		if err != nil {
			return nil, dataErrorf(src, "can't parse timetz %q", src)
		}
		off += om * 60
	}
	if len(m[8]) > 0 && !l.legacyOffsets {
		os, err := strconv.Atoi(string(m[8]))
		if err != nil {
			return nil, dataErrorf(src, "can't parse timetz %q", src)
		}
		off += os
	}
	if m[5][0] == '-' {
		off = -off
	}
	if off <= -86400 || off >= 86400 {
		return nil, dataErrorf(src, "can't parse timetz %q", src)
	}
	return Timetz{Microseconds: us, OffsetSeconds: off}, nil
}

type TimetzBinaryLoader struct {
	legacyOffsets bool
}

func (*TimetzBinaryLoader) Format() int16 { return BinaryFormatCode }

func (l *TimetzBinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 12 {
		return nil, dataErrorf(src, "invalid length for timetz: %d", len(src))
	}

	us := int64(binary.BigEndian.Uint64(src[0:8]))
	if us < 0 || us > microsecondsPerDay {
		return nil, dataErrorf(src, "can't parse timetz: %d microseconds out of range", us)
	}

	off := -int(int32(binary.BigEndian.Uint32(src[8:12])))
	if l.legacyOffsets {
		off = roundOffsetToMinute(off)
	}
	if off <= -86400 || off >= 86400 {
		return nil, dataErrorf(src, "can't parse timetz: offset %d seconds out of range", off)
	}
	return Timetz{Microseconds: us, OffsetSeconds: off}, nil
}

func roundOffsetToMinute(off int) int {
	if off >= 0 {
		return (off + 30) / 60 * 60
	}
	return -((-off + 30) / 60 * 60)
}
