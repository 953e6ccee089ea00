package adapt

import (
	"bytes"
	"encoding/binary"
	"regexp"
	"strconv"
	"time"

	"github.com/jackc/pgio"
)

// time.Time dumps as timestamptz: the value is an instant and the server
// stores instants, so no wall clock reinterpretation happens on either side.

type TimestamptzDumper struct{}

func (TimestamptzDumper) Format() int16 { return TextFormatCode }
func (TimestamptzDumper) OID() uint32   { return TimestamptzOID }

func (TimestamptzDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as timestamptz", value)
	}
	if y := t.Year(); y < 1 || y > 9999 {
		return nil, programmingErrorf("timestamptz out of range: year %d", y)
	}
	buf = appendTimestampText(buf, t)
	_, off := t.Zone()
	return appendOffsetText(buf, off), nil
}

type TimestamptzBinaryDumper struct{}

func (TimestamptzBinaryDumper) Format() int16 { return BinaryFormatCode }
func (TimestamptzBinaryDumper) OID() uint32   { return TimestamptzOID }

func (TimestamptzBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as timestamptz", value)
	}
	if y := t.Year(); y < 1 || y > 9999 {
		return nil, programmingErrorf("timestamptz out of range: year %d", y)
	}
	micros := t.Unix()*microsecondsPerSecond + int64(t.Nanosecond())/1000 - microsecFromUnixEpochToY2K
	return pgio.AppendInt64(buf, micros), nil
}

var timestamptzRegexp = regexp.MustCompile(
	`^(\d+)-(\d+)-(\d+) (\d+):(\d+):(\d+)(?:\.(\d+))?([-+])(\d+)(?::(\d+))?(?::(\d+))?$`)

// TimestamptzLoader parses the ISO rendering and re-expresses the instant
// in the session time zone. The other DateStyle renderings are ambiguous
// about their offsets and are refused at registration time.
type TimestamptzLoader struct {
	location *time.Location
}

func (*TimestamptzLoader) Format() int16 { return TextFormatCode }

func (l *TimestamptzLoader) Load(src []byte) (interface{}, error) {
	if bytes.HasSuffix(src, []byte("BC")) {
		return nil, dataErrorf(src, "BC timestamps not supported, got %q", src)
	}

	m := timestamptzRegexp.FindSubmatch(src)
	if m == nil {
		return nil, dataErrorf(src, "can't parse timestamptz %q", src)
	}

	t, ok := buildTimestamp(m[1], m[2], m[3], m[4], m[5], m[6], m[7])
	if !ok {
		return nil, dataErrorf(src, "can't parse timestamptz %q", src)
	}

	off, ok := offsetFromGroups(m[8], m[9], m[10], m[11])
	if !ok {
		return nil, dataErrorf(src, "can't parse timestamptz %q", src)
	}

	return t.Add(-time.Duration(off) * time.Second).In(l.location), nil
}

func offsetFromGroups(sign, hb, mb, sb []byte) (int, bool) {
	oh, err := strconv.Atoi(string(hb))
	if err != nil {
		return 0, false
	}
	off := oh * 3600
	if len(mb) > 0 {
		om, err := strconv.Atoi(string(mb))
		if err != nil {
			return 0, false
		}
		off += om * 60
	}
	if len(sb) > 0 {
		os, err := strconv.Atoi(string(sb))
		if err != nil {
			return 0, false
		}
		off += os
	}
	if sign[0] == '-' {
		off = -off
	}
	if off <= -86400 || off >= 86400 {
		return 0, false
	}
	return off, true
}

type TimestamptzNotImplementedLoader struct {
	dateStyle string
}

func (*TimestamptzNotImplementedLoader) Format() int16 { return TextFormatCode }

func (l *TimestamptzNotImplementedLoader) Load(src []byte) (interface{}, error) {
	return nil, notSupportedErrorf("can't parse timestamptz with DateStyle %q: %q", l.dateStyle, src)
}

type TimestamptzBinaryLoader struct {
	location *time.Location
}

func (*TimestamptzBinaryLoader) Format() int16 { return BinaryFormatCode }

func (l *TimestamptzBinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 8 {
		return nil, dataErrorf(src, "invalid length for timestamptz: %d", len(src))
	}

	micros := int64(binary.BigEndian.Uint64(src))
	t, err := timeFromY2KMicros(src, micros)
	if err != nil {
		return nil, err
	}
	return t.In(l.location), nil
}
