package adapt_test

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c0nn3r/psycopg3/adapt"
)

func TestTimestamptzDumpText(t *testing.T) {
	m := newMap(t, nil)

	tests := []struct {
		value time.Time
		text  string
	}{
		{time.Date(2023, 3, 12, 10, 30, 0, 0, time.UTC), "2023-03-12 10:30:00+00:00"},
		{time.Date(2023, 3, 12, 10, 30, 0, 120000000, time.UTC), "2023-03-12 10:30:00.120000+00:00"},
		{time.Date(2023, 3, 12, 16, 0, 0, 0, time.FixedZone("", 19800)), "2023-03-12 16:00:00+05:30"},
		{time.Date(2023, 3, 12, 7, 0, 0, 0, time.FixedZone("", -12600)), "2023-03-12 07:00:00-03:30"},
		{time.Date(2023, 3, 12, 10, 30, 0, 0, time.FixedZone("", 30)), "2023-03-12 10:30:00+00:00:30"},
	}
	for _, tt := range tests {
		buf, oid := encode(t, m, tt.value, adapt.TextFormatCode)
		assert.Equal(t, tt.text, string(buf))
		assert.Equal(t, uint32(adapt.TimestamptzOID), oid)
	}
}

func TestTimestamptzDumpBinary(t *testing.T) {
	m := newMap(t, nil)

	// int64 microseconds since 2000-01-01 00:00:00 UTC; the same instant
	// stores the same value whatever zone expresses it
	tests := []struct {
		value  time.Time
		micros int64
	}{
		{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2000, 1, 1, 5, 30, 0, 0, time.FixedZone("", 19800)), 0},
		{time.Date(2023, 3, 12, 10, 30, 0, 0, time.UTC), 731932200000000},
		{time.Date(2023, 3, 12, 5, 30, 0, 123456789, time.FixedZone("", -18000)), 731932200123456},
	}
	for _, tt := range tests {
		buf, oid := encode(t, m, tt.value, adapt.BinaryFormatCode)
		require.Len(t, buf, 8)
		assert.Equal(t, tt.micros, int64(binary.BigEndian.Uint64(buf)), "%v", tt.value)
		assert.Equal(t, uint32(adapt.TimestamptzOID), oid)
	}
}

func TestTimestamptzDumpOutOfRange(t *testing.T) {
	m := newMap(t, nil)

	for _, format := range bothFormats {
		_, _, err := m.Encode(time.Date(0, 12, 31, 0, 0, 0, 0, time.UTC), format)
		require.EqualError(t, err, "timestamptz out of range: year 0")

		_, _, err = m.Encode(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), format)
		require.EqualError(t, err, "timestamptz out of range: year 10000")
	}
}

func TestTimestamptzLoadText(t *testing.T) {
	m := newMap(t, nil)

	want := time.Date(2023, 3, 12, 10, 30, 0, 0, time.UTC)
	tests := []string{
		"2023-03-12 10:30:00+00",
		"2023-03-12 10:30:00+00:00",
		"2023-03-12 16:00:00+05:30",
		"2023-03-12 07:00:00-03:30",
		"2023-03-12 05:30:00-05",
		"2023-03-12 10:30:30+00:00:30",
	}
	for _, text := range tests {
		v := decode(t, m, []byte(text), adapt.TimestamptzOID, adapt.TextFormatCode)
		got, ok := v.(time.Time)
		require.Truef(t, ok, "got %T", v)
		assert.Truef(t, got.Equal(want), "%s: got %v", text, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	v := decode(t, m, []byte("2023-03-12 10:30:00.5+00"), adapt.TimestamptzOID, adapt.TextFormatCode)
	assert.True(t, v.(time.Time).Equal(time.Date(2023, 3, 12, 10, 30, 0, 500000000, time.UTC)))
}

func TestTimestamptzLoadSessionZone(t *testing.T) {
	if _, err := time.LoadLocation("America/New_York"); err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	m := newMap(t, map[string]string{"TimeZone": "America/New_York"})

	v := decode(t, m, []byte("2023-03-12 10:30:00+00"), adapt.TimestamptzOID, adapt.TextFormatCode)
	got := v.(time.Time)
	assert.True(t, got.Equal(time.Date(2023, 3, 12, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, "America/New_York", got.Location().String())
	// DST began at 07:00 UTC that day, so the wall clock reads 06:30 EDT
	assert.Equal(t, 6, got.Hour())
	assert.Equal(t, 30, got.Minute())

	src := make([]byte, 8)
	binary.BigEndian.PutUint64(src, 731932200000000)
	v = decode(t, m, src, adapt.TimestamptzOID, adapt.BinaryFormatCode)
	got = v.(time.Time)
	assert.True(t, got.Equal(time.Date(2023, 3, 12, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, "America/New_York", got.Location().String())
}

func TestTimestamptzLoadNonISODateStyle(t *testing.T) {
	m := newMap(t, map[string]string{"DateStyle": "German, DMY"})

	_, err := m.Decode([]byte("12.03.2023 10:30:00+00"), adapt.TimestamptzOID, adapt.TextFormatCode)
	require.EqualError(t, err, `can't parse timestamptz with DateStyle "German, DMY": "12.03.2023 10:30:00+00"`)
	var nerr *adapt.NotSupportedError
	require.ErrorAs(t, err, &nerr)

	// only the text rendering is ambiguous; binary still loads
	src := make([]byte, 8)
	v, err := m.Decode(src, adapt.TimestamptzOID, adapt.BinaryFormatCode)
	require.NoError(t, err)
	assert.True(t, v.(time.Time).Equal(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestTimestamptzLoadTextErrors(t *testing.T) {
	m := newMap(t, nil)

	for _, text := range []string{
		"2023-03-12 10:30:00",
		"2023-03-12 24:00:00+00",
		"2023-03-12 10:30:00+24",
		"12.03.2023 10:30:00+00",
	} {
		_, err := m.Decode([]byte(text), adapt.TimestamptzOID, adapt.TextFormatCode)
		require.EqualErrorf(t, err, fmt.Sprintf("can't parse timestamptz %q", text), "%q", text)
	}

	_, err := m.Decode([]byte("0001-03-12 10:30:00+00 BC"), adapt.TimestamptzOID, adapt.TextFormatCode)
	require.EqualError(t, err, `BC timestamps not supported, got "0001-03-12 10:30:00+00 BC"`)
}

func TestTimestamptzLoadBinaryErrors(t *testing.T) {
	m := newMap(t, nil)

	_, err := m.Decode([]byte{0, 0}, adapt.TimestamptzOID, adapt.BinaryFormatCode)
	require.EqualError(t, err, "invalid length for timestamptz: 2")

	micros := int64(math.MinInt64)
	src := make([]byte, 8)
	binary.BigEndian.PutUint64(src, uint64(micros))
	_, err = m.Decode(src, adapt.TimestamptzOID, adapt.BinaryFormatCode)
	require.EqualError(t, err, "timestamp too small (before year 1)")
}
