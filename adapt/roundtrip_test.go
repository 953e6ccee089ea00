package adapt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c0nn3r/psycopg3/adapt"
	"github.com/c0nn3r/psycopg3/adapttest"
)

// assertLoaded compares a loaded value against the value that was dumped.
// Instants compare with Equal so the session zone on the loaded side does
// not matter, and numerics compare by value rather than representation.
func assertLoaded(t *testing.T, want, got interface{}) {
	t.Helper()

	switch w := want.(type) {
	case adapt.Timestamp:
		ts, ok := got.(adapt.Timestamp)
		require.Truef(t, ok, "got %T", got)
		assert.Truef(t, w.Time.Equal(ts.Time), "want %v, got %v", w.Time, ts.Time)
	case time.Time:
		ts, ok := got.(time.Time)
		require.Truef(t, ok, "got %T", got)
		assert.Truef(t, w.Equal(ts), "want %v, got %v", w, ts)
	case adapt.Numeric:
		n, ok := got.(adapt.Numeric)
		require.Truef(t, ok, "got %T", got)
		require.Equal(t, w.NaN, n.NaN)
		require.Equal(t, w.InfinityModifier, n.InfinityModifier)
		if !w.NaN && w.InfinityModifier == adapt.None {
			assert.Truef(t, w.Decimal.Equal(n.Decimal), "want %s, got %s", w.Decimal, n.Decimal)
		}
	default:
		assert.Equal(t, want, got)
	}
}

func TestRoundTripValues(t *testing.T) {
	m := newMap(t, nil)
	f := adapttest.NewFaker(1)
	f.ServerVersion = 140004

	for _, format := range bothFormats {
		for i := 0; i < 200; i++ {
			v := f.Value()
			if ts, ok := v.(time.Time); ok {
				// zone offsets can carry instants in years 1 and 9999
				// out of the storable range
				if y := ts.UTC().Year(); y < 1 || y > 9999 {
					continue
				}
			}

			buf, oid, err := m.Encode(v, format)
			require.NoErrorf(t, err, "%#v", v)
			if oid == 0 {
				// untyped dumps; the server would infer text
				oid = adapt.TextOID
			}
			got, err := m.Decode(buf, oid, format)
			require.NoErrorf(t, err, "%#v", v)
			assertLoaded(t, v, got)
		}
	}
}

func TestRoundTripDurations(t *testing.T) {
	m := newMap(t, nil)
	f := adapttest.NewFaker(2)

	for _, format := range bothFormats {
		for i := 0; i < 100; i++ {
			d := f.Duration()
			buf, oid, err := m.Encode(d, format)
			require.NoError(t, err)
			require.Equal(t, uint32(adapt.IntervalOID), oid)
			got, err := m.Decode(buf, oid, format)
			require.NoErrorf(t, err, "%v", d)
			assert.Equalf(t, d, got, "%v", d)
		}
	}
}

func TestRoundTripIntervals(t *testing.T) {
	m := newMap(t, nil)
	f := adapttest.NewFaker(3)

	for _, format := range bothFormats {
		for i := 0; i < 100; i++ {
			iv := f.Interval()

			// loading folds months into days: the text literal carries the
			// raw month count at 30 days each, while the binary field is
			// split into years first
			months := int64(iv.Months)
			days := int64(iv.Days)
			if format == adapt.BinaryFormatCode {
				days += 365*(months/12) + 30*(months%12)
			} else {
				days += 30 * months
			}
			want := time.Duration(days*microsPerDay+iv.Microseconds) * time.Microsecond

			buf, oid, err := m.Encode(iv, format)
			require.NoErrorf(t, err, "%+v", iv)
			require.Equal(t, uint32(adapt.IntervalOID), oid)
			got, err := m.Decode(buf, oid, format)
			require.NoErrorf(t, err, "%+v", iv)
			assert.Equalf(t, want, got, "%+v", iv)
		}
	}
}

func TestRoundTripJSON(t *testing.T) {
	m := newMap(t, nil)
	f := adapttest.NewFaker(4)

	for _, format := range bothFormats {
		for i := 0; i < 50; i++ {
			j := f.JSON()

			buf, oid, err := m.Encode(j, format)
			require.NoError(t, err)
			require.Equal(t, uint32(adapt.JSONOID), oid)
			got, err := m.Decode(buf, oid, format)
			require.NoError(t, err)
			assert.Equal(t, j.Value, got)

			buf, oid, err = m.Encode(adapt.JSONB{Value: j.Value}, format)
			require.NoError(t, err)
			require.Equal(t, uint32(adapt.JSONBOID), oid)
			got, err = m.Decode(buf, oid, format)
			require.NoError(t, err)
			assert.Equal(t, j.Value, got)
		}
	}
}

func TestRoundTripSlices(t *testing.T) {
	m := newMap(t, nil)
	f := adapttest.NewFaker(5)

	for _, format := range bothFormats {
		for i := 0; i < 100; i++ {
			s := f.Slice()

			buf, oid, err := m.Encode(s, format)
			require.NoErrorf(t, err, "%#v", s)
			if oid == 0 {
				oid = adapt.TextArrayOID
			}
			got, err := m.Decode(buf, oid, format)
			require.NoErrorf(t, err, "%#v", s)

			list, ok := got.([]interface{})
			require.Truef(t, ok, "got %T", got)
			require.Len(t, list, len(s))
			for j := range s {
				assertLoaded(t, s[j], list[j])
			}
		}
	}
}
