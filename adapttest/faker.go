package adapttest

import (
	"math/rand"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/c0nn3r/psycopg3/adapt"
)

// ZoneOffsets is a pool of UTC offsets, in seconds east, covering whole
// hours, half hours, and a sub-minute offset like the ones kept by
// pre-1900 zoneinfo entries.
var ZoneOffsets = []int{0, 3600, -3600, 7200, -18000, 1800, -12600, 19800, -30}

// Faker generates pseudo-random values for round-trip tests. All output is
// deterministic for a given seed.
type Faker struct {
	rnd *rand.Rand

	// ServerVersion gates values only some servers accept, like infinite
	// numerics. Zero means no server.
	ServerVersion int
}

func NewFaker(seed int64) *Faker {
	return &Faker{rnd: rand.New(rand.NewSource(seed))}
}

func (f *Faker) Bool() bool {
	return f.rnd.Intn(2) == 0
}

func (f *Faker) Int16() int16 {
	return int16(f.rnd.Intn(1 << 16))
}

func (f *Faker) Int32() int32 {
	return int32(f.rnd.Uint32())
}

func (f *Faker) Int64() int64 {
	return int64(f.rnd.Uint64())
}

// Float64 returns a finite float spread over most of the type's exponent
// range.
func (f *Faker) Float64() float64 {
	x := f.rnd.Float64() * pow10(f.rnd.Intn(600)-300)
	if f.rnd.Intn(2) == 0 {
		x = -x
	}
	return x
}

func (f *Faker) Float32() float32 {
	x := f.rnd.Float64() * pow10(f.rnd.Intn(60)-30)
	if f.rnd.Intn(2) == 0 {
		x = -x
	}
	return float32(x)
}

func pow10(n int) float64 {
	x := 1.0
	for ; n > 0; n-- {
		x *= 10
	}
	for ; n < 0; n++ {
		x /= 10
	}
	return x
}

// String returns up to 60 random runes. NUL is excluded because the server
// does not store it in text, and surrogates because they are not valid
// UTF-8.
func (f *Faker) String() string {
	n := f.rnd.Intn(60)
	rs := make([]rune, 0, n)
	for len(rs) < n {
		var r rune
		if f.rnd.Intn(2) == 0 {
			r = rune(1 + f.rnd.Intn(0x7f))
		} else {
			r = rune(1 + f.rnd.Intn(0x10ffff))
		}
		if r >= 0xd800 && r <= 0xdfff {
			continue
		}
		rs = append(rs, r)
	}
	return string(rs)
}

func (f *Faker) Bytes() []byte {
	b := make([]byte, f.rnd.Intn(100))
	f.rnd.Read(b)
	return b
}

func (f *Faker) Date() adapt.Date {
	y := 1 + f.rnd.Intn(9999)
	m := time.Month(1 + f.rnd.Intn(12))
	return adapt.Date{Year: y, Month: m, Day: 1 + f.rnd.Intn(daysIn(y, m))}
}

func (f *Faker) Time() adapt.Time {
	return adapt.Time{Microseconds: f.rnd.Int63n(24*60*60*1000000 + 1)}
}

func (f *Faker) Timetz() adapt.Timetz {
	return adapt.Timetz{
		Microseconds:  f.rnd.Int63n(24*60*60*1000000 + 1),
		OffsetSeconds: ZoneOffsets[f.rnd.Intn(len(ZoneOffsets))],
	}
}

func (f *Faker) Timestamp() adapt.Timestamp {
	return adapt.Timestamp{Time: f.instant(time.UTC)}
}

func (f *Faker) Timestamptz() time.Time {
	off := ZoneOffsets[f.rnd.Intn(len(ZoneOffsets))]
	return f.instant(time.FixedZone("", off))
}

func (f *Faker) instant(loc *time.Location) time.Time {
	y := 1 + f.rnd.Intn(9999)
	m := time.Month(1 + f.rnd.Intn(12))
	d := 1 + f.rnd.Intn(daysIn(y, m))
	us := f.rnd.Int63n(24 * 60 * 60 * 1000000)
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return t.Add(time.Duration(us) * time.Microsecond)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (f *Faker) Duration() time.Duration {
	us := f.rnd.Int63n(1 << 53)
	if f.rnd.Intn(2) == 0 {
		us = -us
	}
	return time.Duration(us) * time.Microsecond
}

// Interval keeps each field small enough that the folded total fits a
// time.Duration.
func (f *Faker) Interval() adapt.Interval {
	iv := adapt.Interval{
		Microseconds: f.rnd.Int63n(3 * 24 * 60 * 60 * 1000000),
		Days:         int32(f.rnd.Intn(3000)),
		Months:       int32(f.rnd.Intn(400)),
	}
	if f.rnd.Intn(2) == 0 {
		iv.Microseconds = -iv.Microseconds
		iv.Days = -iv.Days
		iv.Months = -iv.Months
	}
	return iv
}

// Numeric returns a finite decimal most of the time and NaN or, when
// ServerVersion allows, an infinity about one time in fifty.
func (f *Faker) Numeric() adapt.Numeric {
	if f.rnd.Intn(50) == 0 {
		if f.ServerVersion >= 140000 && f.rnd.Intn(2) == 0 {
			if f.rnd.Intn(2) == 0 {
				return adapt.Numeric{InfinityModifier: adapt.Infinity}
			}
			return adapt.Numeric{InfinityModifier: adapt.NegativeInfinity}
		}
		return adapt.Numeric{NaN: true}
	}
	coef := f.rnd.Int63()
	if f.rnd.Intn(2) == 0 {
		coef = -coef
	}
	exp := int32(f.rnd.Intn(41) - 20)
	return adapt.Numeric{Decimal: decimal.New(coef, exp)}
}

func (f *Faker) UUID() uuid.UUID {
	var u uuid.UUID
	f.rnd.Read(u[:])
	return u
}

// JSON returns a value drawn from the types encoding/json decodes to, so a
// dumped then reloaded document compares equal to the original.
func (f *Faker) JSON() adapt.JSON {
	return adapt.JSON{Value: f.jsonValue(0.66)}
}

func (f *Faker) jsonValue(containerChance float64) interface{} {
	if f.rnd.Float64() < containerChance {
		n := f.rnd.Intn(8)
		if f.rnd.Intn(2) == 0 {
			l := make([]interface{}, n)
			for i := range l {
				l[i] = f.jsonValue(containerChance / 2)
			}
			return l
		}
		m := make(map[string]interface{}, n)
		for i := 0; i < n; i++ {
			m[f.jsonKey()] = f.jsonValue(containerChance / 2)
		}
		return m
	}
	switch f.rnd.Intn(5) {
	case 0:
		return nil
	case 1:
		return float64(f.rnd.Intn(1 << 20))
	case 2:
		return f.rnd.Float64()
	case 3:
		return f.rnd.Intn(2) == 0
	default:
		return f.String()
	}
}

func (f *Faker) jsonKey() string {
	b := make([]byte, 1+f.rnd.Intn(10))
	for i := range b {
		b[i] = byte('a' + f.rnd.Intn(26))
	}
	return string(b)
}

// Value returns a value of a random supported type.
func (f *Faker) Value() interface{} {
	switch f.rnd.Intn(14) {
	case 0:
		return f.Bool()
	case 1:
		return f.Int16()
	case 2:
		return f.Int32()
	case 3:
		return f.Int64()
	case 4:
		return f.Float64()
	case 5:
		return f.String()
	case 6:
		return f.Bytes()
	case 7:
		return f.Date()
	case 8:
		return f.Time()
	case 9:
		return f.Timetz()
	case 10:
		return f.Timestamp()
	case 11:
		return f.Timestamptz()
	case 12:
		return f.Numeric()
	default:
		return f.UUID()
	}
}

// Slice returns a non-empty slice of values of one random type, with an
// occasional nil standing in for NULL.
func (f *Faker) Slice() []interface{} {
	var mk func() interface{}
	switch f.rnd.Intn(10) {
	case 0:
		mk = func() interface{} { return f.Bool() }
	case 1:
		mk = func() interface{} { return f.Int16() }
	case 2:
		mk = func() interface{} { return f.Int32() }
	case 3:
		mk = func() interface{} { return f.Int64() }
	case 4:
		mk = func() interface{} { return f.Float64() }
	case 5:
		mk = func() interface{} { return f.String() }
	case 6:
		mk = func() interface{} { return f.Bytes() }
	case 7:
		mk = func() interface{} { return f.Date() }
	case 8:
		mk = func() interface{} { return f.Timestamp() }
	default:
		mk = func() interface{} { return f.UUID() }
	}
	out := make([]interface{}, 1+f.rnd.Intn(19))
	for i := range out {
		if f.rnd.Intn(20) == 0 {
			continue
		}
		out[i] = mk()
	}
	return out
}
