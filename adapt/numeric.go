package adapt

import (
	"encoding/binary"
	"math"
	"math/big"
	"strconv"

	"github.com/jackc/pgio"
	"github.com/shopspring/decimal"
)

// PostgreSQL internal numeric storage uses 16-bit "digits" with base of 10,000
const nbase = 10000

const (
	pgNumericNaN     = 0x00000000c0000000
	pgNumericNaNSign = 0xc000

	pgNumericPosInf     = 0x00000000d0000000
	pgNumericPosInfSign = 0xd000

	pgNumericNegInf     = 0x00000000f0000000
	pgNumericNegInfSign = 0xf000
)

var big0 = big.NewInt(0)
var big1 = big.NewInt(1)
var big10 = big.NewInt(10)
var big100 = big.NewInt(100)
var big1000 = big.NewInt(1000)

var bigNBase = big.NewInt(nbase)
var bigNBaseX2 = big.NewInt(nbase * nbase)
var bigNBaseX3 = big.NewInt(nbase * nbase * nbase)
var bigNBaseX4 = big.NewInt(nbase * nbase * nbase * nbase)

var decimalZero = decimal.Decimal{}

type InfinityModifier int8

const (
	Infinity         InfinityModifier = 1
	None             InfinityModifier = 0
	NegativeInfinity InfinityModifier = -Infinity
)

func (im InfinityModifier) String() string {
	switch im {
	case None:
		return "none"
	case Infinity:
		return "infinity"
	case NegativeInfinity:
		return "negative infinity"
	default:
		return "invalid"
	}
}

// Numeric is the native type of the PostgreSQL numeric. The finite values
// are held in a decimal.Decimal; NaN and the infinities, which
// decimal.Decimal cannot represent, are carried alongside. Plain
// decimal.Decimal values dump as well; loaders always return Numeric.
type Numeric struct {
	Decimal          decimal.Decimal
	NaN              bool
	InfinityModifier InfinityModifier
}

func numericFromValue(value interface{}) (Numeric, error) {
	switch value := value.(type) {
	case Numeric:
		return value, nil
	case decimal.Decimal:
		return Numeric{Decimal: value}, nil
	}
	return Numeric{}, programmingErrorf("cannot dump %T as numeric", value)
}

// checkInfinityDump gates the numeric infinity sentinels, which the server
// only accepts since version 14. Maps built without a server version pass
// everything through.
func checkInfinityDump(version int) error {
	if version != 0 && version < 140000 {
		return programmingErrorf("numeric infinity requires server version 14, have %d", version)
	}
	return nil
}

type NumericDumper struct {
	version int
}

func (NumericDumper) Format() int16 { return TextFormatCode }
func (NumericDumper) OID() uint32   { return NumericOID }

func (d *NumericDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	n, err := numericFromValue(value)
	if err != nil {
		return nil, err
	}

	if n.NaN {
		return append(buf, "NaN"...), nil
	}
	if n.InfinityModifier != None {
		if err := checkInfinityDump(d.version); err != nil {
			return nil, err
		}
		if n.InfinityModifier == Infinity {
			return append(buf, "Infinity"...), nil
		}
		return append(buf, "-Infinity"...), nil
	}

	return append(buf, n.Decimal.String()...), nil
}

type NumericBinaryDumper struct {
	version int
}

func (NumericBinaryDumper) Format() int16 { return BinaryFormatCode }
func (NumericBinaryDumper) OID() uint32   { return NumericOID }

func (d *NumericBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	n, err := numericFromValue(value)
	if err != nil {
		return nil, err
	}

	if n.NaN {
		return pgio.AppendUint64(buf, pgNumericNaN), nil
	}
	if n.InfinityModifier != None {
		if err := checkInfinityDump(d.version); err != nil {
			return nil, err
		}
		if n.InfinityModifier == Infinity {
			return pgio.AppendUint64(buf, pgNumericPosInf), nil
		}
		return pgio.AppendUint64(buf, pgNumericNegInf), nil
	}

	return encodeNumericBinary(n.Decimal.Coefficient(), n.Decimal.Exponent(), buf), nil
}

// encodeNumericBinary writes the (ndigits, weight, sign, dscale, digits...)
// wire layout for the number num × 10^exp. The coefficient and exponent are
// first normalized so the exponent is a multiple of 4, which makes the
// conversion to 16-bit base 10,000 digits straightforward.
func encodeNumericBinary(num *big.Int, exp int32, buf []byte) []byte {
	var sign int16
	if num.Cmp(big0) < 0 {
		sign = 16384
	}

	absInt := &big.Int{}
	wholePart := &big.Int{}
	fracPart := &big.Int{}
	remainder := &big.Int{}
	absInt.Abs(num)

	dscaleExp := exp

	switch exp % 4 {
	case 1, -3:
		exp = exp - 1
		absInt.Mul(absInt, big10)
	case 2, -2:
		exp = exp - 2
		absInt.Mul(absInt, big100)
	case 3, -1:
		exp = exp - 3
		absInt.Mul(absInt, big1000)
	}

	if exp < 0 {
		divisor := &big.Int{}
		divisor.Exp(big10, big.NewInt(int64(-exp)), nil)
		wholePart.DivMod(absInt, divisor, fracPart)
		// Adding the divisor preserves leading zero digit groups of the
		// fraction while it is peeled off below.
		fracPart.Add(fracPart, divisor)
	} else {
		wholePart = absInt
	}

	var wholeDigits, fracDigits []int16

	for wholePart.Cmp(big0) != 0 {
		wholePart.DivMod(wholePart, bigNBase, remainder)
		wholeDigits = append(wholeDigits, int16(remainder.Int64()))
	}

	if fracPart.Cmp(big0) != 0 {
		for fracPart.Cmp(big1) != 0 {
			fracPart.DivMod(fracPart, bigNBase, remainder)
			fracDigits = append(fracDigits, int16(remainder.Int64()))
		}
	}

	buf = pgio.AppendInt16(buf, int16(len(wholeDigits)+len(fracDigits)))

	var weight int16
	if len(wholeDigits) > 0 {
		weight = int16(len(wholeDigits) - 1)
		if exp > 0 {
			weight += int16(exp / 4)
		}
	} else {
		weight = int16(exp/4) - 1 + int16(len(fracDigits))
	}
	buf = pgio.AppendInt16(buf, weight)

	buf = pgio.AppendInt16(buf, sign)

	var dscale int16
	if dscaleExp < 0 {
		dscale = int16(-dscaleExp)
	}
	buf = pgio.AppendInt16(buf, dscale)

	for i := len(wholeDigits) - 1; i >= 0; i-- {
		buf = pgio.AppendInt16(buf, wholeDigits[i])
	}

	for i := len(fracDigits) - 1; i >= 0; i-- {
		buf = pgio.AppendInt16(buf, fracDigits[i])
	}

	return buf
}

type NumericLoader struct{}

func (NumericLoader) Format() int16 { return TextFormatCode }

func (NumericLoader) Load(src []byte) (interface{}, error) {
	switch string(src) {
	case "NaN":
		return Numeric{NaN: true}, nil
	case "Infinity":
		return Numeric{InfinityModifier: Infinity}, nil
	case "-Infinity":
		return Numeric{InfinityModifier: NegativeInfinity}, nil
	}

	dec, err := decimal.NewFromString(string(src))
	if err != nil {
		return nil, dataErrorf(src, "can't parse numeric %q", src)
	}
	return Numeric{Decimal: dec}, nil
}

type NumericBinaryLoader struct{}

func (NumericBinaryLoader) Format() int16 { return BinaryFormatCode }

func (NumericBinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) < 8 {
		return nil, dataErrorf(src, "numeric incomplete: %d bytes", len(src))
	}

	rp := 0
	ndigits := binary.BigEndian.Uint16(src[rp:])
	rp += 2
	weight := int16(binary.BigEndian.Uint16(src[rp:]))
	rp += 2
	sign := binary.BigEndian.Uint16(src[rp:])
	rp += 2
	dscale := int16(binary.BigEndian.Uint16(src[rp:]))
	rp += 2

	switch sign {
	case pgNumericNaNSign:
		return Numeric{NaN: true}, nil
	case pgNumericPosInfSign:
		return Numeric{InfinityModifier: Infinity}, nil
	case pgNumericNegInfSign:
		return Numeric{InfinityModifier: NegativeInfinity}, nil
	}

	if ndigits == 0 {
		return Numeric{Decimal: decimal.New(0, 0)}, nil
	}

	if len(src[rp:]) < int(ndigits)*2 {
		return nil, dataErrorf(src, "numeric incomplete: %d bytes for %d digits", len(src), ndigits)
	}

	accum := &big.Int{}

	for i := 0; i < int(ndigits+3)/4; i++ {
		int64accum, bytesRead, digitsRead := nbaseDigitsToInt64(src[rp:])
		rp += bytesRead

		if i > 0 {
			var mul *big.Int
			switch digitsRead {
			case 1:
				mul = bigNBase
			case 2:
				mul = bigNBaseX2
			case 3:
				mul = bigNBaseX3
			case 4:
				mul = bigNBaseX4
			}
			accum.Mul(accum, mul)
		}

		accum.Add(accum, big.NewInt(int64accum))
	}

	exp := (int32(weight) - int32(ndigits) + 1) * 4

	if dscale > 0 {
		fracNBaseDigits := int16(int32(ndigits) - int32(weight) - 1)
		fracDecimalDigits := fracNBaseDigits * 4

		if dscale > fracDecimalDigits {
			multCount := int(dscale - fracDecimalDigits)
			for i := 0; i < multCount; i++ {
				accum.Mul(accum, big10)
				exp--
			}
		} else if dscale < fracDecimalDigits {
			divCount := int(fracDecimalDigits - dscale)
			for i := 0; i < divCount; i++ {
				accum.Div(accum, big10)
				exp++
			}
		}
	}

	reduced := &big.Int{}
	remainder := &big.Int{}
	if exp >= 0 && accum.Cmp(big0) != 0 {
		for {
			reduced.DivMod(accum, big10, remainder)
			if remainder.Cmp(big0) != 0 {
				break
			}
			accum.Set(reduced)
			exp++
		}
	}

	if sign != 0 {
		accum.Neg(accum)
	}

	return Numeric{Decimal: decimal.NewFromBigInt(accum, exp)}, nil
}

func nbaseDigitsToInt64(src []byte) (accum int64, bytesRead, digitsRead int) {
	digits := len(src) / 2
	if digits > 4 {
		digits = 4
	}

	rp := 0

	for i := 0; i < digits; i++ {
		if i > 0 {
			accum *= nbase
		}
		accum += int64(binary.BigEndian.Uint16(src[rp:]))
		rp += 2
	}

	return accum, rp, digits
}

// dumpInt64 extracts an integer of any of the supported Go kinds, verifying
// it fits the dumper's wire width.
func dumpInt64(value interface{}, min, max int64) (int64, error) {
	var n int64
	switch value := value.(type) {
	case int8:
		n = int64(value)
	case uint8:
		n = int64(value)
	case int16:
		n = int64(value)
	case uint16:
		n = int64(value)
	case int32:
		n = int64(value)
	case uint32:
		n = int64(value)
	case int64:
		n = value
	case uint64:
		if value > math.MaxInt64 {
			return 0, programmingErrorf("%d is greater than maximum value for int8", value)
		}
		n = int64(value)
	case int:
		n = int64(value)
	case uint:
		if uint64(value) > math.MaxInt64 {
			return 0, programmingErrorf("%d is greater than maximum value for int8", value)
		}
		n = int64(value)
	default:
		return 0, programmingErrorf("cannot dump %T as an integer", value)
	}

	if n < min || n > max {
		return 0, programmingErrorf("%d is outside the range of the integer wire type", n)
	}
	return n, nil
}

type Int2Dumper struct{}

func (Int2Dumper) Format() int16 { return TextFormatCode }
func (Int2Dumper) OID() uint32   { return Int2OID }

func (Int2Dumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	n, err := dumpInt64(value, math.MinInt16, math.MaxInt16)
	if err != nil {
		return nil, err
	}
	return strconv.AppendInt(buf, n, 10), nil
}

type Int2BinaryDumper struct{}

func (Int2BinaryDumper) Format() int16 { return BinaryFormatCode }
func (Int2BinaryDumper) OID() uint32   { return Int2OID }

func (Int2BinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	n, err := dumpInt64(value, math.MinInt16, math.MaxInt16)
	if err != nil {
		return nil, err
	}
	return pgio.AppendInt16(buf, int16(n)), nil
}

type Int4Dumper struct{}

func (Int4Dumper) Format() int16 { return TextFormatCode }
func (Int4Dumper) OID() uint32   { return Int4OID }

func (Int4Dumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	n, err := dumpInt64(value, math.MinInt32, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	return strconv.AppendInt(buf, n, 10), nil
}

type Int4BinaryDumper struct{}

func (Int4BinaryDumper) Format() int16 { return BinaryFormatCode }
func (Int4BinaryDumper) OID() uint32   { return Int4OID }

func (Int4BinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	n, err := dumpInt64(value, math.MinInt32, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	return pgio.AppendInt32(buf, int32(n)), nil
}

type Int8Dumper struct{}

func (Int8Dumper) Format() int16 { return TextFormatCode }
func (Int8Dumper) OID() uint32   { return Int8OID }

func (Int8Dumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	n, err := dumpInt64(value, math.MinInt64, math.MaxInt64)
	if err != nil {
		return nil, err
	}
	return strconv.AppendInt(buf, n, 10), nil
}

type Int8BinaryDumper struct{}

func (Int8BinaryDumper) Format() int16 { return BinaryFormatCode }
func (Int8BinaryDumper) OID() uint32   { return Int8OID }

func (Int8BinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	n, err := dumpInt64(value, math.MinInt64, math.MaxInt64)
	if err != nil {
		return nil, err
	}
	return pgio.AppendInt64(buf, n), nil
}

type Int2Loader struct{}

func (Int2Loader) Format() int16 { return TextFormatCode }

func (Int2Loader) Load(src []byte) (interface{}, error) {
	n, err := strconv.ParseInt(string(src), 10, 16)
	if err != nil {
		return nil, dataErrorf(src, "can't parse int2 %q", src)
	}
	return int16(n), nil
}

type Int2BinaryLoader struct{}

func (Int2BinaryLoader) Format() int16 { return BinaryFormatCode }

func (Int2BinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 2 {
		return nil, dataErrorf(src, "invalid length for int2: %d", len(src))
	}
	return int16(binary.BigEndian.Uint16(src)), nil
}

type Int4Loader struct{}

func (Int4Loader) Format() int16 { return TextFormatCode }

func (Int4Loader) Load(src []byte) (interface{}, error) {
	n, err := strconv.ParseInt(string(src), 10, 32)
	if err != nil {
		return nil, dataErrorf(src, "can't parse int4 %q", src)
	}
	return int32(n), nil
}

type Int4BinaryLoader struct{}

func (Int4BinaryLoader) Format() int16 { return BinaryFormatCode }

func (Int4BinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 4 {
		return nil, dataErrorf(src, "invalid length for int4: %d", len(src))
	}
	return int32(binary.BigEndian.Uint32(src)), nil
}

type Int8Loader struct{}

func (Int8Loader) Format() int16 { return TextFormatCode }

func (Int8Loader) Load(src []byte) (interface{}, error) {
	n, err := strconv.ParseInt(string(src), 10, 64)
	if err != nil {
		return nil, dataErrorf(src, "can't parse int8 %q", src)
	}
	return n, nil
}

type Int8BinaryLoader struct{}

func (Int8BinaryLoader) Format() int16 { return BinaryFormatCode }

func (Int8BinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 8 {
		return nil, dataErrorf(src, "invalid length for int8: %d", len(src))
	}
	return int64(binary.BigEndian.Uint64(src)), nil
}

type OidLoader struct{}

func (OidLoader) Format() int16 { return TextFormatCode }

func (OidLoader) Load(src []byte) (interface{}, error) {
	n, err := strconv.ParseUint(string(src), 10, 32)
	if err != nil {
		return nil, dataErrorf(src, "can't parse oid %q", src)
	}
	return uint32(n), nil
}

type OidBinaryLoader struct{}

func (OidBinaryLoader) Format() int16 { return BinaryFormatCode }

func (OidBinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 4 {
		return nil, dataErrorf(src, "invalid length for oid: %d", len(src))
	}
	return binary.BigEndian.Uint32(src), nil
}

func dumpFloat64(value interface{}) (float64, int, error) {
	switch value := value.(type) {
	case float32:
		return float64(value), 32, nil
	case float64:
		return value, 64, nil
	}
	return 0, 0, programmingErrorf("cannot dump %T as a float", value)
}

func appendFloatText(buf []byte, f float64, bitSize int) []byte {
	switch {
	case math.IsNaN(f):
		return append(buf, "NaN"...)
	case math.IsInf(f, 1):
		return append(buf, "Infinity"...)
	case math.IsInf(f, -1):
		return append(buf, "-Infinity"...)
	}
	return strconv.AppendFloat(buf, f, 'g', -1, bitSize)
}

func parseFloatText(src []byte, bitSize int) (float64, error) {
	switch string(src) {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}

	f, err := strconv.ParseFloat(string(src), bitSize)
	if err != nil {
		return 0, dataErrorf(src, "can't parse float%d %q", bitSize/8, src)
	}
	return f, nil
}

type Float4Dumper struct{}

func (Float4Dumper) Format() int16 { return TextFormatCode }
func (Float4Dumper) OID() uint32   { return Float4OID }

func (Float4Dumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	f, bits, err := dumpFloat64(value)
	if err != nil {
		return nil, err
	}
	if bits != 32 {
		return nil, programmingErrorf("cannot dump %T as float4", value)
	}
	return appendFloatText(buf, f, 32), nil
}

type Float4BinaryDumper struct{}

func (Float4BinaryDumper) Format() int16 { return BinaryFormatCode }
func (Float4BinaryDumper) OID() uint32   { return Float4OID }

func (Float4BinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	f, ok := value.(float32)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as float4", value)
	}
	return pgio.AppendUint32(buf, math.Float32bits(f)), nil
}

type Float8Dumper struct{}

func (Float8Dumper) Format() int16 { return TextFormatCode }
func (Float8Dumper) OID() uint32   { return Float8OID }

func (Float8Dumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	f, _, err := dumpFloat64(value)
	if err != nil {
		return nil, err
	}
	return appendFloatText(buf, f, 64), nil
}

type Float8BinaryDumper struct{}

func (Float8BinaryDumper) Format() int16 { return BinaryFormatCode }
func (Float8BinaryDumper) OID() uint32   { return Float8OID }

func (Float8BinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	f, _, err := dumpFloat64(value)
	if err != nil {
		return nil, err
	}
	return pgio.AppendUint64(buf, math.Float64bits(f)), nil
}

type Float4Loader struct{}

func (Float4Loader) Format() int16 { return TextFormatCode }

func (Float4Loader) Load(src []byte) (interface{}, error) {
	f, err := parseFloatText(src, 32)
	if err != nil {
		return nil, err
	}
	return float32(f), nil
}

type Float4BinaryLoader struct{}

func (Float4BinaryLoader) Format() int16 { return BinaryFormatCode }

func (Float4BinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 4 {
		return nil, dataErrorf(src, "invalid length for float4: %d", len(src))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(src)), nil
}

type Float8Loader struct{}

func (Float8Loader) Format() int16 { return TextFormatCode }

func (Float8Loader) Load(src []byte) (interface{}, error) {
	return parseFloatText(src, 64)
}

type Float8BinaryLoader struct{}

func (Float8BinaryLoader) Format() int16 { return BinaryFormatCode }

func (Float8BinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 8 {
		return nil, dataErrorf(src, "invalid length for float8: %d", len(src))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(src)), nil
}
