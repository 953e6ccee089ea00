package adapt

import (
	"encoding/binary"
	"reflect"
	"regexp"

	"github.com/jackc/pgio"
)

var byteSliceType = reflect.TypeOf([]byte(nil))

// findListElement returns the first element that is not nil and not itself a
// slice, descending into nested slices depth first. It is the shape probe
// dumper refinement runs on: the element found decides the array's type.
func findListElement(v reflect.Value) interface{} {
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		for item.Kind() == reflect.Interface && !item.IsNil() {
			item = item.Elem()
		}
		switch item.Kind() {
		case reflect.Invalid, reflect.Interface:
			continue
		case reflect.Slice:
			if item.Type() == byteSliceType {
				if !item.IsNil() {
					return item.Interface()
				}
				continue
			}
			if found := findListElement(item); found != nil {
				return found
			}
		case reflect.Ptr, reflect.Map:
			if !item.IsNil() {
				return item.Interface()
			}
		default:
			return item.Interface()
		}
	}
	return nil
}

func listKey(value interface{}) DumperKey {
	k := DumperKey{Type: reflect.TypeOf(value)}
	if v := reflect.ValueOf(value); v.Kind() == reflect.Slice {
		if item := findListElement(v); item != nil {
			k.Elem = reflect.TypeOf(item)
		}
	}
	return k
}

// isNullElement reports whether a slice element stands for SQL NULL.
func isNullElement(item reflect.Value) bool {
	switch item.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice:
		return item.IsNil()
	}
	return false
}

var (
	arrayQuoteRegexp    = regexp.MustCompile(`(?i)^$|["{},\\\s]|^null$`)
	arrayEscapeRegexp   = regexp.MustCompile(`(["\\])`)
	arrayUnescapeRegexp = regexp.MustCompile(`\\(.)`)
)

// ListDumper dumps slices as array literals. The registered instance has no
// element dumper and never dumps itself: resolution goes through Key and
// Refine, which build an instance bound to the element type found in the
// value. A slice with no element to probe refines to an untyped array the
// server derives the type of.
type ListDumper struct {
	m        *Map
	elem     Dumper
	arrayOID uint32
}

func (*ListDumper) Format() int16 { return TextFormatCode }
func (d *ListDumper) OID() uint32 { return d.arrayOID }

func (d *ListDumper) Key(value interface{}) DumperKey {
	return listKey(value)
}

func (d *ListDumper) Refine(m *Map, value interface{}) (Dumper, error) {
	item := findListElement(reflect.ValueOf(value))
	if item == nil {
		return &ListDumper{m: m}, nil
	}
	sub, err := m.DumperForValue(item, TextFormatCode)
	if err != nil {
		return nil, err
	}
	return &ListDumper{m: m, elem: sub, arrayOID: m.arrayOIDFor(sub.OID())}, nil
}

func (d *ListDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice {
		return nil, programmingErrorf("cannot dump %T as an array", value)
	}
	return d.dumpList(v, buf)
}

func (d *ListDumper) dumpList(v reflect.Value, buf []byte) ([]byte, error) {
	if v.Len() == 0 {
		return append(buf, "{}"...), nil
	}

	buf = append(buf, '{')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			buf = append(buf, ',')
		}

		item := v.Index(i)
		for item.Kind() == reflect.Interface && !item.IsNil() {
			item = item.Elem()
		}

		switch {
		case isNullElement(item) && (item.Kind() != reflect.Slice || item.Type() == byteSliceType):
			buf = append(buf, "NULL"...)
		case item.Kind() == reflect.Slice && item.Type() != byteSliceType:
			var err error
			buf, err = d.dumpList(item, buf)
			if err != nil {
				return nil, err
			}
		default:
			elemBuf, err := d.dumpItem(item.Interface())
			if err != nil {
				return nil, err
			}
			if arrayQuoteRegexp.Match(elemBuf) {
				buf = append(buf, '"')
				buf = append(buf, arrayEscapeRegexp.ReplaceAll(elemBuf, []byte(`\$1`))...)
				buf = append(buf, '"')
			} else {
				buf = append(buf, elemBuf...)
			}
		}
	}
	return append(buf, '}'), nil
}

func (d *ListDumper) dumpItem(item interface{}) ([]byte, error) {
	sub := d.elem
	if sub == nil {
		if d.m == nil {
			return nil, programmingErrorf("cannot dump %T through an unrefined array dumper", item)
		}
		var err error
		sub, err = d.m.DumperForValue(item, TextFormatCode)
		if err != nil {
			return nil, err
		}
	}
	return sub.Dump(item, nil)
}

// ListBinaryDumper is ListDumper's binary counterpart. Binary arrays carry
// the element OID in their header, so a slice with no element to probe dumps
// as an empty text array.
type ListBinaryDumper struct {
	m        *Map
	elem     Dumper
	elemOID  uint32
	arrayOID uint32
}

func (*ListBinaryDumper) Format() int16 { return BinaryFormatCode }
func (d *ListBinaryDumper) OID() uint32 { return d.arrayOID }

func (d *ListBinaryDumper) Key(value interface{}) DumperKey {
	return listKey(value)
}

func (d *ListBinaryDumper) Refine(m *Map, value interface{}) (Dumper, error) {
	item := findListElement(reflect.ValueOf(value))
	if item == nil {
		return &ListBinaryDumper{m: m, elemOID: TextOID, arrayOID: TextArrayOID}, nil
	}
	sub, err := m.DumperForValue(item, BinaryFormatCode)
	if err != nil {
		return nil, err
	}
	elemOID := sub.OID()
	if elemOID == 0 {
		// Strings dump untyped, but the header needs a concrete OID.
		elemOID = TextOID
	}
	return &ListBinaryDumper{m: m, elem: sub, elemOID: elemOID, arrayOID: m.arrayOIDFor(elemOID)}, nil
}

func (d *ListBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice {
		return nil, programmingErrorf("cannot dump %T as an array", value)
	}

	dims := arrayDims(v)

	buf = pgio.AppendInt32(buf, int32(len(dims)))
	hasNull := int32(0)
	if arrayHasNull(v) {
		hasNull = 1
	}
	buf = pgio.AppendInt32(buf, hasNull)
	buf = pgio.AppendUint32(buf, d.elemOID)

	for _, dim := range dims {
		buf = pgio.AppendInt32(buf, int32(dim))
		buf = pgio.AppendInt32(buf, 1)
	}

	if len(dims) == 0 {
		return buf, nil
	}
	return d.dumpDim(v, dims, buf)
}

func (d *ListBinaryDumper) dumpDim(v reflect.Value, dims []int, buf []byte) ([]byte, error) {
	if v.Len() != dims[0] {
		return nil, programmingErrorf("nested slices have inconsistent lengths")
	}

	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		for item.Kind() == reflect.Interface && !item.IsNil() {
			item = item.Elem()
		}

		if len(dims) > 1 {
			if item.Kind() != reflect.Slice || item.Type() == byteSliceType {
				return nil, programmingErrorf("nested slices have inconsistent depths")
			}
			var err error
			buf, err = d.dumpDim(item, dims[1:], buf)
			if err != nil {
				return nil, err
			}
			continue
		}

		if item.Kind() == reflect.Slice && item.Type() != byteSliceType {
			return nil, programmingErrorf("nested slices have inconsistent depths")
		}
		if isNullElement(item) {
			buf = pgio.AppendInt32(buf, -1)
			continue
		}

		sub := d.elem
		if sub == nil {
			if d.m == nil {
				return nil, programmingErrorf("cannot dump %v through an unrefined array dumper", item)
			}
			var err error
			sub, err = d.m.DumperForValue(item.Interface(), BinaryFormatCode)
			if err != nil {
				return nil, err
			}
		}

		sp := len(buf)
		buf = pgio.AppendInt32(buf, -1)
		elemBuf, err := sub.Dump(item.Interface(), buf)
		if err != nil {
			return nil, err
		}
		buf = elemBuf
		pgio.SetInt32(buf[sp:], int32(len(buf[sp:])-4))
	}
	return buf, nil
}

// arrayDims reads the dimensions off the first element of each nesting
// level. Sibling lengths are checked during the dump itself.
func arrayDims(v reflect.Value) []int {
	var dims []int
	for v.Kind() == reflect.Slice && v.Type() != byteSliceType {
		dims = append(dims, v.Len())
		if v.Len() == 0 {
			break
		}
		v = v.Index(0)
		for v.Kind() == reflect.Interface && !v.IsNil() {
			v = v.Elem()
		}
	}
	if len(dims) == 1 && dims[0] == 0 {
		return nil
	}
	return dims
}

func arrayHasNull(v reflect.Value) bool {
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		for item.Kind() == reflect.Interface && !item.IsNil() {
			item = item.Elem()
		}
		if item.Kind() == reflect.Slice && item.Type() != byteSliceType {
			if arrayHasNull(item) {
				return true
			}
			continue
		}
		if isNullElement(item) {
			return true
		}
	}
	return false
}

var arrayTokenRegexp = regexp.MustCompile(`[{}]|"(?:[^"\\]|\\.)*"|[^"{},\\]+`)

// ArrayLoader parses a text array literal, loading each element with the
// loader registered for the element OID. Elements come back in nested
// []interface{} values; NULL elements come back as nil.
type ArrayLoader struct {
	m       *Map
	elemOID uint32
}

func (*ArrayLoader) Format() int16 { return TextFormatCode }

func (l *ArrayLoader) Load(src []byte) (interface{}, error) {
	elem, err := l.m.LoaderForOID(l.elemOID, TextFormatCode)
	if err != nil {
		return nil, err
	}

	toks := arrayTokenRegexp.FindAll(src, -1)
	if len(toks) == 0 || len(toks[0]) != 1 || toks[0][0] != '{' {
		return nil, dataErrorf(src, "malformed array %q", src)
	}

	pos := 0
	v, err := l.parseList(src, toks, &pos, elem)
	if err != nil {
		return nil, err
	}
	if pos != len(toks) {
		return nil, dataErrorf(src, "malformed array %q", src)
	}
	return v, nil
}

func (l *ArrayLoader) parseList(src []byte, toks [][]byte, pos *int, elem Loader) ([]interface{}, error) {
	*pos++ // consume '{'
	list := []interface{}{}
	for *pos < len(toks) {
		t := toks[*pos]
		if len(t) == 1 && (t[0] == '{' || t[0] == '}') {
			if t[0] == '}' {
				*pos++
				return list, nil
			}
			sub, err := l.parseList(src, toks, pos, elem)
			if err != nil {
				return nil, err
			}
			list = append(list, sub)
			continue
		}

		*pos++
		if string(t) == "NULL" {
			list = append(list, nil)
			continue
		}
		if t[0] == '"' {
			t = arrayUnescapeRegexp.ReplaceAll(t[1:len(t)-1], []byte("$1"))
		}
		v, err := elem.Load(t)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return nil, dataErrorf(src, "malformed array %q", src)
}

// ArrayBinaryLoader parses a binary array. The element OID travels in the
// payload header, so one instance serves every array type.
type ArrayBinaryLoader struct {
	m *Map
}

func (*ArrayBinaryLoader) Format() int16 { return BinaryFormatCode }

func (l *ArrayBinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) < 12 {
		return nil, dataErrorf(src, "malformed binary array: %d header bytes", len(src))
	}

	ndims := int(int32(binary.BigEndian.Uint32(src[0:4])))
	elemOID := binary.BigEndian.Uint32(src[8:12])
	rp := 12

	if ndims == 0 {
		return []interface{}{}, nil
	}
	if ndims < 0 || len(src[rp:]) < ndims*8 {
		return nil, dataErrorf(src, "malformed binary array: %d dimensions", ndims)
	}

	dims := make([]int, ndims)
	for i := range dims {
		dims[i] = int(int32(binary.BigEndian.Uint32(src[rp:])))
		rp += 8 // skip the lower bound
		// Each element needs at least its length word, which bounds any
		// honest dimension by the payload size.
		if dims[i] < 0 || dims[i] > len(src)/4 {
			return nil, dataErrorf(src, "malformed binary array: bad dimension %d", dims[i])
		}
	}

	elem, err := l.m.LoaderForOID(elemOID, BinaryFormatCode)
	if err != nil {
		return nil, err
	}

	v, rp, err := l.parseDim(src, rp, dims, elem)
	if err != nil {
		return nil, err
	}
	if rp != len(src) {
		return nil, dataErrorf(src, "malformed binary array: %d trailing bytes", len(src)-rp)
	}
	return v, nil
}

func (l *ArrayBinaryLoader) parseDim(src []byte, rp int, dims []int, elem Loader) ([]interface{}, int, error) {
	list := make([]interface{}, 0, dims[0])

	for i := 0; i < dims[0]; i++ {
		if len(dims) > 1 {
			sub, nrp, err := l.parseDim(src, rp, dims[1:], elem)
			if err != nil {
				return nil, 0, err
			}
			list = append(list, sub)
			rp = nrp
			continue
		}

		if len(src[rp:]) < 4 {
			return nil, 0, dataErrorf(src, "malformed binary array: truncated element")
		}
		sz := int(int32(binary.BigEndian.Uint32(src[rp:])))
		rp += 4
		if sz == -1 {
			list = append(list, nil)
			continue
		}
		if sz < 0 || len(src[rp:]) < sz {
			return nil, 0, dataErrorf(src, "malformed binary array: truncated element")
		}

		v, err := elem.Load(src[rp : rp+sz])
		if err != nil {
			return nil, 0, err
		}
		list = append(list, v)
		rp += sz
	}
	return list, rp, nil
}
