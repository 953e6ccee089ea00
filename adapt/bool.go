package adapt

type BoolDumper struct{}

func (BoolDumper) Format() int16 { return TextFormatCode }
func (BoolDumper) OID() uint32   { return BoolOID }

func (BoolDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as bool", value)
	}
	if b {
		return append(buf, 't'), nil
	}
	return append(buf, 'f'), nil
}

type BoolBinaryDumper struct{}

func (BoolBinaryDumper) Format() int16 { return BinaryFormatCode }
func (BoolBinaryDumper) OID() uint32   { return BoolOID }

func (BoolBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as bool", value)
	}
	if b {
		return append(buf, 1), nil
	}
	return append(buf, 0), nil
}

type BoolLoader struct{}

func (BoolLoader) Format() int16 { return TextFormatCode }

func (BoolLoader) Load(src []byte) (interface{}, error) {
	if len(src) == 1 {
		switch src[0] {
		case 't':
			return true, nil
		case 'f':
			return false, nil
		}
	}
	return nil, dataErrorf(src, "can't parse bool %q", src)
}

type BoolBinaryLoader struct{}

func (BoolBinaryLoader) Format() int16 { return BinaryFormatCode }

func (BoolBinaryLoader) Load(src []byte) (interface{}, error) {
	if len(src) != 1 {
		return nil, dataErrorf(src, "invalid length for bool: %d", len(src))
	}
	switch src[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return nil, dataErrorf(src, "can't parse bool %q", src)
}
