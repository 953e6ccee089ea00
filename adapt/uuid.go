package adapt

import (
	"github.com/gofrs/uuid"
)

var uuidZero uuid.UUID

type UUIDDumper struct{}

func (UUIDDumper) Format() int16 { return TextFormatCode }
func (UUIDDumper) OID() uint32   { return UUIDOID }

func (UUIDDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	u, ok := value.(uuid.UUID)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as uuid", value)
	}
	return append(buf, u.String()...), nil
}

type UUIDBinaryDumper struct{}

func (UUIDBinaryDumper) Format() int16 { return BinaryFormatCode }
func (UUIDBinaryDumper) OID() uint32   { return UUIDOID }

func (UUIDBinaryDumper) Dump(value interface{}, buf []byte) ([]byte, error) {
	u, ok := value.(uuid.UUID)
	if !ok {
		return nil, programmingErrorf("cannot dump %T as uuid", value)
	}
	return append(buf, u.Bytes()...), nil
}

type UUIDLoader struct{}

func (UUIDLoader) Format() int16 { return TextFormatCode }

func (UUIDLoader) Load(src []byte) (interface{}, error) {
	u, err := uuid.FromString(string(src))
	if err != nil {
		return nil, dataErrorf(src, "can't parse uuid %q", src)
	}
	return u, nil
}

type UUIDBinaryLoader struct{}

func (UUIDBinaryLoader) Format() int16 { return BinaryFormatCode }

func (UUIDBinaryLoader) Load(src []byte) (interface{}, error) {
	u, err := uuid.FromBytes(src)
	if err != nil {
		return nil, dataErrorf(src, "invalid length for uuid: %d", len(src))
	}
	return u, nil
}
