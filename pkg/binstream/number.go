package binstream

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// NumberValue is a tagged integer: a Kind plus at most Kind.Bits() bits of
// payload. Signed values are held in two's complement at their width.
type NumberValue struct {
	kind Kind
	bits uint64
}

// NewNumberValue truncates bits to the width of k.
func NewNumberValue(k Kind, bits uint64) NumberValue {
	return NumberValue{kind: k, bits: bits & k.mask()}
}

func (v NumberValue) Kind() Kind {
	return v.kind
}

// Uint64 returns the raw payload bits.
func (v NumberValue) Uint64() uint64 {
	return v.bits
}

// Int64 returns the payload sign-extended when the kind is signed.
func (v NumberValue) Int64() int64 {
	if !v.kind.Signed() {
		return int64(v.bits)
	}
	shift := uint(64 - v.kind.Bits())
	return int64(v.bits<<shift) >> shift
}

func (v NumberValue) String() string {
	if v.kind.Signed() {
		return strconv.FormatInt(v.Int64(), 10) + ":" + v.kind.String()
	}
	return strconv.FormatUint(v.bits, 10) + ":" + v.kind.String()
}

// AppendBytes appends exactly Kind.Size() bytes of v to dst in the given order.
func (v NumberValue) AppendBytes(dst []byte, order ByteOrder) []byte {
	var bo binary.AppendByteOrder = binary.LittleEndian
	if order == BigEndian {
		bo = binary.BigEndian
	}

	switch v.kind.Size() {
	case 1:
		return append(dst, byte(v.bits))
	case 2:
		return bo.AppendUint16(dst, uint16(v.bits))
	case 4:
		return bo.AppendUint32(dst, uint32(v.bits))
	default:
		return bo.AppendUint64(dst, v.bits)
	}
}

func (v NumberValue) Bytes(order ByteOrder) []byte {
	return v.AppendBytes(make([]byte, 0, v.kind.Size()), order)
}

// ParseNumber turns a validated numeric token into a NumberValue of the mode's
// kind. It does not check range; call Validate first.
func ParseNumber(text string, tag TypeTag, m Mode) (NumberValue, error) {
	mag, neg, err := scanLiteral(text, tag)
	if err != nil {
		return NumberValue{}, err
	}
	if neg {
		mag = -mag
	}
	return NewNumberValue(m.Kind, mag), nil
}

// Encode serializes v in the given byte order.
func Encode(v NumberValue, order ByteOrder) []byte {
	return v.Bytes(order)
}

// stringBytes returns the payload of a validated string token with its quotes
// stripped. Go escapes are decoded when the body is a valid Go string, with
// \' and a bare " accepted in either quote style.
func stringBytes(text string) []byte {
	body := text[1 : len(text)-1]
	if unquoted, err := strconv.Unquote(goQuoted(body)); err == nil {
		return []byte(unquoted)
	}
	return []byte(body)
}

// goQuoted rewrites a string body into a double-quoted Go literal.
func goQuoted(body string) string {
	var b strings.Builder
	b.Grow(len(body) + 2)
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '\\' && i+1 < len(body):
			i++
			if body[i] != '\'' {
				b.WriteByte(c)
			}
			b.WriteByte(body[i])
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
