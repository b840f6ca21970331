package binstream

import (
	"fmt"
	"strings"
)

// Kind is the width-and-signedness discriminant of a NumberValue.
type Kind uint8

const (
	Uint8 Kind = iota
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Uint64
	Int64
)

var kindNames = [...]string{
	Uint8:  "u8",
	Int8:   "i8",
	Uint16: "u16",
	Int16:  "i16",
	Uint32: "u32",
	Int32:  "i32",
	Uint64: "u64",
	Int64:  "i64",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Bits returns the encoded width in bits.
func (k Kind) Bits() int {
	return 8 << (k / 2)
}

// Size returns the encoded width in bytes.
func (k Kind) Size() int {
	return k.Bits() / 8
}

func (k Kind) Signed() bool {
	return k%2 == 1
}

// mask covers exactly the payload bits of k.
func (k Kind) mask() uint64 {
	if k.Bits() == 64 {
		return ^uint64(0)
	}
	return 1<<uint(k.Bits()) - 1
}

// ByteOrder selects how multi-byte values are serialized.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

// Mode is the persistent numeric context threaded through a parse pass.
type Mode struct {
	Kind  Kind
	Order ByteOrder
}

// DefaultMode is the mode of a fresh or fully reset engine.
func DefaultMode() Mode {
	return Mode{Kind: Uint8, Order: LittleEndian}
}

func (m Mode) String() string {
	return m.Kind.String() + "/" + m.Order.String()
}

var kindDirectives = map[string]Kind{
	".u8": Uint8, ".uint8": Uint8,
	".i8": Int8, ".int8": Int8,
	".u16": Uint16, ".uint16": Uint16,
	".i16": Int16, ".int16": Int16,
	".u32": Uint32, ".uint32": Uint32,
	".i32": Int32, ".int32": Int32,
	".u64": Uint64, ".uint64": Uint64,
	".i64": Int64, ".int64": Int64,
}

var orderDirectives = map[string]ByteOrder{
	".le": LittleEndian, ".little": LittleEndian,
	".be": BigEndian, ".big": BigEndian,
}

const defaultDirective = ".default"

func isKnownDirective(text string) bool {
	key := strings.ToLower(text)
	if _, ok := kindDirectives[key]; ok {
		return true
	}
	if _, ok := orderDirectives[key]; ok {
		return true
	}
	return key == defaultDirective
}

// ApplyDirective returns m updated by the directive token text.
func ApplyDirective(text string, m Mode) (Mode, error) {
	key := strings.ToLower(text)
	if k, ok := kindDirectives[key]; ok {
		m.Kind = k
		return m, nil
	}
	if o, ok := orderDirectives[key]; ok {
		m.Order = o
		return m, nil
	}
	if key == defaultDirective {
		return DefaultMode(), nil
	}
	return m, fmt.Errorf("%w: unknown directive %q", ErrGrammar, text)
}
