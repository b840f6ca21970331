package binstream

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKind(t *testing.T) {
	tests := []struct {
		kind   Kind
		bits   int
		signed bool
		name   string
	}{
		{Uint8, 8, false, "u8"},
		{Int8, 8, true, "i8"},
		{Uint16, 16, false, "u16"},
		{Int16, 16, true, "i16"},
		{Uint32, 32, false, "u32"},
		{Int32, 32, true, "i32"},
		{Uint64, 64, false, "u64"},
		{Int64, 64, true, "i64"},
	}
	for _, tc := range tests {
		if tc.kind.Bits() != tc.bits || tc.kind.Size() != tc.bits/8 || tc.kind.Signed() != tc.signed || tc.kind.String() != tc.name {
			t.Errorf("%v: bits=%d size=%d signed=%v; want %d %d %v %s",
				tc.kind, tc.kind.Bits(), tc.kind.Size(), tc.kind.Signed(), tc.bits, tc.bits/8, tc.signed, tc.name)
		}
	}
}

func TestNumberValueMasksPayload(t *testing.T) {
	v := NewNumberValue(Uint8, 0x1FF)
	if v.Uint64() != 0xFF {
		t.Errorf("Uint64() = %#x; want 0xff", v.Uint64())
	}

	n := NewNumberValue(Int8, 0xFF)
	if n.Int64() != -1 {
		t.Errorf("Int64() = %d; want -1", n.Int64())
	}
	if n.String() != "-1:i8" {
		t.Errorf("String() = %q", n.String())
	}

	w := NewNumberValue(Int32, uint64(1<<31))
	if w.Int64() != -1<<31 {
		t.Errorf("Int64() = %d; want %d", w.Int64(), -1<<31)
	}
}

func TestEncodeByteOrder(t *testing.T) {
	tests := []struct {
		name  string
		token string
		mode  Mode
		want  []byte
	}{
		{"u16 big", "0x1234", Mode{Uint16, BigEndian}, []byte{0x12, 0x34}},
		{"u16 little", "0x1234", Mode{Uint16, LittleEndian}, []byte{0x34, 0x12}},
		{"i16 minus one", "-1", Mode{Int16, LittleEndian}, []byte{0xFF, 0xFF}},
		{"i32 minus two", "-2", Mode{Int32, LittleEndian}, []byte{0xFE, 0xFF, 0xFF, 0xFF}},
		{"i32 minus two big", "-2", Mode{Int32, BigEndian}, []byte{0xFF, 0xFF, 0xFF, 0xFE}},
		{"u32 octal", "0777", Mode{Uint32, BigEndian}, []byte{0x00, 0x00, 0x01, 0xFF}},
		{"u64 big", "0x0102030405060708", Mode{Uint64, BigEndian}, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"u64 little", "0x0102030405060708", Mode{Uint64, LittleEndian}, []byte{8, 7, 6, 5, 4, 3, 2, 1}},
		{"i64 min", "-9223372036854775808", Mode{Int64, BigEndian}, []byte{0x80, 0, 0, 0, 0, 0, 0, 0}},
		{"u8 binary", "0b10100101", DefaultMode(), []byte{0xA5}},
		{"i8 byte order ignored", "-128", Mode{Int8, BigEndian}, []byte{0x80}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tag := Classify(tc.token)
			if err := Validate(tc.token, tag, tc.mode); err != nil {
				t.Fatalf("Validate(%q): %v", tc.token, err)
			}
			v, err := ParseNumber(tc.token, tag, tc.mode)
			if err != nil {
				t.Fatalf("ParseNumber(%q): %v", tc.token, err)
			}
			if v.Kind() != tc.mode.Kind {
				t.Errorf("Kind() = %v; want %v", v.Kind(), tc.mode.Kind)
			}
			if diff := cmp.Diff(tc.want, Encode(v, tc.mode.Order)); diff != "" {
				t.Errorf("Encode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Each base decodes back to the literal's value through encoding/binary.
func TestEncodeRoundTrip(t *testing.T) {
	tokens := map[string]int64{
		"0xBEEF":             0xBEEF,
		"0b1100101011111110": 0xCAFE,
		"0177777":            0xFFFF,
		"-30000":             -30000,
		"12345":              12345,
	}
	modes := []Mode{{Int32, LittleEndian}, {Int32, BigEndian}, {Int64, LittleEndian}, {Int64, BigEndian}}

	for token, want := range tokens {
		for _, m := range modes {
			tag := Classify(token)
			if err := Validate(token, tag, m); err != nil {
				t.Fatalf("Validate(%q, %v): %v", token, m, err)
			}
			v, err := ParseNumber(token, tag, m)
			if err != nil {
				t.Fatalf("ParseNumber(%q, %v): %v", token, m, err)
			}
			out := Encode(v, m.Order)

			var order binary.ByteOrder = binary.LittleEndian
			if m.Order == BigEndian {
				order = binary.BigEndian
			}
			var got int64
			if m.Kind == Int32 {
				got = int64(int32(order.Uint32(out)))
			} else {
				got = int64(order.Uint64(out))
			}
			if got != want {
				t.Errorf("%q in %v decoded to %d; want %d", token, m, got, want)
			}
		}
	}
}

func TestApplyDirective(t *testing.T) {
	m := DefaultMode()
	steps := []struct {
		directive string
		want      Mode
	}{
		{".u16", Mode{Uint16, LittleEndian}},
		{".BE", Mode{Uint16, BigEndian}},
		{".int32", Mode{Int32, BigEndian}},
		{".little", Mode{Int32, LittleEndian}},
		{".i64", Mode{Int64, LittleEndian}},
		{".default", DefaultMode()},
	}
	for _, s := range steps {
		var err error
		m, err = ApplyDirective(s.directive, m)
		if err != nil {
			t.Fatalf("ApplyDirective(%q): %v", s.directive, err)
		}
		if m != s.want {
			t.Errorf("after %q mode = %v; want %v", s.directive, m, s.want)
		}
	}

	if _, err := ApplyDirective(".nope", m); err == nil {
		t.Error("ApplyDirective(.nope) expected error")
	}
}

func TestStringBytes(t *testing.T) {
	tests := []struct {
		token string
		want  []byte
	}{
		{`"AB"`, []byte{0x41, 0x42}},
		{`'AB'`, []byte{0x41, 0x42}},
		{`"a b\n"`, []byte("a b\n")},
		{`"\x00\xff"`, []byte{0x00, 0xFF}},
		{`'say "hi"'`, []byte(`say "hi"`)},
		{`'it\'s'`, []byte("it's")},
		{`"it\'s"`, []byte("it's")},
		{`'say "hi"\n'`, []byte("say \"hi\"\n")},
		{`"a\\"`, []byte(`a\`)},
	}
	for _, tc := range tests {
		if diff := cmp.Diff(tc.want, stringBytes(tc.token)); diff != "" {
			t.Errorf("stringBytes(%s) mismatch (-want +got):\n%s", tc.token, diff)
		}
	}
	if got := stringBytes(`""`); len(got) != 0 {
		t.Errorf("stringBytes(\"\") = %v; want empty", got)
	}
}
