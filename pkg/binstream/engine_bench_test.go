package binstream

import (
	"strings"
	"testing"
)

// smallFixture is the fixed part of an ARP header.
const smallFixture = `
.u16 .be
0x0001 0x0800
.u8
6 4
`

// mediumFixture mixes widths, orders, strings and comments like an IPv4/UDP
// test vector.
const mediumFixture = `
# IPv4 header
.u8  0x45 0x00
.u16 .be 0x001c 0x1c46 0x4000
.u8  64 17
.u16 0xb1e6
.u8  192 168 0 1  10 0 0 2
# UDP header
.u16 0x3039 0x0035 0x0008 0x0000
.le .u32 0xDEADBEEF -0 .i32 -1 .i64 -9223372036854775808
"payload: hello, world\n"
`

var largeFixture = strings.Repeat(mediumFixture, 64)

func BenchmarkCompile_Small(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(smallFixture); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile_Medium(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(mediumFixture); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile_Large(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(largeFixture); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTokenize_Large(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Tokenize(largeFixture)
	}
}

func TestBenchFixturesCompile(t *testing.T) {
	out, err := Compile(smallFixture)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 6 {
		t.Errorf("small fixture = % x; want 6 bytes", out)
	}
	if _, err := Compile(largeFixture); err != nil {
		t.Fatal(err)
	}
	if _, err := Compile(""); err == nil {
		t.Error("Compile(\"\") expected not-ready error")
	}
}
