// Package cell defines the fixed-width value every tagged operation works on.
//
// A Cell carries no type information. Whether it is a raw integer, a float
// bit pattern, a packed character or a pool handle depends only on the tag
// it is being operated on under.
package cell

import (
	"math"
	"strings"
)

// Cell is a 32-bit signed machine word.
type Cell int32

// Null is the zero handle. Pools treat it as a valid empty reference.
const Null Cell = 0

// FromFloat stores the bits of f in a cell.
func FromFloat(f float32) Cell {
	return Cell(int32(math.Float32bits(f)))
}

// Float reinterprets the cell bits as a float32.
func (c Cell) Float() float32 {
	return math.Float32frombits(uint32(c))
}

// Bool returns 1 for true and 0 for false.
func Bool(b bool) Cell {
	if b {
		return 1
	}
	return 0
}

// String is a sequence of characters, one per cell.
type String []Cell

// FromString converts a Go string into a cell string, one rune per cell.
func FromString(s string) String {
	out := make(String, 0, len(s))
	for _, r := range s {
		out = append(out, Cell(r))
	}
	return out
}

// AppendString appends the runes of s to dst.
func AppendString(dst String, s string) String {
	for _, r := range s {
		dst = append(dst, Cell(r))
	}
	return dst
}

// GoString converts the cell string back into a Go string.
func (s String) GoString() string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		b.WriteRune(rune(c))
	}
	return b.String()
}

// Equal reports whether both strings hold the same characters.
func (s String) Equal(other String) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}
