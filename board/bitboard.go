package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a set of squares, bit i set means square i is a member.
type Bitboard uint64

const EmptyBB Bitboard = 0

// SquareBB returns a bitboard holding only sq.
func SquareBB(sq Square) Bitboard { return 1 << sq }

func (b Bitboard) Set(sq Square) Bitboard { return b | 1<<sq }

func (b Bitboard) Clear(sq Square) Bitboard { return b &^ (1 << sq) }

func (b Bitboard) Has(sq Square) bool { return b&(1<<sq) != 0 }

func (b Bitboard) Union(o Bitboard) Bitboard { return b | o }

func (b Bitboard) Intersect(o Bitboard) Bitboard { return b & o }

func (b Bitboard) Complement() Bitboard { return ^b }

// Shift moves every member n squares towards h8 (n > 0) or a1 (n < 0).
// Members wrap across files; callers that need file safety mask the result.
func (b Bitboard) Shift(n int) Bitboard {
	if n >= 0 {
		return b << uint(n)
	}
	return b >> uint(-n)
}

func (b Bitboard) PopCount() int { return bits.OnesCount64(uint64(b)) }

func (b Bitboard) Empty() bool { return b == 0 }

// PopLSB returns the lowest member and the set without it.
func (b Bitboard) PopLSB() (Square, Bitboard, bool) {
	if b == 0 {
		return NoSquare, 0, false
	}
	sq := Square(bits.TrailingZeros64(uint64(b)))
	return sq, b & (b - 1), true
}

// Iter calls fn for each member in ascending square order.
func (b Bitboard) Iter(fn func(Square)) {
	for bb := b; bb != 0; bb &= bb - 1 {
		fn(Square(bits.TrailingZeros64(uint64(bb))))
	}
}

// Squares lists the members in ascending order.
func (b Bitboard) Squares() []Square {
	out := make([]Square, 0, b.PopCount())
	b.Iter(func(sq Square) { out = append(out, sq) })
	return out
}

// String draws the set as an 8x8 grid, rank 8 on top.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			if b.Has(NewSquare(file, rank)) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
