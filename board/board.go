package board

import "strings"

// Board is a complete position. It is a plain value: copying it (or calling
// Clone) yields an independent position, which is what legality checks and
// search branches rely on.
type Board struct {
	pieces         [64]Piece
	occupied       Bitboard
	byColor        [2]Bitboard
	kingSq         [2]Square
	turn           Color
	enPassant      Square
	castling       CastlingRights
	halfmoveClock  int
	fullmoveNumber int
}

var backRank = [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// New returns the standard initial position.
func New() *Board {
	b := empty()
	for file, k := range backRank {
		b.put(NewSquare(file, 0), MakePiece(White, k))
		b.put(NewSquare(file, 1), WhitePawn)
		b.put(NewSquare(file, 6), BlackPawn)
		b.put(NewSquare(file, 7), MakePiece(Black, k))
	}
	b.castling = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
	return b
}

func empty() *Board {
	return &Board{
		kingSq:         [2]Square{NoSquare, NoSquare},
		turn:           White,
		enPassant:      NoSquare,
		fullmoveNumber: 1,
	}
}

func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Pieces returns a copy of the 64 square mapping, indexed by Square.
func (b *Board) Pieces() [64]Piece { return b.pieces }

func (b *Board) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return b.pieces[sq]
}

func (b *Board) Turn() Color { return b.turn }

func (b *Board) EnPassant() Square { return b.enPassant }

func (b *Board) Castling() CastlingRights { return b.castling }

func (b *Board) HalfmoveClock() int { return b.halfmoveClock }

func (b *Board) FullmoveNumber() int { return b.fullmoveNumber }

// KingSquare returns the cached king square, NoSquare if c has no king.
func (b *Board) KingSquare(c Color) Square { return b.kingSq[c] }

func (b *Board) Occupied() Bitboard { return b.occupied }

func (b *Board) OccupiedBy(c Color) Bitboard { return b.byColor[c] }

func (b *Board) put(sq Square, p Piece) {
	b.remove(sq)
	if p == NoPiece {
		return
	}
	b.pieces[sq] = p
	b.occupied = b.occupied.Set(sq)
	b.byColor[p.Color()] = b.byColor[p.Color()].Set(sq)
	if p.Kind() == King {
		b.kingSq[p.Color()] = sq
	}
}

func (b *Board) remove(sq Square) {
	p := b.pieces[sq]
	if p == NoPiece {
		return
	}
	b.pieces[sq] = NoPiece
	b.occupied = b.occupied.Clear(sq)
	b.byColor[p.Color()] = b.byColor[p.Color()].Clear(sq)
	if p.Kind() == King && b.kingSq[p.Color()] == sq {
		b.kingSq[p.Color()] = NoSquare
	}
}

// place relocates whatever stands on from to to, capturing silently.
func (b *Board) place(from, to Square) {
	p := b.pieces[from]
	b.remove(from)
	b.put(to, p)
}

// MovePiece plays from->to for the side to move, promoting to a queen.
// It reports false and leaves the board untouched when the move is illegal.
func (b *Board) MovePiece(from, to Square) bool {
	return b.MovePieceAs(from, to, Queen)
}

// MovePieceAs is MovePiece with an explicit promotion kind. promo is only
// consulted when a pawn reaches the last rank; anything other than
// Knight, Bishop or Rook promotes to a queen.
func (b *Board) MovePieceAs(from, to Square, promo Kind) bool {
	if !b.isLegal(from, to) {
		return false
	}
	b.performMove(from, to, promo)
	return true
}

func (b *Board) isLegal(from, to Square) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	p := b.pieces[from]
	if p == NoPiece || p.Color() != b.turn {
		return false
	}
	if !p.Moves(b, from).Has(to) {
		return false
	}
	return !b.leavesKingInCheck(from, to)
}

func (b *Board) leavesKingInCheck(from, to Square) bool {
	tmp := b.Clone()
	mover := tmp.turn
	tmp.performMove(from, to, Queen)
	return tmp.IsKingInCheck(mover)
}

// performMove applies a move without any legality check.
func (b *Board) performMove(from, to Square, promo Kind) {
	p := b.pieces[from]
	c := p.Color()
	captured := b.pieces[to]
	reset := p.Kind() == Pawn || captured != NoPiece

	switch p.Kind() {
	case Pawn:
		if to == b.enPassant && captured == NoPiece && from.File() != to.File() {
			victim := to - 8
			if c == Black {
				victim = to + 8
			}
			b.remove(victim)
		}
		b.place(from, to)
		if to.Rank() == 0 || to.Rank() == 7 {
			switch promo {
			case Knight, Bishop, Rook:
			default:
				promo = Queen
			}
			b.put(to, MakePiece(c, promo))
		}
	case King:
		b.place(from, to)
		for _, cs := range castleRoutes[c] {
			if from == cs.king && to == cs.dest {
				b.place(cs.rook, cs.pass)
			}
		}
	default:
		b.place(from, to)
	}

	b.updateCastling(p, from, to)

	b.enPassant = NoSquare
	if p.Kind() == Pawn && (int(to)-int(from) == 16 || int(from)-int(to) == 16) {
		b.enPassant = Square((int(from) + int(to)) / 2)
	}

	if reset {
		b.halfmoveClock = 0
	} else {
		b.halfmoveClock++
	}
	if c == Black {
		b.fullmoveNumber++
	}
	b.turn = c.Other()
}

var rookCorners = [...]struct {
	sq    Square
	right CastlingRights
}{{A1, WhiteQueenside}, {H1, WhiteKingside}, {A8, BlackQueenside}, {H8, BlackKingside}}

func (b *Board) updateCastling(p Piece, from, to Square) {
	if p.Kind() == King {
		if p.Color() == White {
			b.castling &^= WhiteKingside | WhiteQueenside
		} else {
			b.castling &^= BlackKingside | BlackQueenside
		}
	}
	for _, rc := range rookCorners {
		if from == rc.sq || to == rc.sq {
			b.castling &^= rc.right
		}
	}
}

// IsSquareAttacked reports whether sq is in the union of the attack sets of
// by's pieces.
func (b *Board) IsSquareAttacked(sq Square, by Color) bool {
	bb := b.byColor[by]
	for {
		from, rest, ok := bb.PopLSB()
		if !ok {
			return false
		}
		if b.pieces[from].Attacks(b, from).Has(sq) {
			return true
		}
		bb = rest
	}
}

// IsKingInCheck is false when c has no king on the board.
func (b *Board) IsKingInCheck(c Color) bool {
	k := b.kingSq[c]
	if !k.Valid() {
		return false
	}
	return b.IsSquareAttacked(k, c.Other())
}

// IsCheck reports whether the side to move is in check.
func (b *Board) IsCheck() bool { return b.IsKingInCheck(b.turn) }

// LegalMoves lists c's legal moves ordered by from, then to. Asking for the
// side not to move gives the moves it would have if it were its turn.
func (b *Board) LegalMoves(c Color) []Move {
	pos := b
	if c != b.turn {
		pos = b.Clone()
		pos.turn = c
		pos.enPassant = NoSquare
	}
	var moves []Move
	pos.byColor[c].Iter(func(from Square) {
		pos.pieces[from].Moves(pos, from).Iter(func(to Square) {
			if !pos.leavesKingInCheck(from, to) {
				moves = append(moves, Move{From: from, To: to})
			}
		})
	})
	return moves
}

// HasLegalMove stops at the first legal move found for the side to move.
func (b *Board) HasLegalMove() bool {
	bb := b.byColor[b.turn]
	for {
		from, rest, ok := bb.PopLSB()
		if !ok {
			return false
		}
		targets := b.pieces[from].Moves(b, from)
		for {
			to, more, ok := targets.PopLSB()
			if !ok {
				break
			}
			if !b.leavesKingInCheck(from, to) {
				return true
			}
			targets = more
		}
		bb = rest
	}
}

func (b *Board) IsCheckmate() bool { return b.IsCheck() && !b.HasLegalMove() }

func (b *Board) IsStalemate() bool { return !b.IsCheck() && !b.HasLegalMove() }

// IsDraw covers the fifty-move rule and stalemate.
func (b *Board) IsDraw() bool { return b.halfmoveClock >= 100 || b.IsStalemate() }

// String renders the position as text, rank 8 first.
func (b *Board) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			sb.WriteByte(b.pieces[NewSquare(file, rank)].Letter())
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  abcdefgh\n")
	return sb.String()
}
