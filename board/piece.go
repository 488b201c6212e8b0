package board

type offset struct{ dr, df int }

var (
	knightOffsets = [8]offset{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingOffsets   = [8]offset{{1, 0}, {1, 1}, {1, -1}, {0, 1}, {0, -1}, {-1, 0}, {-1, 1}, {-1, -1}}
	bishopDirs    = [4]offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs      = [4]offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	queenDirs     = [8]offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

// Jump tables, built with explicit rank/file bounds so nothing wraps.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
)

func init() {
	for sq := A1; sq < NoSquare; sq++ {
		knightAttacks[sq] = jumps(sq, knightOffsets[:])
		kingAttacks[sq] = jumps(sq, kingOffsets[:])
	}
}

func onBoard(rank, file int) bool {
	return rank >= 0 && rank < 8 && file >= 0 && file < 8
}

func jumps(sq Square, offs []offset) Bitboard {
	var bb Bitboard
	for _, o := range offs {
		r, f := sq.Rank()+o.dr, sq.File()+o.df
		if onBoard(r, f) {
			bb = bb.Set(NewSquare(f, r))
		}
	}
	return bb
}

// rays walks each direction until it leaves the board or hits a piece.
// The blocking square is part of the result whatever its color.
func rays(sq Square, occupied Bitboard, dirs []offset) Bitboard {
	var bb Bitboard
	for _, d := range dirs {
		r, f := sq.Rank()+d.dr, sq.File()+d.df
		for onBoard(r, f) {
			to := NewSquare(f, r)
			bb = bb.Set(to)
			if occupied.Has(to) {
				break
			}
			r += d.dr
			f += d.df
		}
	}
	return bb
}

func pawnAttacks(c Color, sq Square) Bitboard {
	dr := 1
	if c == Black {
		dr = -1
	}
	var bb Bitboard
	for _, df := range [2]int{-1, 1} {
		r, f := sq.Rank()+dr, sq.File()+df
		if onBoard(r, f) {
			bb = bb.Set(NewSquare(f, r))
		}
	}
	return bb
}

// Attacks returns the squares p standing on sq threatens. Own pieces are not
// excluded and pawns only threaten diagonally; this is the set used for
// check detection.
func (p Piece) Attacks(b *Board, sq Square) Bitboard {
	switch p.Kind() {
	case Pawn:
		return pawnAttacks(p.Color(), sq)
	case Knight:
		return knightAttacks[sq]
	case Bishop:
		return rays(sq, b.occupied, bishopDirs[:])
	case Rook:
		return rays(sq, b.occupied, rookDirs[:])
	case Queen:
		return rays(sq, b.occupied, queenDirs[:])
	case King:
		return kingAttacks[sq]
	}
	return EmptyBB
}

// Moves returns the pseudo-legal destinations of p from sq: rules of
// movement are applied but the mover's king may still be left in check.
func (p Piece) Moves(b *Board, sq Square) Bitboard {
	own := b.OccupiedBy(p.Color())
	switch p.Kind() {
	case Pawn:
		return pawnMoves(b, p.Color(), sq)
	case King:
		return kingAttacks[sq]&^own | castlingMoves(b, p.Color(), sq)
	case NoKind:
		return EmptyBB
	}
	return p.Attacks(b, sq) &^ own
}

func pawnMoves(b *Board, c Color, sq Square) Bitboard {
	dir, startRank := 8, 1
	if c == Black {
		dir, startRank = -8, 6
	}
	var moves Bitboard
	fwd := int(sq) + dir
	if fwd >= 0 && fwd < 64 && !b.occupied.Has(Square(fwd)) {
		moves = moves.Set(Square(fwd))
		dbl := fwd + dir
		if sq.Rank() == startRank && !b.occupied.Has(Square(dbl)) {
			moves = moves.Set(Square(dbl))
		}
	}
	targets := b.OccupiedBy(c.Other())
	if b.enPassant.Valid() && c == b.turn {
		targets = targets.Set(b.enPassant)
	}
	return moves | pawnAttacks(c, sq)&targets
}

type castleRoute struct {
	right   CastlingRights
	king    Square
	rook    Square
	pass    Square
	dest    Square
	between Bitboard
}

var castleRoutes = [2][2]castleRoute{
	White: {
		{WhiteKingside, E1, H1, F1, G1, SquareBB(F1) | SquareBB(G1)},
		{WhiteQueenside, E1, A1, D1, C1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1)},
	},
	Black: {
		{BlackKingside, E8, H8, F8, G8, SquareBB(F8) | SquareBB(G8)},
		{BlackQueenside, E8, A8, D8, C8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8)},
	},
}

// castlingMoves adds g/c-file destinations when the right is held, the path
// is clear, the king is not in check and neither the pass nor the
// destination square is attacked. Attacks are checked by stepping the king
// on a cloned board.
func castlingMoves(b *Board, c Color, sq Square) Bitboard {
	var moves Bitboard
	for _, cs := range castleRoutes[c] {
		if !b.castling.Has(cs.right) || sq != cs.king {
			continue
		}
		if b.pieces[cs.rook] != MakePiece(c, Rook) || b.occupied&cs.between != 0 {
			continue
		}
		if b.IsKingInCheck(c) {
			return EmptyBB
		}
		if steppedIntoCheck(b, c, sq, cs.pass) || steppedIntoCheck(b, c, sq, cs.dest) {
			continue
		}
		moves = moves.Set(cs.dest)
	}
	return moves
}

func steppedIntoCheck(b *Board, c Color, from, to Square) bool {
	tmp := b.Clone()
	tmp.place(from, to)
	return tmp.IsKingInCheck(c)
}
