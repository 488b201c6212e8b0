package board

// Square is a board index: rank*8 + file, a1 = 0, h8 = 63.
type Square uint8

// NoSquare marks an absent square (no en passant target, malformed token).
const NoSquare Square = 64

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
)

const (
	A8 Square = 56 + iota
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

func NewSquare(file, rank int) Square { return Square(rank*8 + file) }

func (sq Square) Rank() int { return int(sq) / 8 }

func (sq Square) File() int { return int(sq) % 8 }

func (sq Square) Valid() bool { return sq < NoSquare }

func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// ParseSquare reads "e4" style coordinates, NoSquare when malformed.
func ParseSquare(s string) Square {
	if len(s) != 2 {
		return NoSquare
	}
	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return NewSquare(file, rank)
}

type Color uint8

const (
	White Color = 0
	Black Color = 1
)

func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Kind is the colorless piece type.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]byte{' ', 'p', 'n', 'b', 'r', 'q', 'k'}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "none"
}

// Piece packs a kind and a color in one byte: kind in the low three bits,
// bit 3 set for Black. The zero value is an empty square.
type Piece uint8

const NoPiece Piece = 0

const (
	WhitePawn   = Piece(Pawn)
	WhiteKnight = Piece(Knight)
	WhiteBishop = Piece(Bishop)
	WhiteRook   = Piece(Rook)
	WhiteQueen  = Piece(Queen)
	WhiteKing   = Piece(King)
	BlackPawn   = Piece(Pawn) | 8
	BlackKnight = Piece(Knight) | 8
	BlackBishop = Piece(Bishop) | 8
	BlackRook   = Piece(Rook) | 8
	BlackQueen  = Piece(Queen) | 8
	BlackKing   = Piece(King) | 8
)

func MakePiece(c Color, k Kind) Piece {
	if k == NoKind {
		return NoPiece
	}
	return Piece(k) | Piece(c)<<3
}

func (p Piece) Kind() Kind { return Kind(p & 7) }

// Color of the owner. Meaningless for NoPiece.
func (p Piece) Color() Color { return Color(p >> 3 & 1) }

func (p Piece) Empty() bool { return p == NoPiece }

// Letter is the FEN letter: upper case for White.
func (p Piece) Letter() byte {
	if p == NoPiece {
		return '.'
	}
	l := kindLetters[p.Kind()]
	if p.Color() == White {
		l -= 'a' - 'A'
	}
	return l
}

func (p Piece) String() string {
	if p == NoPiece {
		return "none"
	}
	return p.Color().String() + " " + p.Kind().String()
}

func pieceFromLetter(l byte) Piece {
	c := White
	if l >= 'a' && l <= 'z' {
		c = Black
		l -= 'a' - 'A'
	}
	switch l {
	case 'P':
		return MakePiece(c, Pawn)
	case 'N':
		return MakePiece(c, Knight)
	case 'B':
		return MakePiece(c, Bishop)
	case 'R':
		return MakePiece(c, Rook)
	case 'Q':
		return MakePiece(c, Queen)
	case 'K':
		return MakePiece(c, King)
	}
	return NoPiece
}

// CastlingRights holds the four castling permissions as bit flags.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside
)

const NoCastling CastlingRights = 0

func (cr CastlingRights) Has(f CastlingRights) bool { return cr&f != 0 }

func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	out := make([]byte, 0, 4)
	for _, f := range []struct {
		flag   CastlingRights
		letter byte
	}{{WhiteKingside, 'K'}, {WhiteQueenside, 'Q'}, {BlackKingside, 'k'}, {BlackQueenside, 'q'}} {
		if cr.Has(f.flag) {
			out = append(out, f.letter)
		}
	}
	return string(out)
}
