package board

// Move is a from/to square pair. Promotion is resolved by the board.
type Move struct {
	From Square
	To   Square
}

// NoMove is what malformed tokens parse to.
var NoMove = Move{From: NoSquare, To: NoSquare}

func (m Move) Valid() bool { return m.From.Valid() && m.To.Valid() }

// String is the coordinate token, "e2e4".
func (m Move) String() string {
	if !m.Valid() {
		return "0000"
	}
	return m.From.String() + m.To.String()
}

// ParseMove reads a coordinate token such as "e2e4". A fifth promotion
// letter (q, r, b, n) is accepted. Anything else yields NoMove.
func ParseMove(s string) Move {
	if len(s) != 4 && len(s) != 5 {
		return NoMove
	}
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'r', 'b', 'n', 'Q', 'R', 'B', 'N':
		default:
			return NoMove
		}
	}
	m := Move{From: ParseSquare(s[0:2]), To: ParseSquare(s[2:4])}
	if !m.Valid() {
		return NoMove
	}
	return m
}

// PromotionKind returns the piece kind named by a token's fifth letter,
// Queen when there is none.
func PromotionKind(s string) Kind {
	if len(s) != 5 {
		return Queen
	}
	switch s[4] {
	case 'n', 'N':
		return Knight
	case 'b', 'B':
		return Bishop
	case 'r', 'R':
		return Rook
	}
	return Queen
}

// ContainsMove reports whether m is in moves.
func ContainsMove(moves []Move, m Move) bool {
	for _, x := range moves {
		if x == m {
			return true
		}
	}
	return false
}
