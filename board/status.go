package board

// Status summarizes the game state for the side to move.
type Status uint8

const (
	Ongoing Status = iota
	Check
	Checkmate
	Stalemate
	FiftyMoveDraw
)

func (s Status) String() string {
	switch s {
	case Check:
		return "check"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case FiftyMoveDraw:
		return "draw (fifty-move rule)"
	}
	return "ongoing"
}

// Over reports whether no further moves can be played.
func (s Status) Over() bool { return s >= Checkmate }

func (b *Board) Status() Status {
	inCheck := b.IsCheck()
	hasMove := b.HasLegalMove()
	switch {
	case inCheck && !hasMove:
		return Checkmate
	case !hasMove:
		return Stalemate
	case b.halfmoveClock >= 100:
		return FiftyMoveDraw
	case inCheck:
		return Check
	}
	return Ongoing
}

// Terminal is true for checkmate, stalemate and fifty-move draws.
func (b *Board) Terminal() bool { return b.Status().Over() }
