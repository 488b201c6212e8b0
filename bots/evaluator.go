package bots

import "chessgo/board"

type DefaultEvaluator struct{}

const (
	MateScore        = 1000
	CenterBonus      = 0.5
	KingSafetyWeight = 0.2
)

var pieceValues = [...]float64{
	board.Pawn:   1,
	board.Knight: 3,
	board.Bishop: 3,
	board.Rook:   5,
	board.Queen:  9,
	board.King:   0,
}

// Evaluate returns a White-positive score. Mate is scored ±MateScore
// against the side that is mated; stalemate and fifty-move draws are 0.
func (e DefaultEvaluator) Evaluate(b *board.Board) float64 {
	switch b.Status() {
	case board.Checkmate:
		if b.Turn() == board.White {
			return -MateScore
		}
		return MateScore
	case board.Stalemate, board.FiftyMoveDraw:
		return 0
	}

	score := e.materialScore(b) + e.positionalScore(b) + e.kingSafety(b)
	return finite(score)
}

func (e DefaultEvaluator) materialScore(b *board.Board) float64 {
	var score float64
	for _, p := range b.Pieces() {
		if p == board.NoPiece {
			continue
		}
		score += sign(p.Color()) * pieceValue(p.Kind())
	}
	return score
}

// positionalScore rewards occupying d4, e4, d5 and e5.
func (e DefaultEvaluator) positionalScore(b *board.Board) float64 {
	var score float64
	pieces := b.Pieces()
	for sq, p := range pieces {
		if p == board.NoPiece {
			continue
		}
		s := board.Square(sq)
		if s.File() >= 3 && s.File() <= 4 && s.Rank() >= 3 && s.Rank() <= 4 {
			score += sign(p.Color()) * CenterBonus
		}
	}
	return score
}

// kingSafety prefers kings that stay on their own two back ranks.
func (e DefaultEvaluator) kingSafety(b *board.Board) float64 {
	var score float64
	if sq := b.KingSquare(board.White); sq.Valid() {
		if sq.Rank() <= 1 {
			score += KingSafetyWeight
		} else {
			score -= KingSafetyWeight
		}
	}
	if sq := b.KingSquare(board.Black); sq.Valid() {
		if sq.Rank() >= 6 {
			score -= KingSafetyWeight
		} else {
			score += KingSafetyWeight
		}
	}
	return score
}

func pieceValue(k board.Kind) float64 {
	if int(k) >= len(pieceValues) {
		return 0
	}
	return pieceValues[k]
}

func sign(c board.Color) float64 {
	if c == board.White {
		return 1
	}
	return -1
}
