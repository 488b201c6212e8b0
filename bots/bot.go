// bot.go
package bots

import (
	"context"
	"fmt"
	"math"
	"strings"

	"chessgo/board"
)

// ChessBot is the move-suggestion contract shared by every strategy.
// Search never mutates b and must return a legal move or none at all.
type ChessBot interface {
	Search(ctx context.Context, b *board.Board, depth int) SearchResult
	Name() string
}

// SearchResult is the outcome of one search. Score is seen from the side to
// move in the searched position.
type SearchResult struct {
	Score    float64
	BestMove board.Move
	TopMoves []board.Move
}

// NoResult is returned when there is nothing to play.
func NoResult() SearchResult {
	return SearchResult{BestMove: board.NoMove}
}

func (r SearchResult) HasMove() bool { return r.BestMove.Valid() }

// String is the one-line readout the UI shows, e.g. "eval +0.50  top e2e4 d2d4".
func (r SearchResult) String() string {
	if !r.HasMove() {
		return fmt.Sprintf("eval %+.2f  no move", r.Score)
	}
	top := make([]string, len(r.TopMoves))
	for i, m := range r.TopMoves {
		top[i] = m.String()
	}
	return fmt.Sprintf("eval %+.2f  top %s", r.Score, strings.Join(top, " "))
}

// PositionEvaluator scores a position from White's point of view.
type PositionEvaluator interface {
	Evaluate(b *board.Board) float64
}

// Relative turns an absolute score into one seen by the side to move.
func Relative(ev PositionEvaluator, b *board.Board) float64 {
	s := finite(ev.Evaluate(b))
	if b.Turn() == board.Black {
		return -s
	}
	return s
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// sanitize drops anything that is not a legal move in b and clamps the score.
func sanitize(b *board.Board, r SearchResult) SearchResult {
	legal := b.LegalMoves(b.Turn())
	r.Score = finite(r.Score)
	if !board.ContainsMove(legal, r.BestMove) {
		r.BestMove = board.NoMove
	}
	top := r.TopMoves[:0:0]
	for _, m := range r.TopMoves {
		if board.ContainsMove(legal, m) {
			top = append(top, m)
		}
	}
	r.TopMoves = top
	if !r.HasMove() && len(top) > 0 {
		r.BestMove = top[0]
	}
	return r
}
