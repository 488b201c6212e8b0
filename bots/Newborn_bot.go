package bots

import (
	"context"

	"chessgo/board"
)

// NewbornBot always plays the first legal move in canonical order.
type NewbornBot struct{}

func NewNewbornBot() *NewbornBot {
	return &NewbornBot{}
}

func (b *NewbornBot) Search(ctx context.Context, pos *board.Board, depth int) SearchResult {
	if pos == nil {
		return NoResult()
	}
	moves := pos.LegalMoves(pos.Turn())
	if len(moves) == 0 {
		return NoResult()
	}
	return SearchResult{Score: Relative(DefaultEvaluator{}, pos), BestMove: moves[0], TopMoves: moves[:1]}
}

func (b *NewbornBot) Name() string {
	return "Newborn"
}
