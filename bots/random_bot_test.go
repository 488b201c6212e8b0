package bots

import (
	"context"
	"testing"

	"chessgo/board"
)

func TestRandomBotPlaysLegalMoves(t *testing.T) {
	bot := NewRandomBot(5)
	b := board.New()
	for i := 0; i < 40; i++ {
		res := bot.Search(context.Background(), b, 0)
		if !res.HasMove() {
			break
		}
		if !board.ContainsMove(b.LegalMoves(b.Turn()), res.BestMove) {
			t.Fatalf("ply %d: %s is illegal", i, res.BestMove)
		}
		if !b.MovePiece(res.BestMove.From, res.BestMove.To) {
			t.Fatalf("ply %d: board rejected %s", i, res.BestMove)
		}
	}
}

func TestNewbornBotPlaysFirstMove(t *testing.T) {
	b := board.New()
	res := NewNewbornBot().Search(context.Background(), b, 0)
	if res.BestMove != b.LegalMoves(board.White)[0] {
		t.Fatalf("got %s", res.BestMove)
	}
	mated := mustFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if res := NewNewbornBot().Search(context.Background(), mated, 0); res.HasMove() {
		t.Fatalf("mated side got %s", res.BestMove)
	}
}

func TestSanitizeDropsIllegalMoves(t *testing.T) {
	b := board.New()
	bad := board.ParseMove("e2e5")
	good := board.ParseMove("g1f3")
	res := sanitize(b, SearchResult{Score: 1, BestMove: bad, TopMoves: []board.Move{bad, good}})
	if res.BestMove != good || len(res.TopMoves) != 1 {
		t.Fatalf("got %+v", res)
	}
}
