package bots

import (
	"context"
	"testing"

	"chessgo/board"
)

func TestMCTSZeroIterationsOnMate(t *testing.T) {
	mated := mustFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	res := NewMCTSBot(0, 1).Search(context.Background(), mated, 0)
	if res.HasMove() || len(res.TopMoves) != 0 {
		t.Fatalf("got %+v", res)
	}
	if res.Score != 0 {
		t.Fatalf("score %v, want neutral", res.Score)
	}
}

func TestMCTSReproducibleWithSeed(t *testing.T) {
	b := board.New()
	a := NewMCTSBot(200, 42).Search(context.Background(), b, 0)
	c := NewMCTSBot(200, 42).Search(context.Background(), b, 0)
	if a.BestMove != c.BestMove || a.Score != c.Score {
		t.Fatalf("same seed, different results: %v/%v vs %v/%v", a.BestMove, a.Score, c.BestMove, c.Score)
	}
	if !board.ContainsMove(b.LegalMoves(board.White), a.BestMove) {
		t.Fatalf("%s is not legal", a.BestMove)
	}
}

func TestMCTSTopMoves(t *testing.T) {
	b := board.New()
	res := NewMCTSBot(300, 7).Search(context.Background(), b, 0)
	if len(res.TopMoves) == 0 || len(res.TopMoves) > DefaultTopN {
		t.Fatalf("got %d top moves", len(res.TopMoves))
	}
	if res.TopMoves[0] != res.BestMove {
		t.Fatalf("best move %s is not first of %v", res.BestMove, res.TopMoves)
	}
}

func TestMCTSPrefersWinningCapture(t *testing.T) {
	// Only a king and a hanging queen for black; every rollout after the
	// capture stays far ahead.
	b := mustFEN(t, "4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1")
	res := NewMCTSBot(400, 3).Search(context.Background(), b, 0)
	if got := res.BestMove.String(); got != "d1d5" {
		t.Fatalf("best move %s, want d1d5", got)
	}
}

func TestMCTSCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := board.New()
	res := NewMCTSBot(1_000_000, 1).Search(ctx, b, 0)
	if !res.HasMove() {
		t.Fatal("expected the first legal move")
	}
}

func TestMCTSSingleNodeArena(t *testing.T) {
	b := mustFEN(t, "7k/8/8/8/8/8/8/K7 w - - 0 1")
	bot := NewMCTSBot(50, 9)
	tree := bot.newTree(b)
	tree.expand(0)
	if got := len(tree.nodes[0].children); got != 3 {
		t.Fatalf("a1 king should have 3 children, got %d", got)
	}
	for _, ci := range tree.nodes[0].children {
		if tree.nodes[ci].parent != 0 {
			t.Fatalf("child %d has parent %d", ci, tree.nodes[ci].parent)
		}
	}
	tree.backpropagate(tree.nodes[0].children[0], 2)
	child := tree.nodes[tree.nodes[0].children[0]]
	if child.total != 2 || tree.nodes[0].total != -2 {
		t.Fatalf("backprop signs wrong: child %v root %v", child.total, tree.nodes[0].total)
	}
}
