package board

import (
	"errors"
	"testing"
)

func TestFENStartPosition(t *testing.T) {
	if got := New().FEN(); got != StartFEN {
		t.Fatalf("initial FEN %q", got)
	}
	b := mustFEN(t, StartFEN)
	if b.Pieces() != New().Pieces() {
		t.Fatalf("parsed start position differs from New()")
	}
	if b.KingSquare(White) != E1 || b.KingSquare(Black) != E8 {
		t.Fatalf("king squares %s %s", b.KingSquare(White), b.KingSquare(Black))
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
		"8/8/8/8/8/8/8/8 b - - 12 40",
		"4k3/8/8/8/8/8/8/4K2R w K - 3 9",
	}
	for _, fen := range fens {
		if got := mustFEN(t, fen).FEN(); got != fen {
			t.Fatalf("round trip: got %q want %q", got, fen)
		}
	}
}

func TestFENDefaultsClocks(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/8/8/8/8/4K3 b - -")
	if b.HalfmoveClock() != 0 || b.FullmoveNumber() != 1 || b.Turn() != Black {
		t.Fatalf("defaults: %s", b.FEN())
	}
}

func TestFENErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e5 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e3 0 1",
		"rnbqkbnr/pppp1ppp/8/4p3/8/8/PPPPPPPP/RNBQKBNR b KQkq e6 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0",
		"kk6/8/8/8/8/8/8/4K3 w - - 0 1",
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Fatalf("ParseFEN(%q): err %v, want ErrInvalidFEN", fen, err)
		}
	}
	if _, err := ParseFEN("kk6/8/8/8/8/8/8/4K3 w - - 0 1"); !errors.Is(err, ErrKingCount) {
		t.Fatalf("two black kings: err %v, want ErrKingCount", err)
	}
}
