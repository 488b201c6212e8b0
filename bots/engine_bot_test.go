package bots

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"

	"chessgo/board"
)

// fakeEngine behaves like procEngine: a "go" on a blocking fake never
// answers, and only Close gets the caller back, with an error.
type fakeEngine struct {
	mu     sync.Mutex
	best   *chess.Move
	block  chan struct{}
	runErr error
	cmds   []uci.Cmd
	closed bool
}

func (f *fakeEngine) Run(cmds ...uci.Cmd) error {
	f.mu.Lock()
	f.cmds = append(f.cmds, cmds...)
	block := f.block
	f.mu.Unlock()
	for _, c := range cmds {
		if _, ok := c.(uci.CmdGo); ok && block != nil {
			<-block
			return errEngineExited
		}
	}
	return f.runErr
}

func (f *fakeEngine) SearchResults() uci.SearchResults {
	return uci.SearchResults{BestMove: f.best}
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		if f.block != nil {
			close(f.block)
		}
	}
	return nil
}

func (f *fakeEngine) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// goCmds returns every "go" the engine received.
func (f *fakeEngine) goCmds() []uci.CmdGo {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uci.CmdGo
	for _, c := range f.cmds {
		if g, ok := c.(uci.CmdGo); ok {
			out = append(out, g)
		}
	}
	return out
}

func (f *fakeEngine) sent(want uci.Cmd) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cmds {
		if c == want {
			return true
		}
	}
	return false
}

// notnilMove finds a move by its UCI text among the legal moves of fen.
func notnilMove(t *testing.T, fen, text string) *chess.Move {
	t.Helper()
	opt, err := chess.FEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range chess.NewGame(opt).ValidMoves() {
		if m.String() == text {
			return m
		}
	}
	t.Fatalf("%s not legal in %s", text, fen)
	return nil
}

func newTestEngineBot(engines ...*fakeEngine) (*EngineBot, *int) {
	dials := 0
	bot := NewEngineBot("fake-engine", 1500, NewNewbornBot())
	bot.Logger = log.New(io.Discard, "", 0)
	bot.dial = func(string) (uciEngine, error) {
		if dials >= len(engines) {
			dials++
			return nil, errors.New("no such engine")
		}
		e := engines[dials]
		dials++
		return e, nil
	}
	return bot, &dials
}

func TestEngineBotPlaysEngineMove(t *testing.T) {
	eng := &fakeEngine{best: notnilMove(t, board.StartFEN, "e2e4")}
	bot, _ := newTestEngineBot(eng)
	res := bot.Search(context.Background(), board.New(), 3)
	if got := res.BestMove.String(); got != "e2e4" {
		t.Fatalf("best move %s, want e2e4", got)
	}
	if len(res.TopMoves) != 1 || res.TopMoves[0] != res.BestMove {
		t.Fatalf("top moves %v", res.TopMoves)
	}
	if !eng.sent(uci.CmdSetOption{Name: "UCI_LimitStrength", Value: "true"}) ||
		!eng.sent(uci.CmdSetOption{Name: "UCI_Elo", Value: "1500"}) {
		t.Fatal("strength options were not sent")
	}
}

func TestEngineBotFallsBack(t *testing.T) {
	afterE4 := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	tests := []struct {
		name string
		eng  *fakeEngine
	}{
		{"unavailable", nil},
		{"illegal move", &fakeEngine{best: notnilMove(t, board.StartFEN, "e2e4")}},
		{"no move", &fakeEngine{}},
		{"run error", &fakeEngine{runErr: errors.New("broken pipe")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bot *EngineBot
			if tt.eng == nil {
				bot, _ = newTestEngineBot()
			} else {
				bot, _ = newTestEngineBot(tt.eng)
			}
			b := mustFEN(t, afterE4)
			res := bot.Search(context.Background(), b, 1)
			want := b.LegalMoves(board.Black)[0]
			if res.BestMove != want {
				t.Fatalf("got %s, want fallback move %s", res.BestMove, want)
			}
		})
	}
}

func TestEngineBotErrors(t *testing.T) {
	b := board.New()

	bot, _ := newTestEngineBot()
	if _, err := bot.bestMove(context.Background(), b, 1); !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("dial failure: %v", err)
	}

	bot, _ = newTestEngineBot(&fakeEngine{})
	if _, err := bot.bestMove(context.Background(), b, 1); !errors.Is(err, ErrIllegalEngineMove) {
		t.Fatalf("missing move: %v", err)
	}

	hung := &fakeEngine{block: make(chan struct{})}
	bot, _ = newTestEngineBot(hung)
	bot.Timeout = 10 * time.Millisecond
	if _, err := bot.bestMove(context.Background(), b, 1); !errors.Is(err, ErrEngineTimeout) {
		t.Fatalf("hung engine: %v", err)
	}
	waitClosed(t, hung)
}

// waitClosed fails unless the engine is closed soon. Teardown closes in the
// background.
func waitClosed(t *testing.T, f *fakeEngine) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !f.isClosed() {
		if time.Now().After(deadline) {
			t.Fatal("engine was never closed")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEngineBotSearchLimits(t *testing.T) {
	tests := []struct {
		name     string
		moveTime time.Duration
		depth    int
		want     uci.CmdGo
	}{
		{"requested depth", 0, 4, uci.CmdGo{Depth: 4}},
		{"default depth", 0, 0, uci.CmdGo{Depth: DefaultEngineDepth}},
		{"move time wins", 300 * time.Millisecond, 4, uci.CmdGo{MoveTime: 300 * time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{best: notnilMove(t, board.StartFEN, "e2e4")}
			bot, _ := newTestEngineBot(eng)
			bot.MoveTime = tt.moveTime
			bot.Search(context.Background(), board.New(), tt.depth)
			gos := eng.goCmds()
			if len(gos) != 1 {
				t.Fatalf("sent %d go commands", len(gos))
			}
			if gos[0].Depth != tt.want.Depth || gos[0].MoveTime != tt.want.MoveTime {
				t.Fatalf("sent %q, want %q", gos[0].String(), tt.want.String())
			}
		})
	}
}

func TestEngineBotUnderpromotion(t *testing.T) {
	fen := "8/4P3/8/8/8/8/k7/4K3 w - - 0 1"
	score := func(text string) SearchResult {
		t.Helper()
		bot, _ := newTestEngineBot(&fakeEngine{best: notnilMove(t, fen, text)})
		return bot.Search(context.Background(), mustFEN(t, fen), 1)
	}
	knight, queen := score("e7e8n"), score("e7e8q")
	if got := knight.BestMove.String(); got != "e7e8" {
		t.Fatalf("best move %s, want e7e8", got)
	}
	if knight.Score >= queen.Score {
		t.Fatalf("knight promotion scored %.2f, queen %.2f", knight.Score, queen.Score)
	}
}

func TestEngineBotRestartsAfterTimeout(t *testing.T) {
	hung := &fakeEngine{block: make(chan struct{})}
	good := &fakeEngine{best: notnilMove(t, board.StartFEN, "d2d4")}
	bot, dials := newTestEngineBot(hung, good)
	bot.Timeout = 20 * time.Millisecond

	first := bot.Search(context.Background(), board.New(), 1)
	if first.BestMove != board.New().LegalMoves(board.White)[0] {
		t.Fatalf("timeout should use the fallback, got %s", first.BestMove)
	}
	waitClosed(t, hung)
	second := bot.Search(context.Background(), board.New(), 1)
	if got := second.BestMove.String(); got != "d2d4" {
		t.Fatalf("restarted engine move %s, want d2d4", got)
	}
	if *dials != 2 {
		t.Fatalf("dialed %d times, want 2", *dials)
	}
	if err := bot.Close(); err != nil {
		t.Fatal(err)
	}
	if !good.isClosed() {
		t.Fatal("Close did not stop the engine")
	}
}

func TestEngineBotNoLegalMoves(t *testing.T) {
	bot, dials := newTestEngineBot()
	mated := mustFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if res := bot.Search(context.Background(), mated, 1); res.HasMove() {
		t.Fatalf("got %s", res.BestMove)
	}
	if *dials != 0 {
		t.Fatal("engine started for a finished game")
	}
	if err := bot.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestEngineHandshakeCapsElo(t *testing.T) {
	bot := NewEngineBot("x", 4000, nil)
	found := false
	for _, c := range bot.handshake() {
		if c == (uci.CmdSetOption{Name: "UCI_Elo", Value: "3190"}) {
			found = true
		}
	}
	if !found {
		t.Fatal("Elo not capped")
	}
}
