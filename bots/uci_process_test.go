package bots

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/notnil/chess/uci"

	"chessgo/board"
)

// A minimal engine that answers the handshake and searches instantly.
const politeEngine = `#!/bin/sh
while read -r line; do
	case "$line" in
	uci) echo "id name polite"; echo uciok ;;
	isready) echo readyok ;;
	go*) echo "info depth 1 score cp 20 pv e2e4"; echo "bestmove e2e4 ponder e7e5" ;;
	quit) exit 0 ;;
	esac
done
`

// An engine that answers the handshake, then never finishes a search and
// ignores stop and quit. It outlives its stdin until killed.
const stuckEngine = `#!/bin/sh
while read -r line; do
	case "$line" in
	uci) echo uciok ;;
	isready) echo readyok ;;
	esac
done
exec sleep 30 >/dev/null 2>&1
`

func writeEngine(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh in PATH")
	}
	path := filepath.Join(t.TempDir(), "engine")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func startTestEngine(t *testing.T, script string) *procEngine {
	t.Helper()
	eng, err := startEngine(writeEngine(t, script))
	if err != nil {
		t.Fatal(err)
	}
	e := eng.(*procEngine)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestProcEngineSearch(t *testing.T) {
	e := startTestEngine(t, politeEngine)
	if err := e.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame, uci.CmdPosition{}, uci.CmdGo{Depth: 1}); err != nil {
		t.Fatal(err)
	}
	res := e.SearchResults()
	if res.BestMove == nil || res.BestMove.String() != "e2e4" {
		t.Fatalf("best move %v, want e2e4", res.BestMove)
	}
	if res.Ponder == nil || res.Ponder.String() != "e7e5" {
		t.Fatalf("ponder %v, want e7e5", res.Ponder)
	}
	if res.Info.Score.CP != 20 || res.Info.Depth != 1 {
		t.Fatalf("info %+v", res.Info)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("polite engine close: %v", err)
	}
}

func TestProcEngineCloseKillsStuckSearch(t *testing.T) {
	e := startTestEngine(t, stuckEngine)
	if err := e.Run(uci.CmdUCI, uci.CmdIsReady); err != nil {
		t.Fatal(err)
	}
	runErr := make(chan error, 1)
	go func() { runErr <- e.Run(uci.CmdPosition{}, uci.CmdGo{Depth: 1}) }()
	time.Sleep(50 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- e.Close() }()
	select {
	case err := <-closed:
		if !errors.Is(err, ErrEngineTimeout) {
			t.Fatalf("close: %v, want a kill", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked behind the running search")
	}
	select {
	case <-e.exited:
	default:
		t.Fatal("engine process still running after Close")
	}
	select {
	case err := <-runErr:
		if err == nil {
			t.Fatal("search on a killed engine succeeded")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run still blocked after the engine was killed")
	}
}

func TestEngineBotKillsTimedOutEngine(t *testing.T) {
	path := writeEngine(t, stuckEngine)
	started := make(chan *procEngine, 1)
	bot := NewEngineBot(path, 0, NewNewbornBot())
	bot.Logger = log.New(io.Discard, "", 0)
	bot.Timeout = 100 * time.Millisecond
	bot.dial = func(p string) (uciEngine, error) {
		eng, err := startEngine(p)
		if err == nil {
			started <- eng.(*procEngine)
		}
		return eng, err
	}

	res := bot.Search(context.Background(), board.New(), 1)
	if res.BestMove != board.New().LegalMoves(board.White)[0] {
		t.Fatalf("timeout should use the fallback, got %s", res.BestMove)
	}
	e := <-started
	select {
	case <-e.exited:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out engine was never killed")
	}
	if err := bot.Close(); err != nil {
		t.Fatal(err)
	}
}
