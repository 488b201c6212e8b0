package bots

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
)

// quitGrace is how long Close waits for the engine to honor "quit" before
// killing it.
const quitGrace = 500 * time.Millisecond

var errEngineExited = errors.New("engine exited")

// procEngine speaks UCI to a child process. It reuses the uci package's
// commands and output parsing, but owns the process so Close can kill an
// engine that is stuck in a search. uci.Engine cannot do that: its Close
// sends quit under the same lock a running "go" holds.
type procEngine struct {
	cmd  *exec.Cmd
	kill context.CancelFunc

	wmu   sync.Mutex
	stdin io.WriteCloser

	lines  chan string
	quit   chan struct{}
	exited chan struct{}

	// runMu keeps one command batch in flight. Close never takes it.
	runMu sync.Mutex

	mu      sync.Mutex
	results uci.SearchResults

	closeOnce sync.Once
	closeErr  error
}

func startEngine(path string) (uciEngine, error) {
	exe, err := exec.LookPath(path)
	if err != nil {
		return nil, err
	}
	ctx, kill := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, exe)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		kill()
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		kill()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		kill()
		return nil, err
	}
	e := &procEngine{
		cmd:    cmd,
		kill:   kill,
		stdin:  stdin,
		lines:  make(chan string, 256),
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go e.read(stdout)
	return e, nil
}

// read forwards engine output until EOF, then reaps the process. Once Close
// has started, lines nobody waits for are dropped so the engine never blocks
// on a full pipe.
func (e *procEngine) read(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		select {
		case e.lines <- sc.Text():
		case <-e.quit:
		}
	}
	close(e.lines)
	_ = e.cmd.Wait()
	close(e.exited)
}

func (e *procEngine) send(line string) error {
	e.wmu.Lock()
	defer e.wmu.Unlock()
	_, err := fmt.Fprintln(e.stdin, line)
	return err
}

func (e *procEngine) Run(cmds ...uci.Cmd) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	for _, c := range cmds {
		if err := e.send(c.String()); err != nil {
			return err
		}
		if err := e.await(c); err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
	}
	return nil
}

// await reads output until the reply that completes c, if c has one.
func (e *procEngine) await(c uci.Cmd) error {
	if _, ok := c.(uci.CmdGo); ok {
		return e.awaitBestMove()
	}
	var token string
	switch c.String() {
	case uci.CmdUCI.Name:
		token = "uciok"
	case uci.CmdIsReady.Name:
		token = "readyok"
	default:
		return nil
	}
	for line := range e.lines {
		if strings.TrimSpace(line) == token {
			return nil
		}
	}
	return errEngineExited
}

func (e *procEngine) awaitBestMove() error {
	var res uci.SearchResults
	for line := range e.lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] != "bestmove" {
			var info uci.Info
			if info.UnmarshalText([]byte(strings.Join(fields, " "))) == nil {
				res.Info = info
			}
			continue
		}
		// "bestmove (none)" leaves BestMove nil.
		if len(fields) > 1 {
			if m, err := (chess.UCINotation{}).Decode(nil, fields[1]); err == nil {
				res.BestMove = m
			}
		}
		if len(fields) > 3 && fields[2] == "ponder" {
			if m, err := (chess.UCINotation{}).Decode(nil, fields[3]); err == nil {
				res.Ponder = m
			}
		}
		e.mu.Lock()
		e.results = res
		e.mu.Unlock()
		return nil
	}
	return errEngineExited
}

func (e *procEngine) SearchResults() uci.SearchResults {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.results
}

// Close asks the engine to stop and quit, and kills it when it has not exited
// within quitGrace. A Run blocked on the engine returns once it is gone.
func (e *procEngine) Close() error {
	e.closeOnce.Do(func() {
		close(e.quit)
		go func() {
			_ = e.send(uci.CmdStop.Name)
			_ = e.send(uci.CmdQuit.Name)
			e.wmu.Lock()
			_ = e.stdin.Close()
			e.wmu.Unlock()
		}()
		timer := time.NewTimer(quitGrace)
		defer timer.Stop()
		select {
		case <-e.exited:
		case <-timer.C:
			e.kill()
			<-e.exited
			e.closeErr = fmt.Errorf("%w: killed after quit", ErrEngineTimeout)
		}
		e.kill()
	})
	return e.closeErr
}
