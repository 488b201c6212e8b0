package bots

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"

	"chessgo/board"
)

const (
	DefaultEngineDepth   = 10
	DefaultEngineTimeout = 10 * time.Second
	maxEngineElo         = 3190
)

// uciEngine is a running UCI engine. procEngine is the real one.
type uciEngine interface {
	Run(cmds ...uci.Cmd) error
	SearchResults() uci.SearchResults
	Close() error
}

// EngineBot asks an external UCI engine for moves. Whenever the engine cannot
// produce a legal move in time the Fallback bot answers instead.
type EngineBot struct {
	Path     string
	Elo      int
	MoveTime time.Duration
	// Depth is used when MoveTime is unset and Search gets no depth.
	Depth     int
	Timeout   time.Duration
	Fallback  ChessBot
	Evaluator PositionEvaluator
	Logger    *log.Logger

	dial func(path string) (uciEngine, error)

	mu  sync.Mutex
	eng uciEngine
}

func NewEngineBot(path string, elo int, fallback ChessBot) *EngineBot {
	return &EngineBot{
		Path:      path,
		Elo:       elo,
		Depth:     DefaultEngineDepth,
		Timeout:   DefaultEngineTimeout,
		Fallback:  fallback,
		Evaluator: DefaultEvaluator{},
		dial:      startEngine,
	}
}

func (b *EngineBot) Name() string {
	if b.Elo > 0 {
		return fmt.Sprintf("Engine (%d Elo)", b.Elo)
	}
	return "Engine"
}

func (b *EngineBot) Search(ctx context.Context, pos *board.Board, depth int) SearchResult {
	if pos == nil {
		return NoResult()
	}
	if !pos.HasLegalMove() {
		return NoResult()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	b.mu.Lock()
	best, err := b.bestMove(ctx, pos, depth)
	b.mu.Unlock()
	if err != nil {
		b.logger().Printf("engine: %v, using %s", err, b.fallbackName())
		return b.fallback(ctx, pos, depth)
	}

	// The score follows the engine's promotion piece. Move has no promotion
	// field, so playing BestMove promotes to a queen.
	m := board.ParseMove(best)
	child := pos.Clone()
	child.MovePieceAs(m.From, m.To, board.PromotionKind(best))
	ev := b.Evaluator
	if ev == nil {
		ev = DefaultEvaluator{}
	}
	res := SearchResult{Score: -Relative(ev, child), BestMove: m, TopMoves: []board.Move{m}}
	return sanitize(pos, res)
}

// Close stops the engine process if one is running.
func (b *EngineBot) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.eng == nil {
		return nil
	}
	err := b.eng.Close()
	b.eng = nil
	return err
}

// bestMove returns the engine's legal move in coordinate notation, keeping a
// promotion letter if the engine sent one. It must be called with b.mu held.
func (b *EngineBot) bestMove(ctx context.Context, pos *board.Board, depth int) (string, error) {
	if err := b.ensureEngine(ctx); err != nil {
		return "", err
	}

	fen, err := chess.FEN(pos.FEN())
	if err != nil {
		return "", fmt.Errorf("%w: position: %v", ErrEngineUnavailable, err)
	}
	game := chess.NewGame(fen)

	eng := b.eng
	if err := b.run(ctx, eng, uci.CmdPosition{Position: game.Position()}, b.goCmd(depth)); err != nil {
		b.teardown()
		return "", err
	}
	best := eng.SearchResults().BestMove
	if best == nil {
		return "", fmt.Errorf("%w: no bestmove", ErrIllegalEngineMove)
	}
	text := best.String()
	m := board.ParseMove(text)
	if !m.Valid() || !board.ContainsMove(pos.LegalMoves(pos.Turn()), m) {
		return "", fmt.Errorf("%w: %q", ErrIllegalEngineMove, text)
	}
	return text, nil
}

// goCmd limits the search by MoveTime when set, else by the requested depth,
// else by Depth.
func (b *EngineBot) goCmd(depth int) uci.CmdGo {
	switch {
	case b.MoveTime > 0:
		return uci.CmdGo{MoveTime: b.MoveTime}
	case depth > 0:
		return uci.CmdGo{Depth: depth}
	case b.Depth > 0:
		return uci.CmdGo{Depth: b.Depth}
	}
	return uci.CmdGo{Depth: DefaultEngineDepth}
}

// run sends cmds and waits for the engine, the timeout or ctx, whichever
// comes first. A blocked Run keeps its goroutine until the engine is closed.
func (b *EngineBot) run(ctx context.Context, eng uciEngine, cmds ...uci.Cmd) error {
	done := make(chan error, 1)
	go func() { done <- eng.Run(cmds...) }()

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
		return nil
	case <-timer.C:
		return ErrEngineTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *EngineBot) ensureEngine(ctx context.Context) error {
	if b.eng != nil {
		return nil
	}
	if b.Path == "" {
		return fmt.Errorf("%w: no engine path", ErrEngineUnavailable)
	}
	dial := b.dial
	if dial == nil {
		dial = startEngine
	}
	eng, err := dial(b.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	b.eng = eng
	if err := b.run(ctx, eng, b.handshake()...); err != nil {
		b.teardown()
		return fmt.Errorf("handshake: %w", err)
	}
	return nil
}

func (b *EngineBot) handshake() []uci.Cmd {
	cmds := []uci.Cmd{uci.CmdUCI}
	if b.Elo > 0 {
		elo := b.Elo
		if elo > maxEngineElo {
			elo = maxEngineElo
		}
		cmds = append(cmds,
			uci.CmdSetOption{Name: "UCI_LimitStrength", Value: "true"},
			uci.CmdSetOption{Name: "UCI_Elo", Value: strconv.Itoa(elo)},
		)
	}
	return append(cmds, uci.CmdIsReady, uci.CmdUCINewGame)
}

// teardown drops the engine so the next request starts a fresh process. The
// old one may be stuck in a search and need the kill grace period, so it is
// closed in the background.
func (b *EngineBot) teardown() {
	if b.eng == nil {
		return
	}
	eng := b.eng
	b.eng = nil
	go func() {
		if err := eng.Close(); err != nil {
			b.logger().Printf("engine: close: %v", err)
		}
	}()
}

func (b *EngineBot) fallback(ctx context.Context, pos *board.Board, depth int) SearchResult {
	if b.Fallback == nil {
		return sanitize(pos, NewNewbornBot().Search(ctx, pos, depth))
	}
	return sanitize(pos, b.Fallback.Search(ctx, pos, depth))
}

func (b *EngineBot) fallbackName() string {
	if b.Fallback == nil {
		return "first legal move"
	}
	return b.Fallback.Name()
}

func (b *EngineBot) logger() *log.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return log.Default()
}
