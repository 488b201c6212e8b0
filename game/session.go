// Package game holds a live game between a player and a bot. The UI owns the
// Session; searches run on a worker goroutine against a private clone.
package game

import (
	"context"
	"log"
	"sync"

	"chessgo/board"
	"chessgo/bots"
)

type Session struct {
	// ctl serializes the search lifecycle so at most one worker exists.
	ctl sync.Mutex

	mu      sync.Mutex
	history []*board.Board
	cursor  int
	gen     uint64
	bot     bots.ChessBot
	depth   int
	logger  *log.Logger

	cancel    context.CancelFunc
	done      chan struct{}
	result    bots.SearchResult
	resultGen uint64
	hasResult bool

	last    bots.SearchResult
	hasLast bool
}

// NewSession starts from a copy of start, or the initial position when nil.
func NewSession(start *board.Board, bot bots.ChessBot, depth int, logger *log.Logger) *Session {
	if start == nil {
		start = board.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		history: []*board.Board{start.Clone()},
		bot:     bot,
		depth:   depth,
		logger:  logger,
	}
}

func (s *Session) current() *board.Board { return s.history[s.cursor] }

// Board returns a snapshot safe to read while a search runs.
func (s *Session) Board() *board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current().Clone()
}

func (s *Session) Turn() board.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current().Turn()
}

func (s *Session) Status() board.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current().Status()
}

func (s *Session) Bot() bots.ChessBot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bot
}

func (s *Session) Move(from, to board.Square) bool {
	return s.MoveAs(from, to, board.Queen)
}

// MoveAs plays a move for the side to move. An illegal move changes nothing.
func (s *Session) MoveAs(from, to board.Square, promo board.Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.current().Clone()
	if !next.MovePieceAs(from, to, promo) {
		return false
	}
	s.push(next)
	return true
}

// push must be called with s.mu held.
func (s *Session) push(next *board.Board) {
	s.history = append(s.history[:s.cursor+1], next)
	s.cursor++
	s.positionChanged()
}

// positionChanged invalidates any result or running search for the old
// position. Must be called with s.mu held.
func (s *Session) positionChanged() {
	s.gen++
	s.hasResult = false
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor == 0 {
		return false
	}
	s.cursor--
	s.positionChanged()
	return true
}

func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor+1 >= len(s.history) {
		return false
	}
	s.cursor++
	s.positionChanged()
	return true
}

// History lists the FEN of every position up to the current one.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, s.cursor+1)
	for _, b := range s.history[:s.cursor+1] {
		out = append(out, b.FEN())
	}
	return out
}

// StartSearch stops and joins any running search, then searches the current
// position in the background.
func (s *Session) StartSearch() {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bot == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.hasResult = false
	go s.search(ctx, done, s.bot, s.current().Clone(), s.depth, s.gen)
}

func (s *Session) search(ctx context.Context, done chan struct{}, bot bots.ChessBot, snap *board.Board, depth int, gen uint64) {
	defer close(done)
	res := bot.Search(ctx, snap, depth)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancelled := ctx.Err() != nil
	if s.done == done {
		s.cancel()
		s.cancel, s.done = nil, nil
	}
	if cancelled || gen != s.gen {
		return
	}
	s.result, s.resultGen, s.hasResult = res, gen, true
	s.last, s.hasLast = res, true
	s.logger.Printf("%s: %s (%.2f)", bot.Name(), res.BestMove, res.Score)
}

// Stop cancels the running search and waits for it to exit.
func (s *Session) Stop() {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.stop()
}

func (s *Session) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the running search, if any, has finished.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Session) Thinking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// Result returns the finished search for the current position, if any.
func (s *Session) Result() (bots.SearchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasResult || s.resultGen != s.gen {
		return bots.NoResult(), false
	}
	return s.result, true
}

// LastResult is the most recent published search, even once applied or
// outdated. The UI shows its score and candidate moves.
func (s *Session) LastResult() (bots.SearchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

// ApplyResult plays the finished search's move. It reports false when there
// is no result or the bot found no move.
func (s *Session) ApplyResult() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasResult || s.resultGen != s.gen {
		return false
	}
	s.hasResult = false
	m := s.result.BestMove
	if !m.Valid() {
		s.logger.Printf("%s found no move", s.bot.Name())
		return false
	}
	next := s.current().Clone()
	if !next.MovePiece(m.From, m.To) {
		s.logger.Printf("%s suggested %s, rejected", s.bot.Name(), m)
		return false
	}
	s.push(next)
	return true
}

// SetBot replaces the strategy after joining any running search.
func (s *Session) SetBot(bot bots.ChessBot) {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.stop()
	s.mu.Lock()
	s.bot = bot
	s.hasResult = false
	s.mu.Unlock()
}
