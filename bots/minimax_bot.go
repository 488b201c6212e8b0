package bots

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"chessgo/board"
)

// DefaultTopCandidates is how many ordered moves are searched per node.
const DefaultTopCandidates = 3

// MinimaxBot is a negamax alpha-beta search that only explores the best few
// moves of each node according to a one-ply static evaluation.
type MinimaxBot struct {
	// Depth is used when Search is called with a negative depth.
	Depth         int
	TimeLimit     time.Duration
	TopCandidates int
	Evaluator     PositionEvaluator
}

func NewMinimaxBot(depth int, timeLimit time.Duration) *MinimaxBot {
	return &MinimaxBot{
		Depth:         depth,
		TimeLimit:     timeLimit,
		TopCandidates: DefaultTopCandidates,
		Evaluator:     DefaultEvaluator{},
	}
}

func (b *MinimaxBot) Name() string {
	return fmt.Sprintf("Minimax Bot (depth %d)", b.Depth)
}

func (b *MinimaxBot) Search(ctx context.Context, pos *board.Board, depth int) SearchResult {
	if pos == nil {
		return NoResult()
	}
	if depth < 0 {
		depth = b.Depth
	}
	s := &minimaxSearch{
		ctx:  ctx,
		eval: b.Evaluator,
		top:  b.TopCandidates,
	}
	if s.eval == nil {
		s.eval = DefaultEvaluator{}
	}
	if s.top <= 0 {
		s.top = DefaultTopCandidates
	}
	if b.TimeLimit > 0 {
		s.deadline = time.Now().Add(b.TimeLimit)
	}

	moves := pos.LegalMoves(pos.Turn())
	if depth == 0 || len(moves) == 0 || pos.HalfmoveClock() >= 100 {
		res := NoResult()
		res.Score = Relative(s.eval, pos)
		return res
	}

	cands := s.orderParallel(pos, moves)
	line := s.searchCandidates(pos, cands, depth, math.Inf(-1), math.Inf(1))
	if !line.move.Valid() {
		// Stopped before the first child finished: fall back on ordering.
		line = scoredLine{score: cands[0].score, move: cands[0].move, top: []board.Move{cands[0].move}}
	}
	return sanitize(pos, SearchResult{Score: line.score, BestMove: line.move, TopMoves: line.top})
}

type minimaxSearch struct {
	ctx      context.Context
	eval     PositionEvaluator
	top      int
	deadline time.Time
}

type scoredMove struct {
	move  board.Move
	score float64
}

type scoredLine struct {
	score float64
	move  board.Move
	top   []board.Move
}

func (s *minimaxSearch) stopped() bool {
	if s.ctx != nil && s.ctx.Err() != nil {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

func (s *minimaxSearch) negamax(pos *board.Board, depth int, alpha, beta float64) scoredLine {
	if depth == 0 || s.stopped() || pos.HalfmoveClock() >= 100 {
		return scoredLine{score: Relative(s.eval, pos), move: board.NoMove}
	}
	moves := pos.LegalMoves(pos.Turn())
	if len(moves) == 0 {
		return scoredLine{score: Relative(s.eval, pos), move: board.NoMove}
	}
	return s.searchCandidates(pos, s.order(pos, moves), depth, alpha, beta)
}

func (s *minimaxSearch) searchCandidates(pos *board.Board, cands []scoredMove, depth int, alpha, beta float64) scoredLine {
	best := scoredLine{score: math.Inf(-1), move: board.NoMove}
	for i, c := range cands {
		if i >= s.top {
			break
		}
		if i > 0 && s.stopped() {
			break
		}
		child := pos.Clone()
		if !child.MovePiece(c.move.From, c.move.To) {
			continue
		}
		score := -s.negamax(child, depth-1, -beta, -alpha).score
		if score > best.score {
			best.score = score
			best.move = c.move
		}
		best.top = append(best.top, c.move)
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	if !best.move.Valid() {
		best.score = Relative(s.eval, pos)
	}
	return best
}

// order sorts moves by the mover's one-ply evaluation, best first. Ties keep
// the board's canonical order.
func (s *minimaxSearch) order(pos *board.Board, moves []board.Move) []scoredMove {
	out := make([]scoredMove, len(moves))
	for i, m := range moves {
		out[i] = scoredMove{move: m, score: s.onePly(pos, m)}
	}
	sortScored(out)
	return out
}

// orderParallel is order for the root, one clone per goroutine.
func (s *minimaxSearch) orderParallel(pos *board.Board, moves []board.Move) []scoredMove {
	out := make([]scoredMove, len(moves))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			out[i] = scoredMove{move: m, score: s.onePly(pos, m)}
			return nil
		})
	}
	_ = g.Wait()
	sortScored(out)
	return out
}

func (s *minimaxSearch) onePly(pos *board.Board, m board.Move) float64 {
	child := pos.Clone()
	if !child.MovePiece(m.From, m.To) {
		return math.Inf(-1)
	}
	return -Relative(s.eval, child)
}

func sortScored(ms []scoredMove) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].score > ms[j].score })
}
