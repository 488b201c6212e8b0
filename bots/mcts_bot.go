package bots

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"chessgo/board"
)

const (
	DefaultIterations   = 100
	DefaultExploration  = 1.414
	DefaultRolloutPlies = 10
	DefaultTopN         = 3
)

// MCTSBot is a Monte-Carlo tree search with UCT selection and random
// rollouts. The depth argument of Search is ignored; the budget is
// Iterations.
type MCTSBot struct {
	Iterations   int
	Exploration  float64
	RolloutPlies int
	TopN         int
	// Seed makes every Search reproducible when non-zero.
	Seed      int64
	Evaluator PositionEvaluator
}

func NewMCTSBot(iterations int, seed int64) *MCTSBot {
	return &MCTSBot{
		Iterations:   iterations,
		Exploration:  DefaultExploration,
		RolloutPlies: DefaultRolloutPlies,
		TopN:         DefaultTopN,
		Seed:         seed,
		Evaluator:    DefaultEvaluator{},
	}
}

func (b *MCTSBot) Name() string {
	return fmt.Sprintf("MCTS Bot (%d playouts)", b.Iterations)
}

// mctsNode lives in a tree arena; parent and children are arena indices.
type mctsNode struct {
	pos      *board.Board
	move     board.Move
	parent   int
	children []int
	visits   int
	total    float64
	terminal bool
}

func (n *mctsNode) mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.total / float64(n.visits)
}

type mctsTree struct {
	nodes []mctsNode
	rng   *rand.Rand
	eval  PositionEvaluator
	c     float64
	plies int
}

func (b *MCTSBot) Search(ctx context.Context, pos *board.Board, depth int) SearchResult {
	if pos == nil {
		return NoResult()
	}
	t := b.newTree(pos)
	root := &t.nodes[0]
	if root.terminal {
		return NoResult()
	}
	t.expand(0)

	for i := 0; i < b.Iterations; i++ {
		if ctx != nil && ctx.Err() != nil {
			break
		}
		leaf := t.selectLeaf()
		if t.nodes[leaf].visits > 0 && !t.nodes[leaf].terminal && len(t.nodes[leaf].children) == 0 {
			t.expand(leaf)
			kids := t.nodes[leaf].children
			if len(kids) > 0 {
				leaf = kids[t.rng.Intn(len(kids))]
			}
		}
		t.backpropagate(leaf, t.rollout(t.nodes[leaf].pos))
	}
	return sanitize(pos, t.result(b.topN()))
}

func (b *MCTSBot) newTree(pos *board.Board) *mctsTree {
	seed := b.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	t := &mctsTree{
		rng:   rand.New(rand.NewSource(seed)),
		eval:  b.Evaluator,
		c:     b.Exploration,
		plies: b.RolloutPlies,
	}
	if t.eval == nil {
		t.eval = DefaultEvaluator{}
	}
	if t.c <= 0 {
		t.c = DefaultExploration
	}
	if t.plies < 0 {
		t.plies = DefaultRolloutPlies
	}
	root := pos.Clone()
	t.nodes = append(t.nodes, mctsNode{pos: root, move: board.NoMove, parent: -1, terminal: root.Terminal()})
	return t
}

func (b *MCTSBot) topN() int {
	if b.TopN <= 0 {
		return DefaultTopN
	}
	return b.TopN
}

func (t *mctsTree) expand(idx int) {
	pos := t.nodes[idx].pos
	for _, m := range pos.LegalMoves(pos.Turn()) {
		child := pos.Clone()
		if !child.MovePiece(m.From, m.To) {
			continue
		}
		t.nodes = append(t.nodes, mctsNode{pos: child, move: m, parent: idx, terminal: child.Terminal()})
		t.nodes[idx].children = append(t.nodes[idx].children, len(t.nodes)-1)
	}
}

// selectLeaf descends by UCT. The first unvisited child wins outright.
func (t *mctsTree) selectLeaf() int {
	idx := 0
	for len(t.nodes[idx].children) > 0 {
		parent := &t.nodes[idx]
		best, bestScore := -1, math.Inf(-1)
		logN := math.Log(float64(parent.visits))
		for _, ci := range parent.children {
			n := &t.nodes[ci]
			if n.visits == 0 {
				best = ci
				break
			}
			uct := n.mean() + t.c*math.Sqrt(logN/float64(n.visits))
			if math.IsNaN(uct) {
				uct = n.mean()
			}
			if uct > bestScore {
				best, bestScore = ci, uct
			}
		}
		idx = best
	}
	return idx
}

// rollout plays random moves on a copy and returns the White-positive
// evaluation of where it stops.
func (t *mctsTree) rollout(pos *board.Board) float64 {
	sim := pos.Clone()
	for ply := 0; ply < t.plies; ply++ {
		if sim.HalfmoveClock() >= 100 {
			break
		}
		moves := sim.LegalMoves(sim.Turn())
		if len(moves) == 0 {
			break
		}
		m := moves[t.rng.Intn(len(moves))]
		sim.MovePiece(m.From, m.To)
	}
	return finite(t.eval.Evaluate(sim))
}

// backpropagate credits each node from the view of the player who moved
// into it, flipping sign on the way up.
func (t *mctsTree) backpropagate(idx int, white float64) {
	v := white
	if t.nodes[idx].pos.Turn() == board.White {
		v = -white
	}
	for idx >= 0 {
		n := &t.nodes[idx]
		n.visits++
		n.total += v
		v = -v
		idx = n.parent
	}
}

func (t *mctsTree) result(topN int) SearchResult {
	var visited []*mctsNode
	for _, ci := range t.nodes[0].children {
		if t.nodes[ci].visits > 0 {
			visited = append(visited, &t.nodes[ci])
		}
	}
	if len(visited) == 0 {
		kids := t.nodes[0].children
		if len(kids) == 0 {
			return NoResult()
		}
		m := t.nodes[kids[0]].move
		return SearchResult{BestMove: m, TopMoves: []board.Move{m}}
	}
	sort.SliceStable(visited, func(i, j int) bool { return visited[i].mean() > visited[j].mean() })
	res := SearchResult{Score: finite(visited[0].mean()), BestMove: visited[0].move}
	for i, n := range visited {
		if i >= topN {
			break
		}
		res.TopMoves = append(res.TopMoves, n.move)
	}
	return res
}
