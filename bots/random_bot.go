package bots

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"chessgo/board"
)

// RandomBot plays a uniformly random legal move.
type RandomBot struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomBot(seed int64) *RandomBot {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomBot{rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBot) Search(ctx context.Context, pos *board.Board, depth int) SearchResult {
	if pos == nil {
		return NoResult()
	}
	moves := pos.LegalMoves(pos.Turn())
	if len(moves) == 0 {
		return NoResult()
	}
	b.mu.Lock()
	m := moves[b.rng.Intn(len(moves))]
	b.mu.Unlock()
	return SearchResult{BestMove: m, TopMoves: []board.Move{m}}
}

func (b *RandomBot) Name() string {
	return "Random Bot"
}
