package board

// Perft counts the leaf nodes of the legal move tree to the given depth.
// Promotions count once since the board always promotes to a queen.
func Perft(b *Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.LegalMoves(b.turn)
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		child := b.Clone()
		child.performMove(m.From, m.To, Queen)
		nodes += Perft(child, depth-1)
	}
	return nodes
}

// PerftDivide returns the per-root-move node counts.
func PerftDivide(b *Board, depth int) map[Move]uint64 {
	out := make(map[Move]uint64)
	if depth < 1 {
		return out
	}
	for _, m := range b.LegalMoves(b.turn) {
		child := b.Clone()
		child.performMove(m.From, m.To, Queen)
		out[m] = Perft(child, depth-1)
	}
	return out
}
