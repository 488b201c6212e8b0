package board

import "errors"

var (
	ErrInvalidFEN = errors.New("invalid FEN")
	ErrKingCount  = errors.New("more than one king of a color")
)
