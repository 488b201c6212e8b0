// Package render draws board diagrams.
package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"chessgo/board"
)

const (
	lightSquare = "fill:#f0d9b5"
	darkSquare  = "fill:#b58863"
	highlight   = "fill:#cdd26a;fill-opacity:0.8"
)

type Options struct {
	// SquareSize in pixels; 0 means 48.
	SquareSize int
	// Flip draws the board from Black's side.
	Flip bool
	// Highlight marks the from and to squares. The zero Move (a1a1) and
	// NoMove draw nothing.
	Highlight board.Move
	// Coordinates prints file letters and rank digits along the edges.
	Coordinates bool
}

var glyphs = map[board.Piece]string{
	board.WhiteKing: "♔", board.WhiteQueen: "♕", board.WhiteRook: "♖",
	board.WhiteBishop: "♗", board.WhiteKnight: "♘", board.WhitePawn: "♙",
	board.BlackKing: "♚", board.BlackQueen: "♛", board.BlackRook: "♜",
	board.BlackBishop: "♝", board.BlackKnight: "♞", board.BlackPawn: "♟",
}

// WriteSVG writes an 8x8 diagram of b to w.
func WriteSVG(w io.Writer, b *board.Board, opt Options) {
	size := opt.SquareSize
	if size <= 0 {
		size = 48
	}
	margin := 0
	if opt.Coordinates {
		margin = size / 2
	}
	canvas := svg.New(w)
	canvas.Start(8*size+margin, 8*size+margin)
	canvas.Title(b.FEN())
	hl := opt.Highlight.Valid() && opt.Highlight.From != opt.Highlight.To

	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, rank)
			x, y := screenPos(sq, size, opt.Flip)
			x += margin

			style := lightSquare
			if (file+rank)%2 == 0 {
				style = darkSquare
			}
			canvas.Rect(x, y, size, size, style)
			if hl && (sq == opt.Highlight.From || sq == opt.Highlight.To) {
				canvas.Rect(x, y, size, size, highlight)
			}
			if p := b.PieceAt(sq); p != board.NoPiece {
				canvas.Text(x+size/2, y+size*4/5, glyphs[p],
					fmt.Sprintf("font-size:%dpx;text-anchor:middle", size*4/5))
			}
		}
	}

	if opt.Coordinates {
		label := fmt.Sprintf("font-size:%dpx;text-anchor:middle;fill:#555", size/3)
		for i := 0; i < 8; i++ {
			x, _ := screenPos(board.NewSquare(i, 0), size, opt.Flip)
			canvas.Text(x+margin+size/2, 8*size+margin*3/4, string(rune('a'+i)), label)
			_, y := screenPos(board.NewSquare(0, i), size, opt.Flip)
			canvas.Text(margin/2, y+size/2+size/8, string(rune('1'+i)), label)
		}
	}
	canvas.End()
}

func screenPos(sq board.Square, size int, flip bool) (int, int) {
	col, row := sq.File(), 7-sq.Rank()
	if flip {
		col, row = 7-col, 7-row
	}
	return col * size, row * size
}
