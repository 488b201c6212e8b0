package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"chessgo/board"
	"chessgo/config"
	"chessgo/game"
)

// Размер глифа отладочного шрифта
const glyphSize = 16

var (
	screenWidth  int
	screenHeight int
	squareSize   int
)

var (
	lightColor     = color.RGBA{240, 217, 181, 255}
	darkColor      = color.RGBA{181, 136, 99, 255}
	selectColor    = color.RGBA{205, 210, 106, 200}
	whitePieceDisk = color.RGBA{250, 250, 250, 255}
	blackPieceDisk = color.RGBA{30, 30, 30, 255}
)

type Game struct {
	cfg          config.Config
	session      *game.Session
	closeBot     func() error
	botKind      int
	glyphs       map[board.Piece]*ebiten.Image
	selected     board.Square
	dragging     board.Piece
	dragX, dragY int
	playerColor  board.Color
	gameStarted  bool
	lastSearched string
	botStuck     bool
	boardOffsetX int
	boardOffsetY int
}

func NewGame(cfg config.Config) (*Game, error) {
	// Получаем размеры экрана
	screenWidth, screenHeight = ebiten.ScreenSizeInFullscreen()
	if screenWidth == 0 || screenHeight == 0 {
		screenWidth, screenHeight = 800, 880
	}

	// Вычисляем размер клетки (оставляем место для информации сверху)
	boardHeight := screenHeight - 80
	squareSize = boardHeight / 8
	if screenWidth/8 < squareSize {
		squareSize = screenWidth / 8
	}

	start, err := cfg.Board()
	if err != nil {
		return nil, err
	}
	g := &Game{
		cfg:          cfg,
		playerColor:  cfg.Player,
		selected:     board.NoSquare,
		boardOffsetX: (screenWidth - squareSize*8) / 2,
		boardOffsetY: (screenHeight - boardHeight) / 2,
	}
	for i, kind := range config.BotKinds {
		if kind == cfg.Bot {
			g.botKind = i
		}
	}
	bot, closeBot, err := config.BuildBot(cfg, cfg.Bot)
	if err != nil {
		return nil, err
	}
	g.closeBot = closeBot
	g.session = game.NewSession(start, bot, cfg.Depth, cfg.Logger())
	return g, nil
}

func (g *Game) Update() error {
	if !g.gameStarted {
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			g.startGame(g.playerColor)
		}
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			x, y := ebiten.CursorPosition()
			btnWidth := 200
			btnHeight := 60
			btnY := screenHeight/2 + 100

			if y > btnY && y < btnY+btnHeight {
				if x > screenWidth/2-btnWidth-20 && x < screenWidth/2-20 {
					g.startGame(board.White)
				} else if x > screenWidth/2+20 && x < screenWidth/2+20+btnWidth {
					g.startGame(board.Black)
				}
			}
		}
		return nil
	}

	g.handleKeys()

	if g.session.Status().Over() {
		return nil
	}
	if g.session.Turn() != g.playerColor {
		g.driveBot()
		return nil
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if sq, ok := g.squareAt(ebiten.CursorPosition()); ok {
			p := g.session.Board().PieceAt(sq)
			if p != board.NoPiece && p.Color() == g.playerColor {
				g.selected = sq
				g.dragging = p
			}
		}
	}
	if g.dragging != board.NoPiece {
		g.dragX, g.dragY = ebiten.CursorPosition()
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && g.dragging != board.NoPiece {
		if target, ok := g.squareAt(ebiten.CursorPosition()); ok {
			g.session.Move(g.selected, target)
		}
		g.selected = board.NoSquare
		g.dragging = board.NoPiece
	}
	return nil
}

// driveBot starts a search for a new position and plays the result once it
// has been published.
func (g *Game) driveBot() {
	fen := g.session.Board().FEN()
	if fen != g.lastSearched {
		g.lastSearched = fen
		g.botStuck = false
		g.session.StartSearch()
		return
	}
	if g.session.Thinking() {
		return
	}
	if _, ok := g.session.Result(); ok {
		g.botStuck = !g.session.ApplyResult()
	}
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.cycleBot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyU) {
		g.session.Stop()
		// Откатываем до хода игрока
		for g.session.Undo() && g.session.Turn() != g.playerColor {
		}
		g.lastSearched = ""
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.session.Stop()
		for g.session.Redo() && g.session.Turn() != g.playerColor {
		}
		g.lastSearched = ""
	}
}

func (g *Game) cycleBot() {
	g.botKind = (g.botKind + 1) % len(config.BotKinds)
	bot, closeBot, err := config.BuildBot(g.cfg, config.BotKinds[g.botKind])
	if err != nil {
		log.Printf("bot: %v", err)
		return
	}
	g.session.SetBot(bot)
	if err := g.closeBot(); err != nil {
		log.Printf("bot close: %v", err)
	}
	g.closeBot = closeBot
	g.lastSearched = ""
}

func (g *Game) startGame(c board.Color) {
	g.playerColor = c
	g.gameStarted = true
}

// squareAt maps a screen position to a square, honoring board orientation.
func (g *Game) squareAt(x, y int) (board.Square, bool) {
	x -= g.boardOffsetX
	y -= g.boardOffsetY
	if x < 0 || x >= squareSize*8 || y < 0 || y >= squareSize*8 {
		return board.NoSquare, false
	}
	file, rank := x/squareSize, 7-y/squareSize
	if g.playerColor == board.Black {
		file, rank = 7-file, 7-rank
	}
	return board.NewSquare(file, rank), true
}

func (g *Game) squareOrigin(sq board.Square) (float32, float32) {
	col, row := sq.File(), 7-sq.Rank()
	if g.playerColor == board.Black {
		col, row = 7-col, 7-row
	}
	return float32(col*squareSize + g.boardOffsetX), float32(row*squareSize + g.boardOffsetY)
}

func (g *Game) loadGlyphs() {
	g.glyphs = make(map[board.Piece]*ebiten.Image)
	for _, c := range []board.Color{board.White, board.Black} {
		for k := board.Pawn; k <= board.King; k++ {
			p := board.MakePiece(c, k)
			img := ebiten.NewImage(glyphSize, glyphSize)
			ebitenutil.DebugPrintAt(img, string(p.Letter()), 5, 0)
			g.glyphs[p] = img
		}
	}
}

func (g *Game) drawPiece(screen *ebiten.Image, p board.Piece, x, y float32) {
	r := float32(squareSize) * 0.4
	disk, ink := whitePieceDisk, color.Color(color.Black)
	if p.Color() == board.Black {
		disk, ink = blackPieceDisk, color.White
	}
	vector.DrawFilledCircle(screen, x+float32(squareSize)/2, y+float32(squareSize)/2, r, disk, true)

	op := &ebiten.DrawImageOptions{}
	scale := float64(squareSize) / float64(glyphSize) * 0.6
	op.GeoM.Scale(scale, scale)
	offset := (float64(squareSize) - glyphSize*scale) / 2
	op.GeoM.Translate(float64(x)+offset, float64(y)+offset)
	op.ColorScale.ScaleWithColor(ink)
	screen.DrawImage(g.glyphs[p], op)
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.glyphs == nil {
		g.loadGlyphs()
	}
	if !g.gameStarted {
		// Экран выбора цвета
		ebitenutil.DebugPrintAt(screen, "Chess in Go", screenWidth/2-40, screenHeight/2-50)
		ebitenutil.DebugPrintAt(screen, "Choose your side, or press Enter to play "+g.playerColor.String(), screenWidth/2-130, screenHeight/2)

		vector.DrawFilledRect(screen, float32(screenWidth/2-220), float32(screenHeight/2+100), 200, 60, color.RGBA{200, 200, 200, 255}, false)
		ebitenutil.DebugPrintAt(screen, "Play white", screenWidth/2-160, screenHeight/2+122)
		vector.DrawFilledRect(screen, float32(screenWidth/2+20), float32(screenHeight/2+100), 200, 60, color.RGBA{50, 50, 50, 255}, false)
		ebitenutil.DebugPrintAt(screen, "Play black", screenWidth/2+80, screenHeight/2+122)
		return
	}

	// Рисуем доску
	b := g.session.Board()
	for sq := board.A1; sq <= board.H8; sq++ {
		x, y := g.squareOrigin(sq)
		clr := lightColor
		if (sq.File()+sq.Rank())%2 == 0 {
			clr = darkColor
		}
		vector.DrawFilledRect(screen, x, y, float32(squareSize), float32(squareSize), clr, false)
		if sq == g.selected {
			vector.DrawFilledRect(screen, x, y, float32(squareSize), float32(squareSize), selectColor, false)
		}
		if p := b.PieceAt(sq); p != board.NoPiece && (g.dragging == board.NoPiece || sq != g.selected) {
			g.drawPiece(screen, p, x, y)
		}
	}

	// Рисуем перетаскиваемую фигуру
	if g.dragging != board.NoPiece {
		g.drawPiece(screen, g.dragging, float32(g.dragX-squareSize/2), float32(g.dragY-squareSize/2))
	}

	// Статус игры
	status := "Your move"
	switch {
	case b.Status().Over():
		status = "Game over: " + b.Status().String()
	case g.botStuck:
		status = "Bot could not find a move"
	case g.session.Thinking():
		status = "Bot is thinking..."
	case b.Turn() != g.playerColor:
		status = "Bot to move"
	case b.IsCheck():
		status = "Your move (check)"
	}
	ebitenutil.DebugPrintAt(screen, status, 20, 20)
	// Оценка и лучшие ходы последнего поиска
	if res, ok := g.session.LastResult(); ok {
		ebitenutil.DebugPrintAt(screen, res.String(), 20, 2)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Bot: %s   [B] next bot  [U] undo  [R] redo", g.session.Bot().Name()), screenWidth/2-120, 20)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	g, err := NewGame(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		g.session.Stop()
		if err := g.closeBot(); err != nil {
			log.Printf("bot close: %v", err)
		}
	}()
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("chessgo")
	ebiten.SetWindowResizable(true)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
