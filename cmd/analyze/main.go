// Command analyze prints the configured bot's choice for a position.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"chessgo/board"
	"chessgo/config"
	"chessgo/render"
)

func main() {
	svgPath := flag.String("svg", "", "write an SVG diagram of the position and best move")
	perft := flag.Int("perft", 0, "also print a perft divide to this depth")
	timeout := flag.Duration("timeout", time.Minute, "overall search deadline")
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	fatalIf(err, "config")
	log.SetFlags(0)
	log.SetOutput(cfg.Logger().Writer())

	b, err := cfg.Board()
	fatalIf(err, "position")

	bot, closeBot, err := config.BuildBot(cfg, cfg.Bot)
	fatalIf(err, "bot")
	defer closeBot()

	fmt.Println(b)
	fmt.Printf("fen:    %s\n", b.FEN())
	fmt.Printf("status: %s\n", b.Status())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	start := time.Now()
	res := bot.Search(ctx, b, cfg.Depth)
	elapsed := time.Since(start)

	fmt.Printf("bot:    %s\n", bot.Name())
	if res.HasMove() {
		fmt.Printf("best:   %s (%+.2f) in %s\n", res.BestMove, res.Score, elapsed.Round(time.Millisecond))
	} else {
		fmt.Println("best:   none")
	}
	top := make([]string, len(res.TopMoves))
	for i, m := range res.TopMoves {
		top[i] = m.String()
	}
	fmt.Printf("top:    %s\n", strings.Join(top, " "))

	if *perft > 0 {
		div := board.PerftDivide(b, *perft)
		moves := make([]board.Move, 0, len(div))
		var total uint64
		for m, n := range div {
			moves = append(moves, m)
			total += n
		}
		sort.Slice(moves, func(i, j int) bool { return moves[i].String() < moves[j].String() })
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, div[m])
		}
		fmt.Printf("perft(%d) = %d\n", *perft, total)
	}

	if *svgPath != "" {
		f, err := os.Create(*svgPath)
		fatalIf(err, "svg")
		render.WriteSVG(f, b, render.Options{
			Highlight:   res.BestMove,
			Flip:        b.Turn() == board.Black,
			Coordinates: true,
		})
		fatalIf(f.Close(), "svg")
	}
}

func fatalIf(err error, label string) {
	if err != nil {
		log.Fatalf("%s: %v", label, err)
	}
}
