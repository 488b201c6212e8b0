// Package config reads settings from flags, falling back to CHESSGO_*
// environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"chessgo/board"
	"chessgo/bots"
)

var (
	ErrUnknownBot = errors.New("unknown bot")
	ErrBadColor   = errors.New("player must be white or black")
	ErrBadValue   = errors.New("invalid value")
)

// Bot kinds accepted by -bot.
const (
	BotMinimax = "minimax"
	BotMCTS    = "mcts"
	BotEngine  = "engine"
	BotRandom  = "random"
	BotNewborn = "newborn"
	BotAuto    = "auto"
)

// BotKinds is the order the UI cycles through.
var BotKinds = []string{BotNewborn, BotRandom, BotMinimax, BotMCTS, BotEngine}

// autoEngineElo is the strength from which auto hands play to the engine.
const autoEngineElo = 1500

type Config struct {
	Bot           string
	Depth         int
	ThinkTime     time.Duration
	Iterations    int
	Seed          int64
	EnginePath    string
	Elo           int
	MoveTime      time.Duration
	EngineTimeout time.Duration
	Player        board.Color
	FEN           string
	Quiet         bool
}

// Load registers the flags on fs and parses args.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	var player string
	fs.StringVar(&cfg.Bot, "bot", getenv("CHESSGO_BOT", BotMinimax), "strategy: minimax, mcts, engine, random, newborn or auto")
	fs.IntVar(&cfg.Depth, "depth", getenvInt("CHESSGO_DEPTH", 3), "minimax search depth")
	fs.DurationVar(&cfg.ThinkTime, "think", getenvDuration("CHESSGO_THINK", 5*time.Second), "minimax time limit (0 = none)")
	fs.IntVar(&cfg.Iterations, "iterations", getenvInt("CHESSGO_ITERATIONS", bots.DefaultIterations), "MCTS playouts per move")
	fs.Int64Var(&cfg.Seed, "seed", int64(getenvInt("CHESSGO_SEED", 0)), "random seed for mcts and random (0 = time based)")
	fs.StringVar(&cfg.EnginePath, "engine", getenv("CHESSGO_ENGINE", "stockfish"), "UCI engine binary")
	fs.IntVar(&cfg.Elo, "elo", getenvInt("CHESSGO_ELO", 1500), "engine strength (UCI_Elo)")
	fs.DurationVar(&cfg.MoveTime, "movetime", getenvDuration("CHESSGO_MOVETIME", 0), "engine time per move (0 = fixed depth)")
	fs.DurationVar(&cfg.EngineTimeout, "engine-timeout", getenvDuration("CHESSGO_ENGINE_TIMEOUT", bots.DefaultEngineTimeout), "engine reply deadline")
	fs.StringVar(&player, "player", getenv("CHESSGO_PLAYER", "white"), "human side: white or black")
	fs.StringVar(&cfg.FEN, "fen", getenv("CHESSGO_FEN", board.StartFEN), "starting position")
	fs.BoolVar(&cfg.Quiet, "quiet", getenb("CHESSGO_QUIET", false), "disable logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	switch strings.ToLower(player) {
	case "white", "w":
		cfg.Player = board.White
	case "black", "b":
		cfg.Player = board.Black
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrBadColor, player)
	}
	cfg.Bot = strings.ToLower(cfg.Bot)
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Bot {
	case BotMinimax, BotMCTS, BotEngine, BotRandom, BotNewborn, BotAuto:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBot, c.Bot)
	}
	if c.Depth < 0 {
		return fmt.Errorf("%w: depth %d", ErrBadValue, c.Depth)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations %d", ErrBadValue, c.Iterations)
	}
	if _, err := board.ParseFEN(c.FEN); err != nil {
		return err
	}
	return nil
}

// Board parses the configured starting position.
func (c Config) Board() (*board.Board, error) {
	return board.ParseFEN(c.FEN)
}

func (c Config) Logger() *log.Logger {
	if c.Quiet {
		return log.New(io.Discard, "", 0)
	}
	return log.Default()
}

// BuildBot returns the configured strategy and a func releasing what it
// holds, such as an engine process.
func BuildBot(c Config, kind string) (bots.ChessBot, func() error, error) {
	noop := func() error { return nil }
	switch kind {
	case BotMinimax:
		return bots.NewMinimaxBot(c.Depth, c.ThinkTime), noop, nil
	case BotMCTS:
		return bots.NewMCTSBot(c.Iterations, c.Seed), noop, nil
	case BotRandom:
		return bots.NewRandomBot(c.Seed), noop, nil
	case BotNewborn:
		return bots.NewNewbornBot(), noop, nil
	case BotEngine:
		eng := bots.NewEngineBot(c.EnginePath, c.Elo, bots.NewMCTSBot(c.Iterations, c.Seed))
		eng.MoveTime = c.MoveTime
		eng.Timeout = c.EngineTimeout
		if c.Depth > 0 {
			eng.Depth = c.Depth
		}
		eng.Logger = c.Logger()
		return eng, eng.Close, nil
	case BotAuto:
		if c.Elo >= autoEngineElo && c.EnginePath != "" {
			return BuildBot(c, BotEngine)
		}
		return BuildBot(c, BotMCTS)
	}
	return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBot, kind)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}
