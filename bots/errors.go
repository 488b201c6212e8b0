package bots

import "errors"

var (
	ErrEngineUnavailable = errors.New("engine unavailable")
	ErrEngineTimeout     = errors.New("engine timed out")
	ErrIllegalEngineMove = errors.New("engine suggested an illegal move")
)
