package bot

import "errors"

// ErrNoMoves is returned when a strategy is asked to play without a legal move.
var ErrNoMoves = errors.New("bot: no legal moves")

// ErrClosed is returned by strategies whose resources were released.
var ErrClosed = errors.New("bot: strategy closed")
