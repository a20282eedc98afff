package service

import "errors"

var (
	ErrAlreadyQueued   = errors.New("already in queue")
	ErrAlreadyInGame   = errors.New("already in a game")
	ErrInvalidUsername = errors.New("invalid username")
	ErrNotInGame       = errors.New("not in a game")
	ErrGameStarted     = errors.New("game already started")

	ErrInvalidDuelChar  = errors.New("duel character must be a single Chinese character")
	ErrInvalidDuelGuess = errors.New("duel guess must be human or ai")
)
