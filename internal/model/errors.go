package model

import "errors"

var (
	ErrOffBoard      = errors.New("square is off the board")
	ErrPieceMismatch = errors.New("piece does not occupy square")
	ErrNoKing        = errors.New("no king of that color on the board")
	ErrInvalidColor  = errors.New("invalid color")
	ErrInvalidPiece  = errors.New("invalid piece")

	ErrNotYourTurn    = errors.New("not your turn")
	ErrNoPiece        = errors.New("no piece at from square")
	ErrIllegalMove    = errors.New("invalid move, not legal")
	ErrGameOver       = errors.New("game is over")
	ErrGameNotStarted = errors.New("game has not started")
	ErrGameFull       = errors.New("game is full")
	ErrNotAuthorized  = errors.New("not authorized to play in this game")

	ErrDuplicateConnection = errors.New("connection already exists")
)
