package model

import "fmt"

type GameStatus string

const (
	StatusActive    GameStatus = "active"
	StatusCheckmate GameStatus = "checkmate"
	StatusStalemate GameStatus = "stalemate"
)

func (s GameStatus) Terminal() bool {
	return s == StatusCheckmate || s == StatusStalemate
}

// moveFunc generates candidate moves for one piece.
type moveFunc func(b *Board, from Square, p *Piece, last *LastMove) ([]Move, error)

// Classify reports whether side has any move at all and, if it has none,
// whether its king is attacked. Moves are generated pseudo-legally, so a side
// whose only moves walk into check is still active.
func Classify(b *Board, side Color) (GameStatus, error) {
	return classify(b, side, ValidMoves)
}

// ClassifyStrict is Classify using LegalMoves, so moves that expose the
// mover's king do not count.
func ClassifyStrict(b *Board, side Color) (GameStatus, error) {
	return classify(b, side, LegalMoves)
}

func classify(b *Board, side Color, gen moveFunc) (GameStatus, error) {
	if !side.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, side)
	}
	var king *Square
	hasMoves := false
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			piece := b[row][col]
			if piece == nil || piece.Color != side {
				continue
			}
			sq := Square{Row: row, Col: col}
			if piece.Type == King {
				king = &sq
			}
			if hasMoves {
				continue
			}
			moves, err := gen(b, sq, piece, nil)
			if err != nil {
				return "", err
			}
			hasMoves = len(moves) > 0
		}
	}
	if king == nil {
		return "", fmt.Errorf("%w: %s", ErrNoKing, side)
	}
	if hasMoves {
		return StatusActive, nil
	}
	if squareAttacked(b, *king, side.Opponent()) {
		return StatusCheckmate, nil
	}
	return StatusStalemate, nil
}

// IsKingInCheck reports whether any piece of the color opposite to c has a
// candidate move landing on sq.
func IsKingInCheck(b *Board, sq Square, c Color) (bool, error) {
	if !sq.OnBoard() {
		return false, fmt.Errorf("%w: %s", ErrOffBoard, sq)
	}
	if !c.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidColor, c)
	}
	return squareAttacked(b, sq, c.Opponent()), nil
}

// InCheck locates the king of color c and reports whether it is attacked.
func InCheck(b *Board, c Color) (bool, error) {
	king, ok := b.findKing(c)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNoKing, c)
	}
	return IsKingInCheck(b, king, c)
}

// squareAttacked reuses the move generator as the attack primitive: a square
// is attacked if any attacker piece could move onto it.
func squareAttacked(b *Board, sq Square, attacker Color) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			piece := b[row][col]
			if piece == nil || piece.Color != attacker {
				continue
			}
			for _, move := range pseudoMoves(b, Square{Row: row, Col: col}, *piece, nil) {
				if move.To == sq {
					return true
				}
			}
		}
	}
	return false
}
