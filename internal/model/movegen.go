package model

import "fmt"

var (
	knightDirs = []Square{{Row: -2, Col: -1}, {Row: -2, Col: 1}, {Row: 2, Col: -1}, {Row: 2, Col: 1}, {Row: -1, Col: -2}, {Row: -1, Col: 2}, {Row: 1, Col: -2}, {Row: 1, Col: 2}}
	rookDirs   = []Square{{Row: 1, Col: 0}, {Row: -1, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: -1}}
	bishopDirs = []Square{{Row: 1, Col: 1}, {Row: -1, Col: -1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}}
	queenDirs  = append(append([]Square{}, rookDirs...), bishopDirs...)
)

// ValidMoves returns the pseudo-legal destinations of piece p standing on
// from. A nil piece yields no moves. last may be nil, in which case en passant
// is never offered. Moves that leave the mover's own king attacked are not
// filtered out; see LegalMoves.
func ValidMoves(b *Board, from Square, p *Piece, last *LastMove) ([]Move, error) {
	if p == nil {
		return []Move{}, nil
	}
	if !p.Type.Valid() || !p.Color.Valid() {
		return nil, fmt.Errorf("%w: %q %q", ErrInvalidPiece, p.Color, p.Type)
	}
	if !from.OnBoard() {
		return nil, fmt.Errorf("%w: %s", ErrOffBoard, from)
	}
	if occupant := b.At(from); occupant == nil || *occupant != *p {
		return nil, fmt.Errorf("%w: %s on %s", ErrPieceMismatch, p, from)
	}
	return pseudoMoves(b, from, *p, last), nil
}

func pseudoMoves(b *Board, from Square, p Piece, last *LastMove) []Move {
	switch p.Type {
	case Pawn:
		return pawnMoves(b, from, p, last)
	case Knight:
		return stepMoves(b, from, p, knightDirs)
	case Bishop:
		return slideMoves(b, from, p, bishopDirs)
	case Rook:
		return slideMoves(b, from, p, rookDirs)
	case Queen:
		return slideMoves(b, from, p, queenDirs)
	case King:
		return stepMoves(b, from, p, queenDirs)
	default:
		return []Move{}
	}
}

// stepMoves covers pieces that jump a single offset: knight and king.
func stepMoves(b *Board, from Square, p Piece, dirs []Square) []Move {
	moves := []Move{}
	for _, dir := range dirs {
		target := from.offset(dir.Row, dir.Col)
		if !target.OnBoard() {
			continue
		}
		if occupant := b.At(target); occupant == nil || occupant.Color != p.Color {
			moves = append(moves, Move{To: target})
		}
	}
	return moves
}

func slideMoves(b *Board, from Square, p Piece, dirs []Square) []Move {
	moves := []Move{}
	for _, dir := range dirs {
		target := from.offset(dir.Row, dir.Col)
		for target.OnBoard() {
			occupant := b.At(target)
			if occupant == nil {
				moves = append(moves, Move{To: target})
			} else if occupant.Color != p.Color {
				moves = append(moves, Move{To: target})
				break
			} else {
				break
			}
			target = target.offset(dir.Row, dir.Col)
		}
	}
	return moves
}

func pawnForward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

func pawnStartRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

func promotionRow(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

func pawnMoves(b *Board, from Square, p Piece, last *LastMove) []Move {
	moves := []Move{}
	forward := pawnForward(p.Color)
	ahead := from.offset(forward, 0)

	if ahead.OnBoard() {
		// Check move forward 1, then 2 from the start rank
		if b.At(ahead) == nil {
			moves = append(moves, Move{To: ahead})
			if from.Row == pawnStartRow(p.Color) {
				double := from.offset(2*forward, 0)
				if double.OnBoard() && b.At(double) == nil {
					moves = append(moves, Move{To: double})
				}
			}
		}
		// Check capture left, then right
		for _, side := range []int{-1, 1} {
			target := from.offset(forward, side)
			if !target.OnBoard() {
				continue
			}
			if occupant := b.At(target); occupant != nil && occupant.Color != p.Color {
				moves = append(moves, Move{To: target})
			}
		}
	}

	// Check en passant
	if last.isDoublePawnPush() && from.Row == last.To.Row && abs(from.Col-last.To.Col) == 1 {
		target := Square{Row: from.Row + forward, Col: last.To.Col}
		if target.OnBoard() {
			captured := last.To
			moves = append(moves, Move{To: target, IsEnPassant: true, CapturedPawn: &captured})
		}
	}

	farRow := promotionRow(p.Color)
	for i := range moves {
		moves[i].IsPromotion = moves[i].To.Row == farRow
	}
	return moves
}

// LegalMoves is ValidMoves with every candidate that leaves the mover's own
// king attacked removed. When the mover has no king on the board nothing is
// filtered.
func LegalMoves(b *Board, from Square, p *Piece, last *LastMove) ([]Move, error) {
	moves, err := ValidMoves(b, from, p, last)
	if err != nil || len(moves) == 0 {
		return moves, err
	}
	legal := []Move{}
	for _, move := range moves {
		next, _ := b.Apply(from, move)
		king, ok := next.findKing(p.Color)
		if !ok {
			legal = append(legal, move)
			continue
		}
		if !squareAttacked(next, king, p.Color.Opponent()) {
			legal = append(legal, move)
		}
	}
	return legal, nil
}
