package model

// Board is indexed [row][col]; a nil entry is an empty square.
type Board [8][8]*Piece

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position. Every square holds its own
// *Piece so that no two pawns share storage.
func NewBoard() *Board {
	board := &Board{}
	for col := 0; col < 8; col++ {
		board[0][col] = &Piece{Type: backRank[col], Color: Black}
		board[1][col] = &Piece{Type: Pawn, Color: Black}
		board[6][col] = &Piece{Type: Pawn, Color: White}
		board[7][col] = &Piece{Type: backRank[col], Color: White}
	}
	return board
}

// At returns the piece on sq, or nil when the square is empty or off the board.
func (b *Board) At(sq Square) *Piece {
	if !sq.OnBoard() {
		return nil
	}
	return b[sq.Row][sq.Col]
}

// Place puts a fresh copy of p on sq. A nil p clears the square.
func (b *Board) Place(sq Square, p *Piece) {
	if p == nil {
		b[sq.Row][sq.Col] = nil
		return
	}
	piece := *p
	b[sq.Row][sq.Col] = &piece
}

// Clone returns a deep copy of b.
func (b *Board) Clone() *Board {
	clone := &Board{}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if b[row][col] != nil {
				piece := *b[row][col]
				clone[row][col] = &piece
			}
		}
	}
	return clone
}

// Count returns the number of pieces of color c, or of both colors when c is empty.
func (b *Board) Count(c Color) int {
	n := 0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if b[row][col] != nil && (c == "" || b[row][col].Color == c) {
				n++
			}
		}
	}
	return n
}

// findKing returns the square of the king of color c.
func (b *Board) findKing(c Color) (Square, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := b[row][col]; p != nil && p.Type == King && p.Color == c {
				return Square{Row: row, Col: col}, true
			}
		}
	}
	return Square{}, false
}

// Apply returns a copy of b with m played by the piece on from, and the piece
// it captured, if any. b itself is left untouched. A promoting pawn always
// becomes a queen.
func (b *Board) Apply(from Square, m Move) (*Board, *Piece) {
	next := b.Clone()
	piece := next.At(from)
	if piece == nil {
		return next, nil
	}
	captured := next.At(m.To)
	if piece.Type == Pawn && m.IsEnPassant && m.CapturedPawn != nil {
		captured = next.At(*m.CapturedPawn)
		next[m.CapturedPawn.Row][m.CapturedPawn.Col] = nil
	}
	next[from.Row][from.Col] = nil
	next[m.To.Row][m.To.Col] = piece
	if piece.Type == Pawn && m.IsPromotion {
		next[m.To.Row][m.To.Col] = &Piece{Type: Queen, Color: piece.Color}
	}
	return next, captured
}
