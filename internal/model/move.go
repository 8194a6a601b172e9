package model

// Move is a candidate destination produced by the move generator.
type Move struct {
	To           Square  `json:"to"`
	IsPromotion  bool    `json:"isPromotion"`
	IsEnPassant  bool    `json:"isEnPassant"`
	CapturedPawn *Square `json:"capturedPawn,omitempty"`
}

// LastMove is the immediately preceding move, needed for en passant.
type LastMove struct {
	From  Square `json:"from"`
	To    Square `json:"to"`
	Piece Piece  `json:"piece"`
}

func (l *LastMove) isDoublePawnPush() bool {
	if l == nil || l.Piece.Type != Pawn {
		return false
	}
	return abs(l.From.Row-l.To.Row) == 2
}

// Ply is one played move as recorded in the game history.
type Ply struct {
	Piece         Piece      `json:"piece"`
	From          Square     `json:"from"`
	To            Square     `json:"to"`
	CapturedPiece *Piece     `json:"capturedPiece"`
	Promotion     PieceType  `json:"promotion,omitempty"`
	EnPassant     bool       `json:"enPassant"`
	Notation      string     `json:"notation"`
	Board         *Board     `json:"board"`
	NextPlayer    Color      `json:"currentPlayer"`
	IsCheck       bool       `json:"isCheck"`
	IsCheckmate   bool       `json:"isCheckmate"`
	Status        GameStatus `json:"status"`
}

// WSMove is a move request from a client.
type WSMove struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
