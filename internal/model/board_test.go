package model

import (
	"testing"

	"github.com/benbeisheim/chess-backend/internal/testutil"
)

// boardWith places copies of the given pieces on an otherwise empty board.
func boardWith(pieces map[Square]Piece) *Board {
	b := &Board{}
	for sq, p := range pieces {
		piece := p
		b.Place(sq, &piece)
	}
	return b
}

func sq(row, col int) Square {
	return Square{Row: row, Col: col}
}

func TestNewBoardLayout(t *testing.T) {
	b := NewBoard()

	want := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for col := 0; col < 8; col++ {
		testutil.AssertEqual(t, *b[0][col], Piece{Type: want[col], Color: Black}, "row 0 col %d", col)
		testutil.AssertEqual(t, *b[1][col], Piece{Type: Pawn, Color: Black}, "row 1 col %d", col)
		testutil.AssertEqual(t, *b[6][col], Piece{Type: Pawn, Color: White}, "row 6 col %d", col)
		testutil.AssertEqual(t, *b[7][col], Piece{Type: want[col], Color: White}, "row 7 col %d", col)
	}
	for row := 2; row <= 5; row++ {
		for col := 0; col < 8; col++ {
			if b[row][col] != nil {
				t.Errorf("square (%d,%d) = %v, want empty", row, col, b[row][col])
			}
		}
	}

	testutil.AssertEqual(t, b.Count(""), 32)
	testutil.AssertEqual(t, b.Count(White), 16)
	testutil.AssertEqual(t, b.Count(Black), 16)
}

func TestNewBoardPawnsAreIndependent(t *testing.T) {
	b := NewBoard()

	for _, row := range []int{1, 6} {
		for col := 1; col < 8; col++ {
			if b[row][col] == b[row][0] {
				t.Fatalf("pawn at (%d,%d) shares storage with (%d,0)", row, col, row)
			}
		}
	}

	b[6][0].Type = Queen
	if b[6][1].Type != Pawn {
		t.Fatalf("changing one pawn changed its neighbour to %s", b[6][1].Type)
	}
	if NewBoard()[6][0].Type != Pawn {
		t.Fatalf("boards share pieces between calls")
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := NewBoard()
	clone := b.Clone()

	testutil.AssertEqual(t, clone, b)
	clone[7][4].Type = Pawn
	clone[0][0] = nil
	if b[7][4].Type != King || b[0][0] == nil {
		t.Fatalf("mutating the clone changed the original")
	}
}

func TestAtOffBoard(t *testing.T) {
	b := NewBoard()
	if p := b.At(sq(-1, 0)); p != nil {
		t.Fatalf("At(-1,0) = %v, want nil", p)
	}
	if p := b.At(sq(0, 8)); p != nil {
		t.Fatalf("At(0,8) = %v, want nil", p)
	}
}

func TestApply(t *testing.T) {
	t.Run("quiet move", func(t *testing.T) {
		b := NewBoard()
		next, captured := b.Apply(sq(6, 4), Move{To: sq(4, 4)})
		if captured != nil {
			t.Fatalf("captured = %v, want nil", captured)
		}
		testutil.AssertEqual(t, *next.At(sq(4, 4)), Piece{Type: Pawn, Color: White})
		if next.At(sq(6, 4)) != nil {
			t.Fatalf("origin square not cleared")
		}
		if b.At(sq(4, 4)) != nil || b.At(sq(6, 4)) == nil {
			t.Fatalf("Apply mutated its receiver")
		}
	})

	t.Run("capture", func(t *testing.T) {
		b := boardWith(map[Square]Piece{
			sq(4, 4): {Type: Rook, Color: White},
			sq(1, 4): {Type: Knight, Color: Black},
		})
		next, captured := b.Apply(sq(4, 4), Move{To: sq(1, 4)})
		testutil.AssertEqual(t, captured, &Piece{Type: Knight, Color: Black})
		testutil.AssertEqual(t, *next.At(sq(1, 4)), Piece{Type: Rook, Color: White})
	})

	t.Run("en passant", func(t *testing.T) {
		b := boardWith(map[Square]Piece{
			sq(3, 3): {Type: Pawn, Color: White},
			sq(3, 4): {Type: Pawn, Color: Black},
		})
		victim := sq(3, 4)
		next, captured := b.Apply(sq(3, 3), Move{To: sq(2, 4), IsEnPassant: true, CapturedPawn: &victim})
		testutil.AssertEqual(t, captured, &Piece{Type: Pawn, Color: Black})
		if next.At(victim) != nil {
			t.Fatalf("captured pawn still on %s", victim)
		}
		testutil.AssertEqual(t, *next.At(sq(2, 4)), Piece{Type: Pawn, Color: White})
	})

	t.Run("promotion", func(t *testing.T) {
		b := boardWith(map[Square]Piece{
			sq(6, 2): {Type: Pawn, Color: Black},
		})
		next, _ := b.Apply(sq(6, 2), Move{To: sq(7, 2), IsPromotion: true})
		testutil.AssertEqual(t, *next.At(sq(7, 2)), Piece{Type: Queen, Color: Black})
	})
}

func TestSquareNotation(t *testing.T) {
	tests := []struct {
		sq   Square
		want string
	}{
		{sq(7, 0), "a1"},
		{sq(7, 4), "e1"},
		{sq(0, 7), "h8"},
		{sq(4, 4), "e4"},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, tt.sq.Notation(), tt.want, "%s", tt.sq)
	}
}
