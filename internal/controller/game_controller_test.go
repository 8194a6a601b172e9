package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	gm := service.NewGameManager(model.Rules{}, 0)
	t.Cleanup(gm.Close)
	archive, err := storage.Open("")
	testutil.RequireNoError(t, err)
	t.Cleanup(func() { archive.Close() })

	return NewApp(service.NewGameService(gm, archive), RouteConfig{
		AllowOrigins: []string{"http://localhost:5173"},
		BufferSize:   1024,
	})
}

// call sends a request as playerID (none when empty) and decodes the JSON
// reply into out when out is non-nil.
func call(t *testing.T, app *fiber.App, method, path, playerID string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		testutil.RequireNoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}

	resp, err := app.Test(req, -1)
	testutil.RequireNoError(t, err, "%s %s", method, path)
	defer resp.Body.Close()

	if out != nil {
		testutil.RequireNoError(t, json.NewDecoder(resp.Body).Decode(out), "decode %s %s", method, path)
	}
	return resp.StatusCode
}

func TestEngineInitialBoard(t *testing.T) {
	app := newTestApp(t)

	var body struct {
		Board *model.Board `json:"board"`
	}
	code := call(t, app, http.MethodGet, "/api/engine/board", "", nil, &body)
	testutil.AssertEqual(t, code, http.StatusOK)
	testutil.AssertEqual(t, body.Board, model.NewBoard())
}

func TestEngineMoves(t *testing.T) {
	app := newTestApp(t)
	board := model.NewBoard()

	var body struct {
		Moves []model.Move `json:"moves"`
	}
	code := call(t, app, http.MethodPost, "/api/engine/moves", "", movesRequest{
		Board:  board,
		Square: model.Square{Row: 7, Col: 1},
		Piece:  &model.Piece{Type: model.Knight, Color: model.White},
	}, &body)
	testutil.AssertEqual(t, code, http.StatusOK)
	testutil.AssertEqual(t, body.Moves, []model.Move{
		{To: model.Square{Row: 5, Col: 0}},
		{To: model.Square{Row: 5, Col: 2}},
	})

	var failure struct {
		Error string `json:"error"`
	}
	code = call(t, app, http.MethodPost, "/api/engine/moves", "", movesRequest{
		Board:  board,
		Square: model.Square{Row: 4, Col: 4},
		Piece:  &model.Piece{Type: model.Queen, Color: model.White},
	}, &failure)
	testutil.AssertEqual(t, code, http.StatusBadRequest)
	if failure.Error == "" {
		t.Fatalf("expected an error message")
	}

	odd := &model.Board{}
	odd.Place(model.Square{Row: 4, Col: 4}, &model.Piece{Type: "archbishop", Color: model.White})
	code = call(t, app, http.MethodPost, "/api/engine/moves", "", movesRequest{
		Board:  odd,
		Square: model.Square{Row: 4, Col: 4},
		Piece:  &model.Piece{Type: "archbishop", Color: model.White},
	}, nil)
	testutil.AssertEqual(t, code, http.StatusBadRequest, "unknown piece kind")
}

func TestEngineStatusAndCheck(t *testing.T) {
	app := newTestApp(t)

	var status struct {
		Status  model.GameStatus    `json:"status"`
		IsCheck bool                `json:"isCheck"`
		Pieces  map[model.Color]int `json:"pieces"`
	}
	code := call(t, app, http.MethodPost, "/api/engine/status", "", statusRequest{Board: model.NewBoard(), Side: model.White}, &status)
	testutil.AssertEqual(t, code, http.StatusOK)
	testutil.AssertEqual(t, status.Status, model.StatusActive)
	testutil.AssertEqual(t, status.IsCheck, false)
	testutil.AssertEqual(t, status.Pieces, map[model.Color]int{model.White: 16, model.Black: 16})

	board := &model.Board{}
	board.Place(model.Square{Row: 7, Col: 4}, &model.Piece{Type: model.King, Color: model.White})
	board.Place(model.Square{Row: 0, Col: 4}, &model.Piece{Type: model.Rook, Color: model.Black})

	var check struct {
		InCheck bool `json:"inCheck"`
	}
	code = call(t, app, http.MethodPost, "/api/engine/check", "", checkRequest{
		Board:  board,
		Square: model.Square{Row: 7, Col: 4},
		Color:  model.White,
	}, &check)
	testutil.AssertEqual(t, code, http.StatusOK)
	testutil.AssertEqual(t, check.InCheck, true)

	code = call(t, app, http.MethodPost, "/api/engine/status", "", statusRequest{Board: board, Side: model.Black}, nil)
	testutil.AssertEqual(t, code, http.StatusBadRequest)
}

func TestGameRoutesRequirePlayerID(t *testing.T) {
	app := newTestApp(t)
	code := call(t, app, http.MethodPost, "/api/game/create", "", nil, nil)
	testutil.AssertEqual(t, code, http.StatusUnauthorized)
}

func TestGameLifecycle(t *testing.T) {
	app := newTestApp(t)

	var created struct {
		GameID string `json:"game_id"`
	}
	testutil.AssertEqual(t, call(t, app, http.MethodPost, "/api/game/create", "p1", nil, &created), http.StatusOK)
	base := "/api/game/" + created.GameID

	var joined struct {
		Color model.Color `json:"color"`
	}
	testutil.AssertEqual(t, call(t, app, http.MethodPost, "/api/game/join/"+created.GameID, "p1", joinRequest{Name: "Alice"}, &joined), http.StatusOK)
	testutil.AssertEqual(t, joined.Color, model.White)
	testutil.AssertEqual(t, call(t, app, http.MethodPost, "/api/game/join/"+created.GameID, "p2", nil, &joined), http.StatusOK)
	testutil.AssertEqual(t, joined.Color, model.Black)
	testutil.AssertEqual(t, call(t, app, http.MethodPost, "/api/game/join/"+created.GameID, "p3", nil, nil), http.StatusConflict)

	e4 := model.WSMove{From: model.Square{Row: 6, Col: 4}, To: model.Square{Row: 4, Col: 4}}
	testutil.AssertEqual(t, call(t, app, http.MethodPost, base+"/move", "p2", e4, nil), http.StatusForbidden)

	var state model.GameState
	testutil.AssertEqual(t, call(t, app, http.MethodPost, base+"/move", "p1", e4, &state), http.StatusOK)
	testutil.AssertEqual(t, state.ToMove, model.Black)
	testutil.AssertEqual(t, state.MoveHistory[0].Notation, "e4")

	illegal := model.WSMove{From: model.Square{Row: 1, Col: 4}, To: model.Square{Row: 4, Col: 4}}
	testutil.AssertEqual(t, call(t, app, http.MethodPost, base+"/move", "p2", illegal, nil), http.StatusBadRequest)

	testutil.AssertEqual(t, call(t, app, http.MethodPost, base+"/select", "p2", model.Square{Row: 1, Col: 3}, &state), http.StatusOK)
	testutil.AssertEqual(t, len(state.ValidMoves), 2)

	testutil.AssertEqual(t, call(t, app, http.MethodGet, base, "p1", nil, &state), http.StatusOK)
	testutil.AssertEqual(t, state.SelectedSquare, &model.Square{Row: 1, Col: 3})

	testutil.AssertEqual(t, call(t, app, http.MethodPost, base+"/reset", "p1", nil, &state), http.StatusOK)
	testutil.AssertEqual(t, len(state.MoveHistory), 0)

	testutil.AssertEqual(t, call(t, app, http.MethodGet, base+"/archive", "p1", nil, nil), http.StatusNotFound)
	testutil.AssertEqual(t, call(t, app, http.MethodGet, "/api/game/unknown", "p1", nil, nil), http.StatusNotFound)

	var archived struct {
		Games []storage.GameRecord `json:"games"`
	}
	testutil.AssertEqual(t, call(t, app, http.MethodGet, "/api/game/archive", "p1", nil, &archived), http.StatusOK)
	testutil.AssertEqual(t, len(archived.Games), 0)
}

func TestHotSeatNames(t *testing.T) {
	app := newTestApp(t)

	var created struct {
		GameID string `json:"game_id"`
	}
	call(t, app, http.MethodPost, "/api/game/create", "local", nil, &created)
	base := "/api/game/" + created.GameID

	testutil.AssertEqual(t, call(t, app, http.MethodPost, base+"/names", "local", namesRequest{White: "Alice"}, nil), http.StatusBadRequest)

	var state model.GameState
	testutil.AssertEqual(t, call(t, app, http.MethodPost, base+"/names", "local", namesRequest{White: "Alice", Black: "Bob"}, &state), http.StatusOK)
	testutil.AssertEqual(t, state.GameStarted, true)
	testutil.AssertEqual(t, state.Players.Black.Name, "Bob")

	e4 := model.WSMove{From: model.Square{Row: 6, Col: 4}, To: model.Square{Row: 4, Col: 4}}
	testutil.AssertEqual(t, call(t, app, http.MethodPost, base+"/move", "local", e4, nil), http.StatusOK)
}

func TestMatchmakingRoutes(t *testing.T) {
	app := newTestApp(t)

	var queued struct {
		Status string `json:"status"`
	}
	testutil.AssertEqual(t, call(t, app, http.MethodPost, "/api/game/matchmaking/join", "p1", joinRequest{Name: "Alice"}, &queued), http.StatusOK)
	testutil.AssertEqual(t, queued.Status, "queued")
	testutil.AssertEqual(t, call(t, app, http.MethodPost, "/api/game/matchmaking/join", "p1", nil, nil), http.StatusConflict)
	testutil.AssertEqual(t, call(t, app, http.MethodPost, "/api/game/matchmaking/leave", "p1", nil, nil), http.StatusOK)
	testutil.AssertEqual(t, call(t, app, http.MethodPost, "/api/game/matchmaking/leave", "p1", nil, nil), http.StatusNotFound)
}

func TestWebSocketRouteRejectsPlainRequests(t *testing.T) {
	app := newTestApp(t)
	code := call(t, app, http.MethodGet, "/ws/game/abc", "p1", nil, nil)
	testutil.AssertEqual(t, code, http.StatusUpgradeRequired)
}
