package model

import (
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

// Rules selects how moves are generated for a game.
type Rules struct {
	// Strict drops moves that leave the mover's own king attacked.
	Strict bool
}

func (r Rules) Moves(b *Board, from Square, p *Piece, last *LastMove) ([]Move, error) {
	if r.Strict {
		return LegalMoves(b, from, p, last)
	}
	return ValidMoves(b, from, p, last)
}

func (r Rules) Classify(b *Board, side Color) (GameStatus, error) {
	if r.Strict {
		return ClassifyStrict(b, side)
	}
	return Classify(b, side)
}

// client is one registered socket and the newest state version written to it.
type client struct {
	conn *websocket.Conn
	sent uint64 // guarded by GameConnections.writeMu
}

// The connections for a specific game
type GameConnections struct {
	clients map[string]*client // playerID -> connection
	mu      sync.RWMutex
	writeMu sync.Mutex // serialises writes; a conn allows one writer
}

// Game owns the canonical board of one match and applies moves to it. The
// rules themselves live in ValidMoves and Classify.
type Game struct {
	ID          string
	mu          sync.Mutex
	rules       Rules
	state       GameState
	version     uint64 // bumped on every change, guarded by mu
	connections *GameConnections
}

type GameState struct {
	Sound          string         `json:"sound"`
	Board          *Board         `json:"board"`
	ToMove         Color          `json:"currentPlayer"`
	SelectedSquare *Square        `json:"selectedPiece"`
	ValidMoves     []Move         `json:"validMoves"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	Players        Players        `json:"players"`
	GameStarted    bool           `json:"gameStarted"`
	MoveHistory    []Ply          `json:"moveHistory"`
	IsCheck        bool           `json:"isCheck"`
	IsCheckmate    bool           `json:"isCheckmate"`
	Status         GameStatus     `json:"status"`
	LastMove       *LastMove      `json:"lastMove"`
	Round          int            `json:"round"`
}

// CapturedPieces is keyed by the capturing color.
type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

func NewGame(id string, rules Rules) *Game {
	return &Game{
		ID:          id,
		rules:       rules,
		state:       newGameState(),
		connections: NewGameConnections(),
	}
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		clients: make(map[string]*client),
	}
}

func newGameState() GameState {
	return GameState{
		Board:          NewBoard(),
		ToMove:         White,
		ValidMoves:     make([]Move, 0),
		CapturedPieces: newCapturedPieces(),
		MoveHistory:    make([]Ply, 0),
		Status:         StatusActive,
	}
}

func newCapturedPieces() CapturedPieces {
	return CapturedPieces{
		White: make([]Piece, 0),
		Black: make([]Piece, 0),
	}
}

// AddPlayer seats playerID at the first free color. The game starts once both
// seats are taken.
func (g *Game) AddPlayer(playerID, name string) (Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color := g.seatOf(playerID); color != "" {
		return color, nil
	}
	if name == "" {
		name = playerID
	}
	var color Color
	switch {
	case g.state.Players.White.ID == "":
		g.state.Players.White = ClientPlayer{ID: playerID, Name: name, Color: White}
		color = White
	case g.state.Players.Black.ID == "":
		g.state.Players.Black = ClientPlayer{ID: playerID, Name: name, Color: Black}
		color = Black
	default:
		return "", ErrGameFull
	}
	g.state.GameStarted = g.state.Players.White.ID != "" && g.state.Players.Black.ID != ""
	g.changed()
	return color, nil
}

// SetPlayerNames names both sides of a hot-seat game and starts it.
func (g *Game) SetPlayerNames(white, black string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state.Players.White.Name = white
	g.state.Players.White.Color = White
	g.state.Players.Black.Name = black
	g.state.Players.Black.Color = Black
	g.state.GameStarted = true
	g.changed()
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshot()
}

func (g *Game) seatOf(playerID string) Color {
	if playerID == "" {
		return ""
	}
	if g.state.Players.White.ID == playerID {
		return White
	}
	if g.state.Players.Black.ID == playerID {
		return Black
	}
	return ""
}

func (g *Game) hasSeatedPlayers() bool {
	return g.state.Players.White.ID != "" || g.state.Players.Black.ID != ""
}

func (g *Game) canSpectate() bool {
	return g.state.Players.White.ID == "" || g.state.Players.Black.ID == ""
}

// authorize lets seated players act on their own turn only. Unseated callers
// may only act in a hot-seat game, where nobody holds a seat.
func (g *Game) authorize(playerID string) error {
	if !g.state.GameStarted {
		return ErrGameNotStarted
	}
	if g.state.Status.Terminal() {
		return ErrGameOver
	}
	seat := g.seatOf(playerID)
	if seat == "" {
		if g.hasSeatedPlayers() {
			return ErrNotAuthorized
		}
		return nil
	}
	if seat != g.state.ToMove {
		return ErrNotYourTurn
	}
	return nil
}

// SelectSquare handles a click on sq: selecting an own piece highlights its
// moves, clicking a highlighted square plays the move, anything else clears
// the selection.
func (g *Game) SelectSquare(playerID string, sq Square) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !sq.OnBoard() {
		return fmt.Errorf("%w: %s", ErrOffBoard, sq)
	}
	if err := g.authorize(playerID); err != nil {
		return err
	}

	clicked := g.state.Board.At(sq)
	if g.state.SelectedSquare == nil && clicked != nil && clicked.Color == g.state.ToMove {
		moves, err := g.rules.Moves(g.state.Board, sq, clicked, g.state.LastMove)
		if err != nil {
			return err
		}
		selected := sq
		g.state.SelectedSquare = &selected
		g.state.ValidMoves = moves
		g.changed()
		return nil
	}

	if g.state.SelectedSquare != nil {
		if move, ok := findMove(g.state.ValidMoves, sq); ok {
			g.executeMove(*g.state.SelectedSquare, move)
			g.changed()
			return nil
		}
	}

	g.clearSelection()
	g.changed()
	return nil
}

// MovePiece plays from -> to for the side to move.
func (g *Game) MovePiece(playerID string, move WSMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !move.From.OnBoard() || !move.To.OnBoard() {
		return fmt.Errorf("invalid move, out of bounds: %w", ErrOffBoard)
	}
	if err := g.authorize(playerID); err != nil {
		return err
	}
	piece := g.state.Board.At(move.From)
	if piece == nil {
		return ErrNoPiece
	}
	if piece.Color != g.state.ToMove {
		return ErrNotYourTurn
	}

	moves, err := g.rules.Moves(g.state.Board, move.From, piece, g.state.LastMove)
	if err != nil {
		return err
	}
	valid, ok := findMove(moves, move.To)
	if !ok {
		return fmt.Errorf("%w: %s to %s", ErrIllegalMove, move.From.Notation(), move.To.Notation())
	}

	g.executeMove(move.From, valid)
	g.changed()
	return nil
}

// Reset puts the game back at the starting position and clears the names.
// Seated players keep their seats. Each reset starts a new round.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	players := g.state.Players
	round := g.state.Round
	g.state = newGameState()
	g.state.Round = round + 1
	if players.White.ID != "" || players.Black.ID != "" {
		g.state.Players = players
		g.state.GameStarted = players.White.ID != "" && players.Black.ID != ""
	}
	g.changed()
}

func findMove(moves []Move, to Square) (Move, bool) {
	for _, m := range moves {
		if m.To == to {
			return m, true
		}
	}
	return Move{}, false
}

func (g *Game) clearSelection() {
	g.state.SelectedSquare = nil
	g.state.ValidMoves = make([]Move, 0)
}

// executeMove applies a generated move. The caller holds g.mu.
func (g *Game) executeMove(from Square, move Move) {
	board := g.state.Board
	piece := *board.At(from)
	next, captured := board.Apply(from, move)

	ply := Ply{
		Piece:     piece,
		From:      from,
		To:        move.To,
		EnPassant: move.IsEnPassant,
		Notation:  notation(piece, from, move, captured != nil),
	}
	if piece.Type == Pawn && move.IsPromotion {
		ply.Promotion = Queen
	}

	g.state.Sound = "move"
	if captured != nil {
		taken := *captured
		ply.CapturedPiece = &taken
		g.state.Sound = "capture"
		switch piece.Color {
		case White:
			g.state.CapturedPieces.White = append(g.state.CapturedPieces.White, taken)
		case Black:
			g.state.CapturedPieces.Black = append(g.state.CapturedPieces.Black, taken)
		}
	}

	g.state.Board = next
	g.state.ToMove = piece.Color.Opponent()
	g.state.LastMove = &LastMove{From: from, To: move.To, Piece: piece}
	g.clearSelection()

	g.updateStatus()
	if g.state.IsCheck {
		g.state.Sound = "check"
	}
	switch {
	case g.state.IsCheckmate:
		ply.Notation += "#"
	case g.state.IsCheck:
		ply.Notation += "+"
	}

	ply.Board = next.Clone()
	ply.NextPlayer = g.state.ToMove
	ply.IsCheck = g.state.IsCheck
	ply.IsCheckmate = g.state.IsCheckmate
	ply.Status = g.state.Status
	g.state.MoveHistory = append(g.state.MoveHistory, ply)
}

// updateStatus classifies the side to move. A side whose king was captured,
// which pseudo-legal play allows, has lost.
func (g *Game) updateStatus() {
	side := g.state.ToMove
	if _, ok := g.state.Board.findKing(side); !ok {
		g.state.IsCheck = true
		g.state.IsCheckmate = true
		g.state.Status = StatusCheckmate
		return
	}

	inCheck, err := InCheck(g.state.Board, side)
	if err != nil {
		log.Printf("game %s: check detection failed: %v", g.ID, err)
	}
	status, err := g.rules.Classify(g.state.Board, side)
	if err != nil {
		log.Printf("game %s: classify failed: %v", g.ID, err)
		status = StatusActive
	}
	g.state.IsCheck = inCheck
	g.state.IsCheckmate = status == StatusCheckmate
	g.state.Status = status
}

func notation(piece Piece, from Square, move Move, capture bool) string {
	prefix := piece.Type.notation()
	file := ""
	if piece.Type == Pawn && from.Col != move.To.Col {
		file = from.fileNotation()
	}
	takes := ""
	if capture {
		takes = "x"
	}
	suffix := ""
	if piece.Type == Pawn && move.IsPromotion {
		suffix = "=Q"
	} else if move.IsEnPassant {
		suffix = " e.p."
	}
	return fmt.Sprintf("%s%s%s%s%s", prefix, file, takes, move.To.Notation(), suffix)
}

// snapshot copies the state so it can leave the lock. Boards are replaced,
// never mutated, after a move, so sharing the pointer is safe.
func (g *Game) snapshot() GameState {
	s := g.state
	s.ValidMoves = slices.Clone(g.state.ValidMoves)
	s.MoveHistory = slices.Clone(g.state.MoveHistory)
	s.CapturedPieces = CapturedPieces{
		White: slices.Clone(g.state.CapturedPieces.White),
		Black: slices.Clone(g.state.CapturedPieces.Black),
	}
	if g.state.SelectedSquare != nil {
		sel := *g.state.SelectedSquare
		s.SelectedSquare = &sel
	}
	return s
}

// changed pushes the current state to every connection. The caller holds g.mu.
func (g *Game) changed() {
	g.version++
	go g.broadcastState(g.snapshot(), g.version)
}

// RegisterConnection adds conn for playerID and sends it the current state.
// A second connection for the same player is closed and ErrDuplicateConnection
// returned; the first keeps receiving updates.
func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	g.mu.Lock()
	isAuthorized := g.seatOf(playerID) != "" || g.canSpectate()
	g.mu.Unlock()
	if !isAuthorized {
		return ErrNotAuthorized
	}

	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()

	g.connections.mu.Lock()
	if _, exists := g.connections.clients[playerID]; exists {
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ErrDuplicateConnection.Error()),
		)
		conn.Close()
		return ErrDuplicateConnection
	}
	cl := &client{conn: conn}
	g.connections.clients[playerID] = cl
	g.connections.mu.Unlock()
	log.Printf("Registered connection %p for player %s", conn, playerID)

	// Snapshot after registering: any broadcast still waiting on writeMu is
	// either older than this state and skipped, or newer and delivered.
	g.mu.Lock()
	state, version := g.snapshot(), g.version
	g.mu.Unlock()

	if err := g.writeState(cl, state, version); err != nil {
		g.dropClient(playerID, cl)
		return err
	}
	return nil
}

// UnregisterConnection removes conn if it is still the one registered for
// playerID.
func (g *Game) UnregisterConnection(playerID string, conn *websocket.Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if cl, exists := g.connections.clients[playerID]; exists && cl.conn == conn {
		log.Printf("Unregistering connection for player %s", playerID)
		delete(g.connections.clients, playerID)
	}
}

func (g *Game) dropClient(playerID string, cl *client) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	if g.connections.clients[playerID] == cl {
		delete(g.connections.clients, playerID)
	}
}

// Send writes msg to one connection, serialised with broadcasts.
func (g *Game) Send(conn *websocket.Conn, msg ws.Message) error {
	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

// writeState sends state unless the client already has this version or a
// newer one. The caller holds writeMu.
func (g *Game) writeState(cl *client, state GameState, version uint64) error {
	if cl.sent >= version {
		return nil
	}
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := cl.conn.WriteJSON(msg); err != nil {
		return err
	}
	cl.sent = version
	return nil
}

func (g *Game) broadcastState(state GameState, version uint64) {
	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()

	g.connections.mu.RLock()
	active := make(map[string]*client, len(g.connections.clients))
	for playerID, cl := range g.connections.clients {
		active[playerID] = cl
	}
	g.connections.mu.RUnlock()

	for playerID, cl := range active {
		if err := g.writeState(cl, state, version); err != nil {
			log.Printf("Failed to send state to player %s: %v", playerID, err)
			g.dropClient(playerID, cl)
		}
	}
}
