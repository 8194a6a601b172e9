package model

type Player struct {
	ID   string
	Name string
}

type ClientPlayer struct {
	ID    string `json:"-"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// MatchFoundEvent is sent to a queued player once an opponent is found.
type MatchFoundEvent struct {
	GameID string `json:"gameId"`
	Color  Color  `json:"color"`
}
