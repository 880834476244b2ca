package model

type Player struct {
	ID    string
	Color Color
}

// ClientPlayer is the per-player part of a GameState snapshot. TimeLeft is
// in tenths of a second.
type ClientPlayer struct {
	ID       string `json:"name"`
	Color    Color  `json:"color"`
	TimeLeft int    `json:"timeLeft"`
}
