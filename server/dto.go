package server

import (
	"github.com/they4kman/sweepengine/game"
	"strings"
)

// CreateGameRequest represents the payload for POST /games.
type CreateGameRequest struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Mines     int    `json:"mines"`
	Seed      int64  `json:"seed"`
	Placement string `json:"placement"`
}

// RevealRequest represents the payload for POST /games/:id/reveal.
type RevealRequest struct {
	X *int `json:"x" binding:"required"`
	Y *int `json:"y" binding:"required"`
}

// GameView is what a client may know about a game. Grid holds one string
// per row, one character per cell: '?' hidden, ' ' empty, '1'-'8', '*' mine.
type GameView struct {
	ID     string   `json:"id"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Mines  int      `json:"mines"`
	Phase  string   `json:"phase"`
	Result string   `json:"result"`
	Hidden int      `json:"hidden"`
	Grid   []string `json:"grid"`
}

type RevealResponse struct {
	MineHit bool              `json:"mine_hit"`
	Changed []game.CellUpdate `json:"changed"`
	Game    GameView          `json:"game"`
}

// wsMessage is the envelope of every websocket message, in both directions.
type wsMessage struct {
	Action string      `json:"action"`
	Data   interface{} `json:"data,omitempty"`
}

type wsRequest struct {
	Action string `json:"action"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

func newGameView(id string, board *game.Board) GameView {
	cells := board.Visible()
	width := board.Width()

	grid := make([]string, board.Height())
	var row strings.Builder
	for y := range grid {
		row.Reset()
		for _, state := range cells[y*width : (y+1)*width] {
			row.WriteString(state.String())
		}
		grid[y] = row.String()
	}

	return GameView{
		ID:     id,
		Width:  board.Width(),
		Height: board.Height(),
		Mines:  board.NumMines(),
		Phase:  board.Phase().String(),
		Result: board.Result().String(),
		Hidden: board.HiddenCount(),
		Grid:   grid,
	}
}
