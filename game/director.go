package game

import "github.com/pkg/errors"

// View is the part of a board a player is allowed to look at.
type View interface {
	Width() int
	Height() int
	NumMines() int
	CellAt(x, y int) CellState
}

// Director picks moves for a computer-driven player.
type Director interface {
	// Next returns the next cell to reveal, or ok=false if it has no move left.
	Next(view View) (x, y int, ok bool)
}

// MoveFunc is called by Autoplay after every reveal it makes.
type MoveFunc func(x, y int, revealed RevealResult) error

// Autoplay lets director reveal cells on board until the game is won or lost,
// or the director runs out of moves. onMove, if not nil, sees every move and
// stops the game by returning an error. It returns the final result and the
// number of reveals made.
func Autoplay(board *Board, director Director, onMove MoveFunc) (Result, int, error) {
	moves := 0
	for board.Result() == Ongoing {
		x, y, ok := director.Next(board)
		if !ok {
			break
		}
		revealed, err := board.Reveal(x, y)
		if err != nil {
			return board.Result(), moves, errors.Wrap(err, "director picked an invalid cell")
		}
		moves++
		if len(revealed.Changed) == 0 {
			return board.Result(), moves, errors.Errorf("director picked revealed cell (%d, %d)", x, y)
		}

		if onMove != nil {
			if err := onMove(x, y, revealed); err != nil {
				return board.Result(), moves, err
			}
		}
	}
	return board.Result(), moves, nil
}
