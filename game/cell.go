package game

import "fmt"

// CellUpdate is a cell whose visible state changed during a reveal.
type CellUpdate struct {
	X     int       `json:"x"`
	Y     int       `json:"y"`
	State CellState `json:"state"`
}

func (update CellUpdate) String() string {
	return fmt.Sprintf("Cell(%v, %v)=%q", update.X, update.Y, update.State.String())
}

func (board *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < board.width && y < board.height
}

func (board *Board) index(x, y int) int {
	return y*board.width + x
}

func (board *Board) coords(idx int) (x, y int) {
	return idx % board.width, idx / board.width
}

// appendNeighbors appends the indexes of the up to 8 cells surrounding idx.
// Cells on an edge have fewer neighbors; nothing wraps to the opposite edge.
func (board *Board) appendNeighbors(out []int, idx int) []int {
	x, y := board.coords(idx)
	width := board.width

	isAtTopBorder := y < 1
	isAtBottomBorder := y >= board.height-1

	if x >= 1 {
		out = append(out, idx-1)

		if !isAtTopBorder {
			out = append(out, idx-1-width)
		}
		if !isAtBottomBorder {
			out = append(out, idx-1+width)
		}
	}

	if x < width-1 {
		out = append(out, idx+1)

		if !isAtTopBorder {
			out = append(out, idx+1-width)
		}
		if !isAtBottomBorder {
			out = append(out, idx+1+width)
		}
	}

	if !isAtTopBorder {
		out = append(out, idx-width)
	}
	if !isAtBottomBorder {
		out = append(out, idx+width)
	}

	return out
}
