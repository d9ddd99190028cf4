package game

import (
	"github.com/pkg/errors"
	"strings"
)

const (
	layoutMine = '*'
	layoutSafe = '.'
)

// FromLayout builds an already prepared board from rows of '*' (mine) and
// '.' (safe) cells separated by newlines. Leading and trailing whitespace of
// each row is ignored. Reset on such a board goes back to random placement
// with the same mine count.
func FromLayout(layout string, opts ...Option) (*Board, error) {
	rows := strings.Split(strings.TrimSpace(layout), "\n")
	for i := range rows {
		rows[i] = strings.TrimSpace(rows[i])
	}

	height := len(rows)
	width := len(rows[0])

	numMines := 0
	for y, row := range rows {
		if len(row) != width {
			return nil, errors.Wrapf(ErrInvalidConfiguration,
				"layout row %d has %d cells, expected %d", y, len(row), width)
		}
		for x, c := range row {
			switch c {
			case layoutMine:
				numMines++
			case layoutSafe:
			default:
				return nil, errors.Wrapf(ErrInvalidConfiguration,
					"unknown layout cell %q at (%d, %d)", c, x, y)
			}
		}
	}

	board, err := New(width, height, numMines, opts...)
	if err != nil {
		return nil, err
	}

	for y, row := range rows {
		for x, c := range row {
			if c == layoutMine {
				board.ground[board.index(x, y)] = Mine
			}
		}
	}
	board.countNeighbors()
	board.phase = Prepared

	return board, nil
}

// Layout returns the mine layout in the format read by FromLayout, or "" if
// mines have not been placed yet.
func (board *Board) Layout() string {
	if board.phase != Prepared {
		return ""
	}

	var b strings.Builder
	for y := 0; y < board.height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < board.width; x++ {
			if board.ground[board.index(x, y)] == Mine {
				b.WriteByte(layoutMine)
			} else {
				b.WriteByte(layoutSafe)
			}
		}
	}
	return b.String()
}
