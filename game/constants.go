package game

import (
	"github.com/pkg/errors"
	"strconv"
)

// CellState is both the ground truth of a cell (Empty..Number8 or Mine) and
// what the player sees of it (Unrevealed, or a copy of the ground truth).
type CellState int8

const (
	Unrevealed CellState = iota - 1
	Empty
	Number1
	Number2
	Number3
	Number4
	Number5
	Number6
	Number7
	Number8
	Mine
)

var CellStates = []CellState{
	Unrevealed,
	Empty,
	Number1,
	Number2,
	Number3,
	Number4,
	Number5,
	Number6,
	Number7,
	Number8,
	Mine,
}

// NumMines returns the neighbor mine count of a safe cell, or -1 for anything else.
func (state CellState) NumMines() int {
	if state >= Empty && state <= Number8 {
		return int(state - Empty)
	}
	return -1
}

func (state CellState) String() string {
	switch {
	case state == Unrevealed:
		return "?"
	case state == Empty:
		return " "
	case state == Mine:
		return "*"
	case state > Empty && state <= Number8:
		return strconv.Itoa(int(state))
	default:
		return "!"
	}
}

func (state CellState) MarshalText() ([]byte, error) {
	return []byte(state.String()), nil
}

func (state *CellState) UnmarshalText(text []byte) error {
	for _, candidate := range CellStates {
		if candidate.String() == string(text) {
			*state = candidate
			return nil
		}
	}
	return errors.Errorf("unknown cell state %q", text)
}

// Phase tracks whether mines have been placed yet. Placement waits for the
// first reveal, so that the first revealed cell is never a mine.
type Phase int

const (
	Unprepared Phase = iota
	Prepared
)

func (phase Phase) String() string {
	if phase == Prepared {
		return "prepared"
	}
	return "unprepared"
}

type Result int

const (
	Ongoing Result = iota
	Win
	Loss
)

func (result Result) String() string {
	switch result {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "ongoing"
	}
}

// Placement selects how mines are distributed on the first reveal.
type Placement int

const (
	// PlaceShuffle shuffles every eligible index and takes the first numMines.
	PlaceShuffle Placement = iota
	// PlaceRejection draws random indexes until numMines distinct eligible ones were accepted.
	PlaceRejection
)

func (placement Placement) String() string {
	if placement == PlaceRejection {
		return "rejection"
	}
	return "shuffle"
}
