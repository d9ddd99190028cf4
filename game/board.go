package game

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"math/rand"
	"time"
)

// Board is the game engine: the mine layout, the player's view of it, and the
// reveal and scoring rules. A Board is not safe for concurrent use.
type Board struct {
	width, height int // in number of cells
	numMines      int

	phase   Phase
	ground  []CellState // Empty..Number8 or Mine, by linear index y*width+x
	visible []CellState // Unrevealed, or a copy of ground

	rand      *rand.Rand
	placement Placement
	log       logrus.FieldLogger

	neighbors []int
}

// RevealResult is the reply to a single Reveal call.
type RevealResult struct {
	// MineHit is set only when the requested cell itself was a mine.
	MineHit bool `json:"mine_hit"`
	// Changed lists every cell revealed by this call, in reveal order.
	Changed []CellUpdate `json:"changed"`
}

type Option func(*Board)

func WithRand(r *rand.Rand) Option {
	return func(board *Board) {
		board.rand = r
	}
}

func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(board *Board) {
		board.log = log
	}
}

func WithPlacement(placement Placement) Option {
	return func(board *Board) {
		board.placement = placement
	}
}

// New creates an unprepared board with every cell hidden. Mines are placed on
// the first Reveal, never on the revealed cell, so numMines must leave at
// least one safe cell.
func New(width, height, numMines int, opts ...Option) (*Board, error) {
	if err := validateConfiguration(width, height, numMines); err != nil {
		return nil, err
	}

	board := &Board{
		width:     width,
		height:    height,
		numMines:  numMines,
		ground:    make([]CellState, width*height),
		visible:   make([]CellState, width*height),
		placement: PlaceShuffle,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(board)
	}
	if board.rand == nil {
		board.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	board.clear()
	return board, nil
}

func (board *Board) Width() int {
	return board.width
}

func (board *Board) Height() int {
	return board.height
}

func (board *Board) NumMines() int {
	return board.numMines
}

func (board *Board) Phase() Phase {
	return board.phase
}

// CellAt returns what the player sees at (x, y). Out-of-bounds cells read as Unrevealed.
func (board *Board) CellAt(x, y int) CellState {
	if !board.InBounds(x, y) {
		return Unrevealed
	}
	return board.visible[board.index(x, y)]
}

// Visible returns a copy of the player's view, indexed by y*width+x.
func (board *Board) Visible() []CellState {
	out := make([]CellState, len(board.visible))
	copy(out, board.visible)
	return out
}

func (board *Board) HiddenCount() int {
	hidden := 0
	for _, state := range board.visible {
		if state == Unrevealed {
			hidden++
		}
	}
	return hidden
}

// Reveal uncovers (x, y). The first reveal of a game places the mines around
// it. Revealing an empty cell also reveals its whole connected empty region
// and the numbered cells bordering it. Revealing an already revealed cell
// changes nothing.
func (board *Board) Reveal(x, y int) (RevealResult, error) {
	if !board.InBounds(x, y) {
		return RevealResult{}, errors.Wrapf(ErrOutOfBounds,
			"cannot reveal (%d, %d) on a %dx%d board", x, y, board.width, board.height)
	}

	idx := board.index(x, y)
	if board.phase == Unprepared {
		board.prepare(idx)
	}

	return board.reveal(idx), nil
}

// Result scores the current view. Mines never need to be located explicitly:
// the game is won once the only hidden cells left are mines.
func (board *Board) Result() Result {
	hidden := 0
	for _, state := range board.visible {
		switch state {
		case Mine:
			return Loss
		case Unrevealed:
			hidden++
		}
	}

	if hidden <= board.numMines {
		return Win
	}
	return Ongoing
}

// Reset hides every cell and forgets the mine layout. Dimensions and mine
// count are kept; new mines are placed on the next Reveal.
func (board *Board) Reset() {
	board.clear()
	board.log.WithFields(logrus.Fields{
		"width":  board.width,
		"height": board.height,
		"mines":  board.numMines,
	}).Debug("board reset")
}

func (board *Board) clear() {
	for i := range board.visible {
		board.visible[i] = Unrevealed
		board.ground[i] = Empty
	}
	board.phase = Unprepared
}

// prepare places the mines anywhere but safeIdx and computes every count.
func (board *Board) prepare(safeIdx int) {
	if board.phase != Unprepared {
		panic("game: mines placed twice on the same board")
	}

	switch board.placement {
	case PlaceRejection:
		board.placeRejection(safeIdx)
	default:
		board.placeShuffle(safeIdx)
	}
	board.countNeighbors()
	board.phase = Prepared

	safeX, safeY := board.coords(safeIdx)
	board.log.WithFields(logrus.Fields{
		"width":     board.width,
		"height":    board.height,
		"mines":     board.numMines,
		"placement": board.placement,
		"safe":      []int{safeX, safeY},
	}).Debug("placed mines")
}

func (board *Board) placeShuffle(safeIdx int) {
	// Store cell indexes, to shuffle later and fill mines
	cellIndexes := make([]int, 0, len(board.ground)-1)
	for idx := range board.ground {
		if idx != safeIdx {
			cellIndexes = append(cellIndexes, idx)
		}
	}

	board.rand.Shuffle(len(cellIndexes), func(i, j int) {
		cellIndexes[i], cellIndexes[j] = cellIndexes[j], cellIndexes[i]
	})
	for _, idx := range cellIndexes[:board.numMines] {
		board.ground[idx] = Mine
	}
}

func (board *Board) placeRejection(safeIdx int) {
	for placed := 0; placed < board.numMines; {
		idx := board.rand.Intn(len(board.ground))
		if idx != safeIdx && board.ground[idx] != Mine {
			board.ground[idx] = Mine
			placed++
		}
	}
}

// countNeighbors bumps the count of every safe neighbor of every mine. All
// safe cells must be Empty beforehand.
func (board *Board) countNeighbors() {
	for idx, state := range board.ground {
		if state != Mine {
			continue
		}

		board.neighbors = board.appendNeighbors(board.neighbors[:0], idx)
		for _, neighbor := range board.neighbors {
			if board.ground[neighbor] != Mine {
				board.ground[neighbor]++
			}
		}
	}
}

func (board *Board) reveal(origin int) RevealResult {
	var result RevealResult
	if board.visible[origin] != Unrevealed {
		return result
	}

	flood(
		origin,
		func(idx int) bool {
			if board.visible[idx] != Unrevealed {
				return false
			}

			state := board.ground[idx]
			board.visible[idx] = state

			x, y := board.coords(idx)
			result.Changed = append(result.Changed, CellUpdate{X: x, Y: y, State: state})

			if state == Mine {
				if idx == origin {
					result.MineHit = true
				}
				return false
			}
			return state == Empty
		},
		board.appendNeighbors,
	)

	originX, originY := board.coords(origin)
	board.log.WithFields(logrus.Fields{
		"x":        originX,
		"y":        originY,
		"revealed": len(result.Changed),
		"mine_hit": result.MineHit,
	}).Debug("revealed cells")

	return result
}
