package constraint

import (
	"fmt"
	"github.com/they4kman/sweepengine/director/random"
	"github.com/they4kman/sweepengine/game"
	"github.com/they4kman/sweepengine/util/collections"
	"math/rand"
	"strings"
	"time"
)

const maxSimplifyRounds = 8

// Director plays by deduction. Every revealed number is an observation: its
// hidden neighbors hold exactly that many mines. Observations are combined
// until some cells are known safe; failing that, the least likely mine is
// revealed.
type Director struct {
	rand   *rand.Rand
	random *random.Director
}

type Observation struct {
	origin   int // -1 when derived from other observations
	numMines int
	cells    collections.Set[int]
}

func (observation Observation) String() string {
	var cellsRepr strings.Builder
	for i, cell := range collections.Sorted(observation.cells) {
		if i > 0 {
			cellsRepr.WriteString(", ")
		}
		cellsRepr.WriteString(fmt.Sprint(cell))
	}

	originRepr := "?"
	if observation.origin >= 0 {
		originRepr = fmt.Sprint(observation.origin)
	}

	return fmt.Sprintf("Obs[%4s, %d ε %s]", originRepr, observation.numMines, cellsRepr.String())
}

func (observation Observation) MineProbability() float64 {
	return float64(observation.numMines) / float64(len(observation.cells))
}

func New(r *rand.Rand) *Director {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Director{rand: r, random: random.New(r)}
}

func (director *Director) Next(view game.View) (int, int, bool) {
	width := view.Width()
	state := newDeduction(view)
	state.simplify()

	if safe := collections.Sorted(state.safe); len(safe) > 0 {
		return safe[0] % width, safe[0] / width, true
	}

	if idx, ok := state.lowestProbability(director.rand); ok {
		return idx % width, idx / width, true
	}

	isUnconstrained := func(x, y int) bool {
		idx := y*width + x
		return !state.mines.Contains(idx) && !state.constrained.Contains(idx)
	}
	if x, y, ok := director.random.Pick(view, isUnconstrained); ok {
		return x, y, true
	}
	isKnownMine := func(x, y int) bool {
		return state.mines.Contains(y*width + x)
	}
	if x, y, ok := director.random.Pick(view, func(x, y int) bool { return !isKnownMine(x, y) }); ok {
		return x, y, true
	}
	return director.random.Next(view)
}

// deduction holds everything derived from a single view.
type deduction struct {
	view         game.View
	width        int
	observations []*Observation
	mines        collections.Set[int]
	safe         collections.Set[int]
	constrained  collections.Set[int]
	hidden       int
}

func newDeduction(view game.View) *deduction {
	state := &deduction{
		view:        view,
		width:       view.Width(),
		mines:       make(collections.Set[int]),
		safe:        make(collections.Set[int]),
		constrained: make(collections.Set[int]),
	}

	for y := 0; y < view.Height(); y++ {
		for x := 0; x < view.Width(); x++ {
			cell := view.CellAt(x, y)
			if cell == game.Unrevealed {
				state.hidden++
				continue
			}
			if cell.NumMines() < 0 {
				continue
			}

			observation := &Observation{
				origin:   y*state.width + x,
				numMines: cell.NumMines(),
				cells:    make(collections.Set[int]),
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= view.Width() || ny >= view.Height() {
						continue
					}
					if view.CellAt(nx, ny) == game.Unrevealed {
						observation.cells.Add(ny*state.width + nx)
					}
				}
			}
			state.addObservation(observation)
		}
	}

	return state
}

func (state *deduction) addObservation(observation *Observation) bool {
	// Don't add vacuous observations
	if len(observation.cells) == 0 {
		return false
	}

	// Don't add duplicates
	for _, other := range state.observations {
		if other.cells.Equal(observation.cells) {
			return false
		}
	}

	state.observations = append(state.observations, observation)
	return true
}

// simplify applies the trivial rules and subset splitting until nothing new
// is learned.
func (state *deduction) simplify() {
	for round := 0; round < maxSimplifyRounds; round++ {
		changed := state.applyKnown()

		if state.applyTrivial() {
			changed = true
		}
		if state.splitSubsets() {
			changed = true
		}

		if !changed {
			return
		}
	}

	// Out of rounds: still strip what the last round learned
	state.applyKnown()
}

// applyKnown strips known cells out of every observation.
func (state *deduction) applyKnown() bool {
	changed := false
	for _, observation := range state.observations {
		for cell := range observation.cells {
			switch {
			case state.mines.Contains(cell):
				observation.cells.Remove(cell)
				observation.numMines--
				changed = true
			case state.safe.Contains(cell):
				observation.cells.Remove(cell)
				changed = true
			}
		}
	}
	return changed
}

func (state *deduction) applyTrivial() bool {
	changed := false
	for _, observation := range state.observations {
		if len(observation.cells) == 0 {
			continue
		}

		var known collections.Set[int]
		switch observation.numMines {
		case 0:
			known = state.safe
		case len(observation.cells):
			known = state.mines
		default:
			continue
		}

		for cell := range observation.cells {
			if !known.Contains(cell) {
				known.Add(cell)
				changed = true
			}
		}
	}
	return changed
}

func (state *deduction) splitSubsets() bool {
	changed := false
	existing := len(state.observations)
	for i := 0; i < existing; i++ {
		observation := state.observations[i]
		if len(observation.cells) == 0 {
			continue
		}

		for j := 0; j < existing; j++ {
			intersectingObs := state.observations[j]
			if i == j || len(intersectingObs.cells) <= len(observation.cells) {
				continue
			}

			if _, isSubset := observation.cells.IntersectionEx(intersectingObs.cells); !isSubset {
				continue
			}

			splitObs := &Observation{
				origin:   -1,
				numMines: intersectingObs.numMines - observation.numMines,
				cells:    intersectingObs.cells.Difference(observation.cells),
			}
			if state.addObservation(splitObs) {
				changed = true
			}
		}
	}
	return changed
}

// lowestProbability picks the hidden cell least likely to be a mine, judging
// each constrained cell by its most pessimistic observation and the remaining
// cells by the average density of unaccounted mines. It reports false when
// an unconstrained cell is the better guess.
func (state *deduction) lowestProbability(r *rand.Rand) (int, bool) {
	cellProbabilities := make(map[int]float64)
	for _, observation := range state.observations {
		if len(observation.cells) == 0 {
			continue
		}
		probability := observation.MineProbability()
		for cell := range observation.cells {
			// Known cells may linger once simplify runs out of rounds
			if state.mines.Contains(cell) || state.safe.Contains(cell) {
				continue
			}
			if past, ok := cellProbabilities[cell]; !ok || probability > past {
				cellProbabilities[cell] = probability
			}
			state.constrained.Add(cell)
		}
	}
	if len(cellProbabilities) == 0 {
		return 0, false
	}

	lowestProbability := 2.0
	var lowestProbabilityCells []int
	for cell, probability := range cellProbabilities {
		switch {
		case probability < lowestProbability:
			lowestProbability = probability
			lowestProbabilityCells = []int{cell}
		case probability == lowestProbability:
			lowestProbabilityCells = append(lowestProbabilityCells, cell)
		}
	}

	unconstrained := state.hidden - len(cellProbabilities) - len(state.mines)
	if unconstrained > 0 {
		remainingMines := state.view.NumMines() - len(state.mines)
		density := float64(remainingMines) / float64(state.hidden-len(state.mines))
		if density < lowestProbability {
			return 0, false
		}
	}

	lowest := collections.Sorted(collections.SetOf(lowestProbabilityCells...))
	return lowest[r.Intn(len(lowest))], true
}
