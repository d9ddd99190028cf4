package random

import (
	"github.com/they4kman/sweepengine/game"
	"math/rand"
	"time"
)

// Director reveals a uniformly chosen hidden cell on every move.
type Director struct {
	rand *rand.Rand
}

func New(r *rand.Rand) *Director {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Director{rand: r}
}

func (director *Director) Next(view game.View) (int, int, bool) {
	return director.Pick(view, func(x, y int) bool { return true })
}

// Pick chooses uniformly among the hidden cells accepted by allow.
func (director *Director) Pick(view game.View, allow func(x, y int) bool) (int, int, bool) {
	var candidates [][2]int
	for y := 0; y < view.Height(); y++ {
		for x := 0; x < view.Width(); x++ {
			if view.CellAt(x, y) == game.Unrevealed && allow(x, y) {
				candidates = append(candidates, [2]int{x, y})
			}
		}
	}

	if len(candidates) == 0 {
		return 0, 0, false
	}

	cell := candidates[director.rand.Intn(len(candidates))]
	return cell[0], cell[1], true
}
