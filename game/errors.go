package game

import (
	"github.com/pkg/errors"
	"math"
)

var (
	// ErrInvalidConfiguration is returned when a board cannot be built from the
	// requested dimensions and mine count.
	ErrInvalidConfiguration = errors.New("invalid board configuration")

	// ErrOutOfBounds is returned when a coordinate falls outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
)

func validateConfiguration(width, height, numMines int) error {
	switch {
	case width <= 0:
		return errors.Wrapf(ErrInvalidConfiguration, "cannot create a board with width %d", width)
	case height <= 0:
		return errors.Wrapf(ErrInvalidConfiguration, "cannot create a board with height %d", height)
	case numMines < 0:
		return errors.Wrapf(ErrInvalidConfiguration, "cannot create a board with %d mines", numMines)
	case width > math.MaxInt/height:
		return errors.Wrapf(ErrInvalidConfiguration, "a %dx%d board is too large", width, height)
	case numMines >= width*height:
		return errors.Wrapf(ErrInvalidConfiguration,
			"not enough space for %d mines on a %dx%d board", numMines, width, height)
	}
	return nil
}
