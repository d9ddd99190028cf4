package game

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
	"math"
	"math/rand"
	"strconv"
	"testing"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestBoard(t *testing.T, width, height, numMines int, seed int64, opts ...Option) *Board {
	t.Helper()
	opts = append([]Option{WithSeed(seed), WithLogger(quietLogger())}, opts...)
	board, err := New(width, height, numMines, opts...)
	if err != nil {
		t.Fatalf("New(%d, %d, %d): %v", width, height, numMines, err)
	}
	return board
}

func mustLayout(t *testing.T, layout string) *Board {
	t.Helper()
	board, err := FromLayout(layout, WithSeed(1), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("FromLayout: %v", err)
	}
	return board
}

func mustReveal(t *testing.T, board *Board, x, y int) RevealResult {
	t.Helper()
	result, err := board.Reveal(x, y)
	if err != nil {
		t.Fatalf("Reveal(%d, %d): %v", x, y, err)
	}
	return result
}

func countMines(board *Board) int {
	n := 0
	for _, state := range board.ground {
		if state == Mine {
			n++
		}
	}
	return n
}

func countAdjacentMines(board *Board, x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if board.InBounds(nx, ny) && board.ground[board.index(nx, ny)] == Mine {
				n++
			}
		}
	}
	return n
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name                    string
		width, height, numMines int
		wantErr                 bool
	}{
		{"zero width", 0, 5, 1, true},
		{"negative height", 5, -1, 1, true},
		{"negative mines", 5, 5, -1, true},
		{"mines fill board", 5, 5, 25, true},
		{"more mines than cells", 5, 5, 30, true},
		{"one safe cell", 5, 5, 24, false},
		{"no mines", 3, 2, 0, false},
		{"single cell", 1, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, err := New(tt.width, tt.height, tt.numMines, WithLogger(quietLogger()))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfiguration) {
					t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
				}
				if board != nil {
					t.Error("expected no board on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if board.Phase() != Unprepared {
				t.Errorf("expected a new board to be unprepared, got %v", board.Phase())
			}
			if board.HiddenCount() != tt.width*tt.height {
				t.Errorf("expected every cell hidden, got %d hidden", board.HiddenCount())
			}
		})
	}
}

func TestNewRejectsOverflowingSize(t *testing.T) {
	// side*side wraps around to a small positive cell count
	side := 1<<(strconv.IntSize/2) + 1

	for _, size := range [][2]int{{side, side}, {math.MaxInt, 2}} {
		if _, err := New(size[0], size[1], 1, WithLogger(quietLogger())); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%dx%d: expected ErrInvalidConfiguration, got %v", size[0], size[1], err)
		}
	}
}

func TestNewConsumesNoRandomness(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	if _, err := New(9, 9, 10, WithRand(r), WithLogger(quietLogger())); err != nil {
		t.Fatal(err)
	}

	want := rand.New(rand.NewSource(42)).Int63()
	if got := r.Int63(); got != want {
		t.Errorf("New drew from the random source: next value %d, want %d", got, want)
	}
}

func TestFirstRevealPlacesMines(t *testing.T) {
	for _, placement := range []Placement{PlaceShuffle, PlaceRejection} {
		t.Run(placement.String(), func(t *testing.T) {
			for seed := int64(1); seed <= 20; seed++ {
				board := newTestBoard(t, 8, 6, 12, seed, WithPlacement(placement))
				x, y := int(seed)%8, int(seed)%6

				result := mustReveal(t, board, x, y)

				if board.Phase() != Prepared {
					t.Fatalf("seed %d: expected prepared board after first reveal", seed)
				}
				if n := countMines(board); n != 12 {
					t.Errorf("seed %d: expected 12 mines, got %d", seed, n)
				}
				if result.MineHit || board.ground[board.index(x, y)] == Mine {
					t.Errorf("seed %d: first revealed cell (%d, %d) is a mine", seed, x, y)
				}
			}
		})
	}
}

func TestFirstClickSafetyEveryCell(t *testing.T) {
	for _, placement := range []Placement{PlaceShuffle, PlaceRejection} {
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				// Only the first revealed cell is left safe
				board := newTestBoard(t, 5, 5, 24, int64(y*5+x+1), WithPlacement(placement))
				result := mustReveal(t, board, x, y)

				if result.MineHit {
					t.Fatalf("%v: first reveal at (%d, %d) hit a mine", placement, x, y)
				}
				if n := countMines(board); n != 24 {
					t.Fatalf("%v: expected 24 mines, got %d", placement, n)
				}
				if got := board.Result(); got != Win {
					t.Errorf("%v: expected win after revealing the only safe cell, got %v", placement, got)
				}
			}
		}
	}
}

func TestNeighborCounts(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		board := newTestBoard(t, 7, 5, 9, seed)
		mustReveal(t, board, 3, 2)

		for y := 0; y < board.height; y++ {
			for x := 0; x < board.width; x++ {
				state := board.ground[board.index(x, y)]
				if state == Mine {
					continue
				}
				if want := countAdjacentMines(board, x, y); state.NumMines() != want {
					t.Errorf("seed %d: cell (%d, %d) counts %d mines, want %d", seed, x, y, state.NumMines(), want)
				}
			}
		}
	}
}

func TestNeighborsDoNotWrap(t *testing.T) {
	// The mine at the end of the first row must not count for the start of the second
	board := mustLayout(t, `
		...*
		....
	`)

	if got := board.ground[board.index(0, 1)]; got != Empty {
		t.Errorf("expected (0, 1) to be empty, got %v", got)
	}
	if got := board.ground[board.index(0, 0)]; got != Empty {
		t.Errorf("expected (0, 0) to be empty, got %v", got)
	}
	if got := board.ground[board.index(2, 1)]; got != Number1 {
		t.Errorf("expected (2, 1) to be 1, got %v", got)
	}
}

func TestRevealIdempotent(t *testing.T) {
	board := mustLayout(t, `
		*....
		.....
		..*..
		.....
		....*
	`)

	first := mustReveal(t, board, 1, 0)
	if len(first.Changed) != 1 {
		t.Fatalf("expected a numbered cell to reveal alone, got %v", first.Changed)
	}

	before := board.Visible()
	second := mustReveal(t, board, 1, 0)
	if second.MineHit || len(second.Changed) != 0 {
		t.Errorf("expected no-op on revealed cell, got %+v", second)
	}

	after := board.Visible()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("visibility changed at index %d: %v -> %v", i, before[i], after[i])
		}
	}
}

// expectedFlood computes what revealing origin should uncover, straight
// from the ground truth.
func expectedFlood(board *Board, origin int) map[int]bool {
	region := map[int]bool{origin: true}
	stack := []int{origin}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if board.ground[idx] != Empty {
			continue
		}
		for _, neighbor := range board.appendNeighbors(nil, idx) {
			if !region[neighbor] {
				region[neighbor] = true
				stack = append(stack, neighbor)
			}
		}
	}
	return region
}

func TestFloodReveal(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		board := newTestBoard(t, 16, 12, 20, seed)
		x, y := int(seed)%16, int(seed*7)%12

		board.prepare(board.index(x, y))
		want := expectedFlood(board, board.index(x, y))

		result := mustReveal(t, board, x, y)
		if len(result.Changed) != len(want) {
			t.Fatalf("seed %d: revealed %d cells, want %d", seed, len(result.Changed), len(want))
		}
		for _, update := range result.Changed {
			idx := board.index(update.X, update.Y)
			if !want[idx] {
				t.Errorf("seed %d: unexpected cell revealed: %v", seed, update)
			}
			if update.State == Mine {
				t.Errorf("seed %d: flood revealed a mine at %v", seed, update)
			}
			if update.State != board.ground[idx] {
				t.Errorf("seed %d: %v does not match ground truth %v", seed, update, board.ground[idx])
			}
		}
	}
}

func TestFloodRevealFullyConnected(t *testing.T) {
	board := newTestBoard(t, 40, 40, 0, 1)
	result := mustReveal(t, board, 20, 20)

	if len(result.Changed) != 1600 {
		t.Errorf("expected every cell revealed, got %d", len(result.Changed))
	}
	if board.Result() != Win {
		t.Errorf("expected win on a board without mines, got %v", board.Result())
	}
}

func TestOutOfBounds(t *testing.T) {
	board := newTestBoard(t, 5, 5, 5, 1)

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {5, 0}, {0, 5}, {100, 100}} {
		_, err := board.Reveal(c[0], c[1])
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Reveal(%d, %d): expected ErrOutOfBounds, got %v", c[0], c[1], err)
		}
	}

	if board.Phase() != Unprepared {
		t.Error("out of bounds reveal must not place mines")
	}
	if board.HiddenCount() != 25 {
		t.Error("out of bounds reveal must not change visibility")
	}
}

func TestScenarioA(t *testing.T) {
	const layout = `
		*****
		.....
		.....
		.....
		.....
	`

	t.Run("numbered cell reveals alone", func(t *testing.T) {
		board := mustLayout(t, layout)
		result := mustReveal(t, board, 0, 1)

		if len(result.Changed) != 1 || result.Changed[0].State != Number2 {
			t.Fatalf("expected only (0, 1)=2 revealed, got %v", result.Changed)
		}
		if got := board.Result(); got != Ongoing {
			t.Errorf("expected ongoing while safe cells remain hidden, got %v", got)
		}
	})

	t.Run("empty corner propagates", func(t *testing.T) {
		board := mustLayout(t, layout)
		if got := board.Result(); got != Ongoing {
			t.Fatalf("expected ongoing before any reveal, got %v", got)
		}

		result := mustReveal(t, board, 4, 4)
		if result.MineHit {
			t.Fatal("expected no mine hit")
		}
		if len(result.Changed) != 20 {
			t.Errorf("expected the 20 safe cells revealed, got %d", len(result.Changed))
		}
		if got := board.CellAt(2, 1); got != Number3 {
			t.Errorf("expected (2, 1) to show 3, got %v", got)
		}
		if got := board.CellAt(2, 0); got != Unrevealed {
			t.Errorf("expected mine at (2, 0) to stay hidden, got %v", got)
		}
		if got := board.Result(); got != Win {
			t.Errorf("expected win once every safe cell is revealed, got %v", got)
		}
	})
}

func TestScenarioB(t *testing.T) {
	board := mustLayout(t, `
		.....
		.*...
		.....
		.....
		.....
	`)

	result := mustReveal(t, board, 1, 1)
	if !result.MineHit {
		t.Error("expected mine hit")
	}
	if len(result.Changed) != 1 {
		t.Errorf("expected only the mine revealed, got %v", result.Changed)
	}
	if got := board.CellAt(1, 1); got != Mine {
		t.Errorf("expected revealed mine, got %v", got)
	}
	if got := board.Result(); got != Loss {
		t.Errorf("expected loss, got %v", got)
	}

	// Reveals are still accepted after a loss
	if _, err := board.Reveal(4, 4); err != nil {
		t.Errorf("expected reveal after loss to succeed, got %v", err)
	}
	if got := board.Result(); got != Loss {
		t.Errorf("expected loss to stick, got %v", got)
	}
}

func TestScenarioC(t *testing.T) {
	// Every safe cell touches a mine, so each reveal uncovers exactly one cell
	board := mustLayout(t, `
		.....
		.*.*.
		..*..
		.*.*.
		.....
	`)
	if board.NumMines() != 5 {
		t.Fatalf("expected 5 mines, got %d", board.NumMines())
	}

	revealed := 0
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if board.ground[board.index(x, y)] == Mine {
				continue
			}

			result := mustReveal(t, board, x, y)
			if len(result.Changed) != 1 {
				t.Fatalf("expected (%d, %d) to reveal alone, got %v", x, y, result.Changed)
			}
			revealed++

			want := Ongoing
			if revealed == 20 {
				want = Win
			}
			if got := board.Result(); got != want {
				t.Fatalf("after %d safe reveals: expected %v, got %v", revealed, want, got)
			}
		}
	}
}

func TestResult(t *testing.T) {
	t.Run("no mines and nothing hidden is a win", func(t *testing.T) {
		board := newTestBoard(t, 3, 3, 0, 1)
		mustReveal(t, board, 0, 0)
		if board.HiddenCount() != 0 {
			t.Fatalf("expected nothing hidden, got %d", board.HiddenCount())
		}
		if got := board.Result(); got != Win {
			t.Errorf("expected win, got %v", got)
		}
	})

	t.Run("revealed mine beats hidden count", func(t *testing.T) {
		board := mustLayout(t, `
			*.
			..
		`)
		mustReveal(t, board, 1, 0)
		mustReveal(t, board, 0, 1)
		mustReveal(t, board, 1, 1)
		if got := board.Result(); got != Win {
			t.Fatalf("expected win with only the mine hidden, got %v", got)
		}

		// Engine leaves post-game policy to the caller
		mustReveal(t, board, 0, 0)
		if got := board.Result(); got != Loss {
			t.Errorf("expected loss once a mine is revealed, got %v", got)
		}
	})
}

func TestReset(t *testing.T) {
	board := newTestBoard(t, 6, 6, 8, 3)
	mustReveal(t, board, 0, 0)

	board.Reset()

	if board.Phase() != Unprepared {
		t.Error("expected unprepared after reset")
	}
	if board.HiddenCount() != 36 {
		t.Errorf("expected every cell hidden after reset, got %d", board.HiddenCount())
	}
	if n := countMines(board); n != 0 {
		t.Errorf("expected ground truth cleared, got %d mines", n)
	}
	if board.Width() != 6 || board.Height() != 6 || board.NumMines() != 8 {
		t.Error("reset must keep dimensions and mine count")
	}

	result := mustReveal(t, board, 5, 5)
	if result.MineHit {
		t.Error("first reveal after reset must be safe")
	}
	if n := countMines(board); n != 8 {
		t.Errorf("expected 8 mines after replay, got %d", n)
	}
}

func TestSeedReproducibility(t *testing.T) {
	board1 := newTestBoard(t, 10, 10, 15, 12345)
	board2 := newTestBoard(t, 10, 10, 15, 12345)

	mustReveal(t, board1, 4, 4)
	mustReveal(t, board2, 4, 4)

	if board1.Layout() != board2.Layout() {
		t.Errorf("boards with the same seed differ:\n%s\n\n%s", board1.Layout(), board2.Layout())
	}
}
