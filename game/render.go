package game

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Render draws the board as a box-drawing grid with hexadecimal row and
// column labels. With revealAll, the mine layout is drawn instead of the
// player's view (only once mines have been placed).
func (board *Board) Render(w io.Writer, revealAll bool) error {
	cells := board.visible
	if revealAll && board.phase == Prepared {
		cells = board.ground
	}

	out := bufio.NewWriter(w)
	blank := "║" + strings.Repeat("   ║", board.width+1) + "\n"
	separator := "╠" + strings.Repeat("═══╬", board.width) + "═══╣\n"

	out.WriteString("╔" + strings.Repeat("═══╦", board.width) + "═══╗\n")
	out.WriteString(blank)
	out.WriteString("║   ║")
	for x := 0; x < board.width; x++ {
		out.WriteString(hexLabel(x) + "║")
	}
	out.WriteString("\n")
	out.WriteString(blank)
	out.WriteString(separator)

	for y := 0; y < board.height; y++ {
		out.WriteString(blank)
		out.WriteString("║" + hexLabel(y) + "║")
		for x := 0; x < board.width; x++ {
			fmt.Fprintf(out, " %s ║", cells[board.index(x, y)])
		}
		out.WriteString("\n")
		out.WriteString(blank)
		if y < board.height-1 {
			out.WriteString(separator)
		}
	}
	out.WriteString("╚" + strings.Repeat("═══╩", board.width) + "═══╝\n")

	return out.Flush()
}

// hexLabel returns the last three hex digits of n, zero padded.
func hexLabel(n int) string {
	label := fmt.Sprintf("%03x", n)
	return label[len(label)-3:]
}
