package cmd

import (
	"bufio"
	"context"
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/they4kman/sweepengine/game"
	"github.com/they4kman/sweepengine/telemetry"
	"go.opentelemetry.io/otel/trace"
	"io"
	"strconv"
	"strings"
)

// session is one terminal player (or director) working through games on a board.
type session struct {
	board    *game.Board
	director game.Director

	in  *bufio.Scanner
	out io.Writer

	tracer trace.Tracer
}

// play runs games on board until the player quits or input ends. Without a
// director, moves are read from in as "x y" lines.
func play(ctx context.Context, board *game.Board, director game.Director, in io.Reader, out io.Writer) error {
	s := &session{
		board:    board,
		director: director,
		in:       bufio.NewScanner(in),
		out:      out,
		tracer:   telemetry.Tracer("cmd"),
	}
	return s.run(ctx)
}

func (s *session) run(ctx context.Context) error {
	if s.director != nil {
		return s.autoplay(ctx)
	}

	for {
		result := s.board.Result()
		if result != game.Ongoing {
			if err := s.gameOver(result); err != nil {
				return err
			}

			again, err := s.askReplay()
			if err != nil || !again {
				return err
			}
			s.board.Reset()
			continue
		}

		if err := s.showPlaying(); err != nil {
			return err
		}

		line, ok := s.prompt("Reveal (x y), reset, reveal-all or quit: ")
		if !ok {
			return s.in.Err()
		}

		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		case "reset":
			s.board.Reset()
			continue
		case "reveal-all":
			if err := s.board.Render(s.out, true); err != nil {
				return err
			}
			continue
		}

		x, y, err := parseCoords(line)
		if err != nil {
			fmt.Fprintln(s.out, err)
			continue
		}

		if err := s.reveal(ctx, x, y); err != nil {
			if errors.Is(err, game.ErrOutOfBounds) {
				fmt.Fprintln(s.out, err)
				continue
			}
			return err
		}
	}
}

// autoplay lets the director play a single game, showing the board after
// every move.
func (s *session) autoplay(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "game.autoplay")
	defer span.End()

	if err := s.showPlaying(); err != nil {
		return err
	}

	result, moves, err := game.Autoplay(s.board, s.director, func(x, y int, revealed game.RevealResult) error {
		fmt.Fprintf(s.out, "Director reveals (%x, %x)\n", x, y)
		if s.board.Result() != game.Ongoing {
			return nil
		}
		return s.showPlaying()
	})
	span.SetAttributes(
		telemetry.MovesKey.Int(moves),
		telemetry.ResultKey.String(result.String()),
	)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if result == game.Ongoing {
		return errors.New("director has no move left")
	}
	return s.gameOver(result)
}

func (s *session) showPlaying() error {
	if err := s.board.Render(s.out, false); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Game state: Playing")
	return nil
}

func (s *session) reveal(ctx context.Context, x, y int) error {
	_, span := s.tracer.Start(ctx, "game.reveal", trace.WithAttributes(telemetry.Cell(x, y)...))
	defer span.End()

	revealed, err := s.board.Reveal(x, y)
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(telemetry.Outcome(revealed, s.board.Result())...)
	if len(revealed.Changed) == 0 {
		fmt.Fprintf(s.out, "(%x, %x) is already revealed\n", x, y)
	}
	return nil
}

func (s *session) gameOver(result game.Result) error {
	if err := s.board.Render(s.out, true); err != nil {
		return err
	}

	switch result {
	case game.Win:
		fmt.Fprintln(s.out, "Game state: Victory")
	case game.Loss:
		fmt.Fprintln(s.out, "Game state: Loss")
	}

	log.WithFields(logrus.Fields{
		"result": result,
		"layout": s.board.Layout(),
	}).Debug("game over")
	return nil
}

func (s *session) askReplay() (bool, error) {
	for {
		line, ok := s.prompt("Play again? [y/n] ")
		if !ok {
			return false, s.in.Err()
		}

		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

func (s *session) prompt(question string) (string, bool) {
	fmt.Fprint(s.out, question)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// parseCoords reads "x y" in hexadecimal, matching the board labels.
func parseCoords(line string) (int, int, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) != 2 {
		return 0, 0, errors.Errorf("expected two coordinates, got %q", line)
	}

	coords := make([]int, 2)
	for i, field := range fields {
		field = strings.TrimPrefix(strings.ToLower(field), "0x")
		n, err := strconv.ParseInt(field, 16, 0)
		if err != nil {
			return 0, 0, errors.Errorf("invalid coordinate %q", fields[i])
		}
		coords[i] = int(n)
	}
	return coords[0], coords[1], nil
}
