package config

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/they4kman/sweepengine/game"
	"gopkg.in/yaml.v2"
	"os"
	"strconv"
)

const (
	MinWidth  = 5
	MinHeight = 5
	MinMines  = 5

	// Board labels are three hex digits wide; this keeps games well below that.
	MaxWidth  = 256
	MaxHeight = 256

	DefaultWidth  = 9
	DefaultHeight = 9
	DefaultMines  = 10

	DefaultAddr = ":8080"
)

// ErrInvalidParameters is returned by Validate for games a player may not start.
var ErrInvalidParameters = errors.New("invalid game parameters")

// Game holds the parameters of a new game.
type Game struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Mines  int `yaml:"mines"`

	// Seed for mine placement. A seed of 0 means a random seed will be generated.
	Seed int64 `yaml:"seed"`

	// Placement is "shuffle" (default) or "rejection"
	Placement string `yaml:"placement"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Game   Game   `yaml:"game"`
	Server Server `yaml:"server"`
}

func DefaultGame() Game {
	return Game{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Mines:  DefaultMines,
	}
}

func Default() Config {
	return Config{
		Game:   DefaultGame(),
		Server: Server{Addr: DefaultAddr},
	}
}

// Load starts from Default, applies the YAML file at path (if path is not
// empty) and finally the SWEEP_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "reading config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing config %s", path)
		}
	}

	cfg.Game.Width = getenvInt("SWEEP_WIDTH", cfg.Game.Width)
	cfg.Game.Height = getenvInt("SWEEP_HEIGHT", cfg.Game.Height)
	cfg.Game.Mines = getenvInt("SWEEP_MINES", cfg.Game.Mines)
	cfg.Game.Seed = getenvInt64("SWEEP_SEED", cfg.Game.Seed)
	cfg.Game.Placement = getenvString("SWEEP_PLACEMENT", cfg.Game.Placement)
	cfg.Server.Addr = getenvString("SWEEP_HTTP_ADDR", cfg.Server.Addr)

	return cfg, nil
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getenvString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Validate applies the rules for games a player may start: both sides
// between their minimum and maximum, at least MinMines mines and at least one
// safe cell.
func (g Game) Validate() error {
	switch {
	case g.Width < MinWidth:
		return errors.Wrapf(ErrInvalidParameters, "width %d is below %d", g.Width, MinWidth)
	case g.Height < MinHeight:
		return errors.Wrapf(ErrInvalidParameters, "height %d is below %d", g.Height, MinHeight)
	case g.Width > MaxWidth:
		return errors.Wrapf(ErrInvalidParameters, "width %d is above %d", g.Width, MaxWidth)
	case g.Height > MaxHeight:
		return errors.Wrapf(ErrInvalidParameters, "height %d is above %d", g.Height, MaxHeight)
	case g.Mines < MinMines:
		return errors.Wrapf(ErrInvalidParameters, "%d mines is below %d", g.Mines, MinMines)
	case g.Mines > g.Width*g.Height-1:
		return errors.Wrapf(ErrInvalidParameters,
			"%d mines leave no safe cell on a %dx%d board", g.Mines, g.Width, g.Height)
	}
	if _, err := ParsePlacement(g.Placement); err != nil {
		return errors.Wrap(ErrInvalidParameters, err.Error())
	}
	return nil
}

// OrDefault returns g if it is valid, and the default game otherwise.
func (g Game) OrDefault(log logrus.FieldLogger) Game {
	if err := g.Validate(); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"width":  DefaultWidth,
			"height": DefaultHeight,
			"mines":  DefaultMines,
		}).Warn("falling back to the default game")

		fallback := DefaultGame()
		fallback.Seed = g.Seed
		return fallback
	}
	return g
}

func ParsePlacement(name string) (game.Placement, error) {
	switch name {
	case "", game.PlaceShuffle.String():
		return game.PlaceShuffle, nil
	case game.PlaceRejection.String():
		return game.PlaceRejection, nil
	default:
		return game.PlaceShuffle, errors.Errorf("unknown placement %q", name)
	}
}

// NewBoard creates the board described by g. Only the engine's own limits
// are checked here; call Validate first for the player-facing rules.
func (g Game) NewBoard(opts ...game.Option) (*game.Board, error) {
	placement, err := ParsePlacement(g.Placement)
	if err != nil {
		return nil, err
	}

	opts = append([]game.Option{game.WithPlacement(placement)}, opts...)
	if g.Seed != 0 {
		opts = append(opts, game.WithSeed(g.Seed))
	}
	return game.New(g.Width, g.Height, g.Mines, opts...)
}
