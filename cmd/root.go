package cmd

import (
	"context"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/they4kman/sweepengine/config"
	"github.com/they4kman/sweepengine/director/constraint"
	"github.com/they4kman/sweepengine/director/random"
	"github.com/they4kman/sweepengine/game"
	"github.com/they4kman/sweepengine/telemetry"
	"math/rand"
	"os"
	"time"
)

var log = logrus.New()

var (
	cfg          = config.Default()
	cfgFile      string
	flagGame     = config.DefaultGame()
	directorName string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "sweepengine",
	Short: "Play Minesweeper in the terminal, or serve it over HTTP",
	Long: `sweepengine is a Minesweeper engine which can be played from the
terminal, by the computer, or over HTTP.

Run with no arguments to play manually; enter the column and row of a cell,
in hexadecimal as labelled on the board
	sweepengine

Use the director flag to make the computer play for you
	sweepengine --director constraint

Serve games over HTTP and websockets
	sweepengine serve
`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := cfg.Game.OrDefault(log)

		board, err := params.NewBoard(game.WithLogger(log))
		if err != nil {
			return err
		}

		director, err := newDirector(directorName, params.Seed)
		if err != nil {
			return err
		}

		return play(cmd.Context(), board, director, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// persistentPreRun is set as rootCmd.PersistentPreRunE in init; it is kept
// out of the rootCmd literal because it refers to rootCmd.
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	applyGameFlags(cmd, &cfg.Game)

	mode := cmd.Name()
	if cmd == rootCmd {
		mode = "play"
	}
	shutdown, err := telemetry.Setup(cmd.Context(), mode, cfg.Game)
	if err != nil {
		log.WithError(err).Warn("telemetry setup failed, running without tracing")
		return nil
	}
	shutdownTelemetry = shutdown
	return nil
}

var shutdownTelemetry = func(context.Context) error { return nil }

func Execute() {
	// Not fatal - env vars might be set directly
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug(".env file not loaded")
	}

	ctx := context.Background()
	err := rootCmd.ExecuteContext(ctx)

	if shutdownErr := shutdownTelemetry(ctx); shutdownErr != nil {
		log.WithError(shutdownErr).Warn("error shutting down telemetry")
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyGameFlags overrides file and environment settings with the flags
// given on the command line.
func applyGameFlags(cmd *cobra.Command, params *config.Game) {
	flags := cmd.Flags()
	if flags.Changed("width") {
		params.Width = flagGame.Width
	}
	if flags.Changed("height") {
		params.Height = flagGame.Height
	}
	if flags.Changed("mines") {
		params.Mines = flagGame.Mines
	}
	if flags.Changed("seed") {
		params.Seed = flagGame.Seed
	}
	if flags.Changed("placement") {
		params.Placement = flagGame.Placement
	}
}

func newDirector(name string, seed int64) (game.Director, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	switch name {
	case "":
		return nil, nil
	case "random":
		return random.New(r), nil
	case "constraint":
		return constraint.New(r), nil
	default:
		return nil, errors.Errorf("unknown director %q", name)
	}
}

type placementValue string

var _ pflag.Value = (*placementValue)(nil)

func newPlacementValue(val string, p *string) *placementValue {
	*p = val
	return (*placementValue)(p)
}

func (placementVal *placementValue) String() string {
	return string(*placementVal)
}

func (placementVal *placementValue) Set(value string) error {
	if _, err := config.ParsePlacement(value); err != nil {
		return err
	}
	*placementVal = placementValue(value)
	return nil
}

func (placementVal *placementValue) Type() string {
	return "placement"
}

func init() {
	log.SetOutput(os.Stderr)

	rootCmd.PersistentPreRunE = persistentPreRun

	// Define our root -help without a shorthand, as we'll use -h for --height
	// Ref: https://github.com/spf13/cobra/issues/291
	rootCmd.PersistentFlags().Bool("help", false, "Help for this command")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	rootCmd.Flags().IntVarP(&flagGame.Width, "width", "w", config.DefaultWidth, "Width of game board, in cells")
	rootCmd.Flags().IntVarP(&flagGame.Height, "height", "h", config.DefaultHeight, "Height of game board, in cells")
	rootCmd.Flags().IntVarP(&flagGame.Mines, "mines", "m", config.DefaultMines, "Number of mines to place in the game board")
	rootCmd.Flags().Int64Var(&flagGame.Seed, "seed", 0, "Seed for mine placement (0 picks a random seed)")
	rootCmd.Flags().Var(newPlacementValue(game.PlaceShuffle.String(), &flagGame.Placement), "placement", `Mine placement strategy.
shuffle: shuffle every cell but the first revealed one and take the first mines
rejection: draw random cells until enough distinct ones were accepted`)
	rootCmd.Flags().StringVarP(&directorName, "director", "d", "", "Make the computer play (random or constraint)")
}
