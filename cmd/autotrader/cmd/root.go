package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autotrader",
	Short: "Condition-driven equity auto-trader",
	Long: `Autotrader trades KRX equities off broker-side screening conditions.

It connects to the trading-terminal bridge, reconciles outstanding
orders and holdings, then reacts to condition enter/exit events:
limit buys sized to a fixed budget at +5% over the previous close,
market sells of the full held quantity, and automatic cancellation of
unfilled buys as the session closes. Every round trip is journaled to
CSV or SQLite.

Subcommands:
  run      - Run a trading session (bridge or simulated)
  journal  - Query the trade journal
  version  - Print the version`,
}

var debug bool

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// newLogger builds the process logger. Console output on stderr; debug
// level behind the --debug flag.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
