package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/broker/bridge"
	"github.com/rustyeddy/autotrader/broker/sim"
	"github.com/rustyeddy/autotrader/config"
	"github.com/rustyeddy/autotrader/engine"
	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/position"
	"github.com/rustyeddy/autotrader/risk"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a trading session from a config file",
	Long: `Run a trading session using settings from a configuration file.

By default the session connects to the trading-terminal bridge named
in the config. With --sim, a scripted in-memory gateway drives one
full buy/sell cycle instead, which is useful for checking the journal
and config wiring without a terminal.

Example:
  autotrader run --config examples/configs/session.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runSim        bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().BoolVar(&runSim, "sim", false, "use the scripted in-memory gateway")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger()
	log.Info().
		Str("account", cfg.Account.Number).
		Str("buy_condition", cfg.Strategy.BuyCondition).
		Str("sell_condition", cfg.Strategy.SellCondition).
		Int64("budget", cfg.Strategy.Budget).
		Msg("starting session")

	var j journal.Journal
	if cfg.Journal.Type == "csv" {
		j, err = journal.NewCSV(cfg.Journal.TradesFile)
	} else {
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	}
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var gw broker.Gateway
	if runSim {
		gw = newSimGateway(cfg)
	} else {
		gw, err = bridge.Dial(ctx, cfg.Bridge.URL, log)
		if err != nil {
			return err
		}
	}
	defer gw.Close()

	if cfg.Metrics.Listen != "" {
		go serveMetrics(cfg.Metrics.Listen, log)
	}

	cancelFrom, _ := cfg.Session.CancelFromMinutes()
	closeAt, _ := cfg.Session.CloseMinutes()

	eng := engine.New(engine.Params{
		Account:          cfg.Account.Number,
		Gateway:          gw,
		Ledger:           position.NewLedger(),
		Journal:          j,
		Policy:           risk.Policy{Budget: cfg.Strategy.Budget, TargetPct: cfg.Strategy.TargetPct},
		BuyCondition:     cfg.Strategy.BuyCondition,
		SellCondition:    cfg.Strategy.SellCondition,
		CancelFromMinute: cancelFrom,
		CloseMinute:      closeAt,
		SweepEvery:       cfg.Session.SweepEvery(),
		ReportEvery:      cfg.Session.ReportEvery(),
		OrderSpacing:     cfg.Session.SpacingEvery(),
		Logger:           log,
	})

	err = eng.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("interrupted, shutting down")
		return nil
	}
	return err
}

// newSimGateway scripts one session: a scan hit that buys, then a sell
// signal for a holding carried in from a previous day.
func newSimGateway(cfg *config.Config) *sim.Gateway {
	g := sim.New().
		AutoFill(100).
		SetInstrument("005930", "Samsung Electronics", 98_760).
		SetInstrument("000660", "SK hynix", 412_500).
		SetMark("000660", 425_000).
		SeedHolding("000660", 2, 401_000)

	go func() {
		g.Emit(broker.ScanEvent{Condition: cfg.Strategy.BuyCondition, Codes: []market.Code{"005930"}})
		time.Sleep(500 * time.Millisecond)
		g.Emit(broker.SignalEvent{Code: "000660", Condition: cfg.Strategy.SellCondition, Kind: broker.Enter})
		time.Sleep(500 * time.Millisecond)
		g.EndSession()
	}()
	return g
}

func serveMetrics(listen string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Str("listen", listen).Msg("serving metrics")
	if err := http.ListenAndServe(listen, mux); err != nil {
		log.Error().Err(err).Msg("metrics listener failed")
	}
}
