// Package engine coordinates signal routing, order lifecycle and
// position reconciliation over a single serialized event stream.
// Screening signals, broker acks/fills and periodic timers all funnel
// through one dispatcher goroutine, so no two events ever mutate the
// position ledger concurrently.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/position"
	"github.com/rustyeddy/autotrader/risk"
)

// Params wires an Engine.
type Params struct {
	Account       string
	Gateway       broker.Gateway
	Ledger        *position.Ledger
	Journal       journal.Journal
	Policy        risk.Policy
	BuyCondition  string
	SellCondition string

	CancelFromMinute int // cancel window start, minutes past local midnight
	CloseMinute      int // session close
	SweepEvery       time.Duration
	ReportEvery      time.Duration
	OrderSpacing     time.Duration

	Logger zerolog.Logger
	Now    func() time.Time // defaults to time.Now
}

// Engine owns the dispatcher loop.
type Engine struct {
	gw        broker.Gateway
	ctrl      *Controller
	router    *Router
	recon     *Reconciler
	canceller *Canceller
	reporter  *Reporter
	log       zerolog.Logger
	now       func() time.Time

	sweepEvery  time.Duration
	reportEvery time.Duration
}

func New(p Params) *Engine {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.SweepEvery <= 0 {
		p.SweepEvery = 60 * time.Second
	}
	if p.ReportEvery <= 0 {
		p.ReportEvery = 300 * time.Second
	}

	ctrl := NewController(p.Account, p.Gateway, p.Ledger, p.Journal, p.Policy, p.Logger)
	ctrl.now = p.Now
	router := NewRouter(p.BuyCondition, p.SellCondition, ctrl, p.OrderSpacing, p.Logger)

	return &Engine{
		gw:          p.Gateway,
		ctrl:        ctrl,
		router:      router,
		recon:       NewReconciler(p.Account, p.Gateway, p.Ledger, p.Policy, p.Logger),
		canceller:   NewCanceller(p.Account, p.Gateway, p.Ledger, p.CancelFromMinute, p.CloseMinute, p.Logger),
		reporter:    NewReporter(p.Ledger, router, p.Logger),
		log:         p.Logger.With().Str("component", "engine").Logger(),
		now:         p.Now,
		sweepEvery:  p.SweepEvery,
		reportEvery: p.ReportEvery,
	}
}

// Run logs in, reconciles, then consumes the event feed until the
// context is cancelled or the broker session ends. Reconciliation is
// fail-closed: if either snapshot query fails, no trading starts.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.gw.Login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	e.log.Info().Msg("logged in")

	if err := e.recon.Run(ctx); err != nil {
		return err
	}
	e.log.Info().Msg("reconciliation complete, accepting signals")

	sweep := time.NewTicker(e.sweepEvery)
	defer sweep.Stop()
	report := time.NewTicker(e.reportEvery)
	defer report.Stop()

	events := e.gw.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				e.log.Info().Msg("event feed closed, session over")
				return nil
			}
			e.dispatch(ctx, ev)
		case <-sweep.C:
			e.canceller.Sweep(ctx, e.now())
		case <-report.C:
			e.reporter.Report()
		}
	}
}

// Sweep and Report run on the dispatcher goroutine via Run; they are
// exposed for the CLI's one-shot diagnostics.
func (e *Engine) Sweep(ctx context.Context) int { return e.canceller.Sweep(ctx, e.now()) }
func (e *Engine) Report()                       { e.reporter.Report() }

func (e *Engine) dispatch(ctx context.Context, ev broker.Event) {
	switch ev := ev.(type) {
	case broker.ScanEvent:
		e.router.HandleScan(ctx, ev)
	case broker.SignalEvent:
		e.router.HandleSignal(ctx, ev)
	case broker.OrderEvent:
		e.ctrl.HandleOrderEvent(ctx, ev)
	case broker.BalanceEvent:
		e.ctrl.HandleBalance(ev)
	case broker.MessageEvent:
		e.log.Info().Str("text", ev.Text).Msg("server message")
	default:
		e.log.Debug().Msgf("unhandled event %T", ev)
	}
}
