package engine

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/market"
)

// Router matches screening events against the configured condition
// names and dispatches them to the controller. Condition names are
// compared exactly; anything else is ignored. Duplicate signals are
// harmless: the controller's state-machine guards make repeats no-ops.
type Router struct {
	buyCondition  string
	sellCondition string
	ctrl          *Controller
	spacing       time.Duration
	log           zerolog.Logger
	watched       map[market.Code]bool // codes currently inside the buy condition; monitoring only
}

func NewRouter(buyCondition, sellCondition string, ctrl *Controller, spacing time.Duration, log zerolog.Logger) *Router {
	return &Router{
		buyCondition:  buyCondition,
		sellCondition: sellCondition,
		ctrl:          ctrl,
		spacing:       spacing,
		log:           log.With().Str("component", "router").Logger(),
		watched:       make(map[market.Code]bool),
	}
}

// HandleSignal dispatches one real-time screening event.
func (r *Router) HandleSignal(ctx context.Context, ev broker.SignalEvent) {
	switch ev.Condition {
	case r.buyCondition:
		if ev.Kind == broker.Enter {
			r.watched[ev.Code] = true
			r.ctrl.Buy(ctx, ev.Code, ev.Condition)
		} else {
			delete(r.watched, ev.Code)
		}
	case r.sellCondition:
		if ev.Kind == broker.Enter {
			r.ctrl.Sell(ctx, ev.Code, ev.Condition)
		}
	default:
		r.log.Debug().Str("condition", ev.Condition).Str("code", string(ev.Code)).Msg("unknown condition ignored")
	}
}

// HandleScan processes the initial full result of a condition scan,
// spacing consecutive order submissions to respect the gateway rate
// limit.
func (r *Router) HandleScan(ctx context.Context, ev broker.ScanEvent) {
	if ev.Condition != r.buyCondition && ev.Condition != r.sellCondition {
		r.log.Debug().Str("condition", ev.Condition).Msg("scan for unknown condition ignored")
		return
	}

	r.log.Info().Str("condition", ev.Condition).Int("count", len(ev.Codes)).Msg("initial scan result")

	for i, code := range ev.Codes {
		if i > 0 && r.spacing > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.spacing):
			}
		}
		r.HandleSignal(ctx, broker.SignalEvent{Code: code, Condition: ev.Condition, Kind: broker.Enter})
	}
}

// Watched returns the codes currently satisfying the buy condition,
// sorted. It never gates orders; it exists for the periodic report.
func (r *Router) Watched() []market.Code {
	out := make([]market.Code, 0, len(r.watched))
	for code := range r.watched {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
