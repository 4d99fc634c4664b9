package engine

import (
	"fmt"

	"github.com/rustyeddy/autotrader/market"
)

// GatewayError wraps a failed broker call. Per-instrument errors are
// local: the position stays in its prior state and the event stream
// continues. No automatic retry; retrying blindly risks duplicate
// orders under at-most-once submission.
type GatewayError struct {
	Op   string
	Code market.Code
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway %s %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// ReconciliationError means a startup snapshot query failed. It is
// fatal: the system must not begin trading on partial state.
type ReconciliationError struct {
	Step string
	Err  error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation %s: %v", e.Step, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }
